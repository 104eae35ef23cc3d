package domain

// Factor identifies one of the ten exposure factors. The set is closed;
// iteration always follows the order of Factors.
type Factor string

const (
	FactorPM25        Factor = "pm25"
	FactorO3          Factor = "o3"
	FactorNO2         Factor = "no2"
	FactorSO2         Factor = "so2"
	FactorCO          Factor = "co"
	FactorUV          Factor = "uv"
	FactorTemp        Factor = "temp"
	FactorHumidityDew Factor = "humidity_dew"
	FactorWind        Factor = "wind"
	FactorPrecip      Factor = "precip"
)

// Factors fixes the declaration order used for narrative output and
// anomaly checks.
var Factors = [10]Factor{
	FactorPM25, FactorO3, FactorNO2, FactorSO2, FactorCO,
	FactorUV, FactorTemp, FactorHumidityDew, FactorWind, FactorPrecip,
}

// Subscores holds the ten per-factor severity scores, each in [0,100] with
// higher = worse. A fixed struct rather than a map: the factor set is
// closed and a dynamically-keyed map could silently drop or misorder
// factors.
type Subscores struct {
	PM25        int `json:"pm25"`
	O3          int `json:"o3"`
	NO2         int `json:"no2"`
	SO2         int `json:"so2"`
	CO          int `json:"co"`
	UV          int `json:"uv"`
	Temp        int `json:"temp"`
	HumidityDew int `json:"humidity_dew"`
	Wind        int `json:"wind"`
	Precip      int `json:"precip"`
}

// Get returns the score for a factor. Unknown factors return 0.
func (s Subscores) Get(f Factor) int {
	switch f {
	case FactorPM25:
		return s.PM25
	case FactorO3:
		return s.O3
	case FactorNO2:
		return s.NO2
	case FactorSO2:
		return s.SO2
	case FactorCO:
		return s.CO
	case FactorUV:
		return s.UV
	case FactorTemp:
		return s.Temp
	case FactorHumidityDew:
		return s.HumidityDew
	case FactorWind:
		return s.Wind
	case FactorPrecip:
		return s.Precip
	}
	return 0
}

// Max returns the highest sub-score, the input to the severity kicker.
func (s Subscores) Max() int {
	max := 0
	for _, f := range Factors {
		if v := s.Get(f); v > max {
			max = v
		}
	}
	return max
}
