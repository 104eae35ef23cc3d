package domain

import (
	"fmt"
	"math"
)

// Guidelines bundles every guideline anchor and shaping threshold used by
// feature extraction and scoring. Defaults follow WHO air quality
// guidelines and US NAAQS reference points; all values are tunable
// configuration, not hard-coded claims.
type Guidelines struct {
	// PM2.5, µg/m³.
	PM25AnnualUgm3 float64
	PM2524hUgm3    float64

	// Ozone, ppb.
	O3AQI100Ppb float64 // US NAAQS 8-hour level mapping to AQI 100
	O3HealthPpb float64 // WHO peak-season target average

	NO2AnnualUgm3 float64
	SO224hUgm3    float64
	CO24hPpm      float64

	UVProtectThreshold float64 // UV index at/above which protection is advised
	UVVeryHigh         float64

	TempComfortMinC  float64
	TempComfortMaxC  float64
	HeatCutoffC      float64
	ColdCutoffC      float64
	HeatIndexDangerC float64 // apparent-temperature danger threshold

	RHLowPct       float64
	RHHighPct      float64
	DewOppressiveC float64 // ≈70°F, muggy-air threshold in °C

	WindDustyKmh  float64
	WindHazardKmh float64

	HeavyRainMmDay    float64
	DrySpellGraceDays int // dry-spell penalty starts past this many days

	CloudLowLightPct float64
}

// DefaultGuidelines returns the WHO/US-NAAQS anchored defaults.
func DefaultGuidelines() Guidelines {
	return Guidelines{
		PM25AnnualUgm3: 5.0,
		PM2524hUgm3:    15.0,

		O3AQI100Ppb: 70.0,
		O3HealthPpb: 50.0,

		NO2AnnualUgm3: 10.0,
		SO224hUgm3:    40.0,
		CO24hPpm:      3.5,

		UVProtectThreshold: 3.0,
		UVVeryHigh:         8.0,

		TempComfortMinC:  18.0,
		TempComfortMaxC:  24.0,
		HeatCutoffC:      32.0,
		ColdCutoffC:      0.0,
		HeatIndexDangerC: 41.0,

		RHLowPct:       30.0,
		RHHighPct:      60.0,
		DewOppressiveC: 21.1,

		WindDustyKmh:  30.0,
		WindHazardKmh: 60.0,

		HeavyRainMmDay:    50.0,
		DrySpellGraceDays: 7,

		CloudLowLightPct: 80.0,
	}
}

// Weights holds the composite weighting per factor. The ten weights must
// sum to 1.0.
type Weights struct {
	PM25        float64 `json:"pm25"`
	O3          float64 `json:"o3"`
	NO2         float64 `json:"no2"`
	SO2         float64 `json:"so2"`
	CO          float64 `json:"co"`
	UV          float64 `json:"uv"`
	Temp        float64 `json:"temp"`
	HumidityDew float64 `json:"humidity_dew"`
	Wind        float64 `json:"wind"`
	Precip      float64 `json:"precip"`
}

// DefaultWeights returns the stock composite weighting. Air quality
// dominates, with UV and thermal stress as the next largest shares.
func DefaultWeights() Weights {
	return Weights{
		PM25:        0.30,
		O3:          0.15,
		NO2:         0.07,
		SO2:         0.03,
		CO:          0.03,
		UV:          0.20,
		Temp:        0.12,
		HumidityDew: 0.06,
		Wind:        0.02,
		Precip:      0.02,
	}
}

// Get returns the weight for a factor. Unknown factors return 0.
func (w Weights) Get(f Factor) float64 {
	switch f {
	case FactorPM25:
		return w.PM25
	case FactorO3:
		return w.O3
	case FactorNO2:
		return w.NO2
	case FactorSO2:
		return w.SO2
	case FactorCO:
		return w.CO
	case FactorUV:
		return w.UV
	case FactorTemp:
		return w.Temp
	case FactorHumidityDew:
		return w.HumidityDew
	case FactorWind:
		return w.Wind
	case FactorPrecip:
		return w.Precip
	}
	return 0
}

// Validate returns a ConfigError unless the weights sum to 1.0 within
// floating-point tolerance.
func (w Weights) Validate() error {
	sum := 0.0
	for _, f := range Factors {
		sum += w.Get(f)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return &ConfigError{Reason: fmt.Sprintf("composite weights sum to %g, want 1.0", sum)}
	}
	return nil
}
