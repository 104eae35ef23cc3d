package domain

// Coverage weights per underlying reading field. Pollutants dominate
// because they drive the heaviest-weighted sub-scores. Sums to 1.0.
const (
	covWeightPollutant = 0.40
	covWeightUV        = 0.15
	covWeightTemp      = 0.15
	covWeightHumidity  = 0.10
	covWeightDew       = 0.05
	covWeightWind      = 0.05
	covWeightPrecip    = 0.05
	covWeightCloud     = 0.05
)

// snapshotPenalty discounts confidence when pollutant data for the
// bucket is a broadcast snapshot rather than a true hourly series.
const snapshotPenalty = 0.7

// EstimateConfidence returns a [0,1] completeness estimate for a bucket:
// the coverage-weighted fraction of hours carrying each field, penalized
// when pollutant data is snapshot-only. Coverage is always hour-count
// based, so a day and a week are estimated identically.
func EstimateConfidence(b PeriodBucket) float64 {
	hours := len(b.Readings)
	if hours == 0 {
		return 0
	}

	cov := func(get func(EnvironmentalReading) *float64) float64 {
		present := 0
		for _, r := range b.Readings {
			if get(r) != nil {
				present++
			}
		}
		return float64(present) / float64(hours)
	}

	// Pollutant coverage is the mean across the six pollutant fields.
	pollutant := (cov(func(r EnvironmentalReading) *float64 { return r.PM25 }) +
		cov(func(r EnvironmentalReading) *float64 { return r.PM10 }) +
		cov(func(r EnvironmentalReading) *float64 { return r.O3 }) +
		cov(func(r EnvironmentalReading) *float64 { return r.NO2 }) +
		cov(func(r EnvironmentalReading) *float64 { return r.SO2 }) +
		cov(func(r EnvironmentalReading) *float64 { return r.CO })) / 6

	confidence := covWeightPollutant*pollutant +
		covWeightUV*cov(func(r EnvironmentalReading) *float64 { return r.UVIndex }) +
		covWeightTemp*cov(func(r EnvironmentalReading) *float64 { return r.TemperatureC }) +
		covWeightHumidity*cov(func(r EnvironmentalReading) *float64 { return r.RelativeHumidity }) +
		covWeightDew*cov(func(r EnvironmentalReading) *float64 { return r.DewPointC }) +
		covWeightWind*cov(func(r EnvironmentalReading) *float64 { return r.WindSpeedKmh }) +
		covWeightPrecip*cov(func(r EnvironmentalReading) *float64 { return r.PrecipitationMm }) +
		covWeightCloud*cov(func(r EnvironmentalReading) *float64 { return r.CloudCoverPct })

	if snapshotOnly(b.Readings) {
		confidence *= snapshotPenalty
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
