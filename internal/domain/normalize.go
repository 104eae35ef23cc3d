package domain

import (
	"time"
)

// weatherTimeLayout is the local-naive layout Open-Meteo uses for hourly
// timestamps when a timezone is requested.
const weatherTimeLayout = "2006-01-02T15:04"

// NormalizeReadings flattens a resolved payload into one reading per hourly
// timestamp. It is a pure transform: the only failure modes are structural
// (unequal array lengths, bad timezone, unparseable or out-of-order
// timestamps), all reported as a DataError before any aggregation starts.
func NormalizeReadings(p ResolvedPayload) ([]EnvironmentalReading, error) {
	loc, err := resolveTimezone(p.Timezone)
	if err != nil {
		return nil, err
	}

	n := len(p.Weather.Time)
	if err := checkSeriesLengths(p, n); err != nil {
		return nil, err
	}

	readings := make([]EnvironmentalReading, 0, n)
	var prev time.Time
	for i, raw := range p.Weather.Time {
		ts, err := parseLocalHour(raw, loc)
		if err != nil {
			return nil, err
		}
		if i > 0 && ts.Before(prev) {
			return nil, dataErrorf("weather timestamps not in order: %q after %q", raw, prev.Format(weatherTimeLayout))
		}
		prev = ts

		r := EnvironmentalReading{
			Timestamp:        ts,
			Lat:              p.Latitude,
			Lon:              p.Longitude,
			TemperatureC:     at(p.Weather.Temperature, i),
			RelativeHumidity: at(p.Weather.RelativeHumidity, i),
			DewPointC:        at(p.Weather.DewPoint, i),
			PrecipitationMm:  at(p.Weather.Precipitation, i),
			CloudCoverPct:    at(p.Weather.CloudCover, i),
			WindSpeedKmh:     at(p.Weather.WindSpeed, i),
			UVIndex:          at(p.Weather.UVIndex, i),
			WeatherSource:    p.Sources.Weather,
		}
		fillPollutants(&r, p, i)
		readings = append(readings, r)
	}

	return readings, nil
}

// fillPollutants applies the value-or-fallback rule once for all six
// pollutants: an hourly series entry wins; otherwise the snapshot value is
// broadcast and the hour is tagged snapshot-derived.
func fillPollutants(r *EnvironmentalReading, p ResolvedPayload, i int) {
	if s := p.PollutantSeries; s != nil {
		r.PM25 = at(s.PM25, i)
		r.PM10 = at(s.PM10, i)
		r.O3 = at(s.O3, i)
		r.NO2 = at(s.NO2, i)
		r.SO2 = at(s.SO2, i)
		r.CO = at(s.CO, i)
		r.PollutantSource = ProvenanceHourly
		return
	}
	if snap := p.Pollutants; snap != nil {
		r.PM25 = snap.PM25
		r.PM10 = snap.PM10
		r.O3 = snap.O3
		r.NO2 = snap.NO2
		r.SO2 = snap.SO2
		r.CO = snap.CO
		r.PollutantSource = ProvenanceSnapshot
	}
}

func resolveTimezone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, dataErrorf("unresolvable timezone %q", name)
	}
	return loc, nil
}

func parseLocalHour(raw string, loc *time.Location) (time.Time, error) {
	if ts, err := time.ParseInLocation(weatherTimeLayout, raw, loc); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dataErrorf("unparseable weather timestamp %q", raw)
	}
	return ts.In(loc), nil
}

// checkSeriesLengths verifies every non-nil value array matches the time
// axis. A missing array is fine (the field is simply absent); a mismatched
// one means the payload is corrupt.
func checkSeriesLengths(p ResolvedPayload, n int) error {
	check := func(name string, got int) error {
		if got != n {
			return dataErrorf("series %q has %d entries, want %d", name, got, n)
		}
		return nil
	}
	weather := []struct {
		name   string
		values []*float64
	}{
		{"temperature_2m", p.Weather.Temperature},
		{"relative_humidity_2m", p.Weather.RelativeHumidity},
		{"dew_point_2m", p.Weather.DewPoint},
		{"precipitation", p.Weather.Precipitation},
		{"cloudcover", p.Weather.CloudCover},
		{"wind_speed_10m", p.Weather.WindSpeed},
		{"uv_index", p.Weather.UVIndex},
	}
	for _, s := range weather {
		if s.values == nil {
			continue
		}
		if err := check(s.name, len(s.values)); err != nil {
			return err
		}
	}
	if ps := p.PollutantSeries; ps != nil {
		pollutants := []struct {
			name   string
			values []*float64
		}{
			{"pm25", ps.PM25}, {"pm10", ps.PM10}, {"o3", ps.O3},
			{"no2", ps.NO2}, {"so2", ps.SO2}, {"co", ps.CO},
		}
		for _, s := range pollutants {
			if s.values == nil {
				continue
			}
			if err := check(s.name, len(s.values)); err != nil {
				return err
			}
		}
	}
	return nil
}

// at returns the i-th entry of a nullable series, or nil when the series
// itself is absent.
func at(values []*float64, i int) *float64 {
	if values == nil {
		return nil
	}
	return values[i]
}
