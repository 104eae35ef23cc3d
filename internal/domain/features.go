package domain

import (
	"math"
	"sort"
	"time"
)

// Features holds the derived signals one bucket of readings produces.
// Counts are integers over the bucket's hour set; an hour with a nil value
// for the relevant field is excluded from that count, never treated as
// zero and never treated as exceeding.
type Features struct {
	Hours int `json:"hours"`

	PM25Mean          float64 `json:"pm25_mean,omitempty"`
	PM25P95           float64 `json:"pm25_p95,omitempty"`
	PM25HoursAbove24h int     `json:"pm25_hours_above_24h,omitempty"`
	PM25Present       bool    `json:"-"`

	O3Max8h            float64 `json:"o3_max_8h,omitempty"`
	O3HoursAboveHealth int     `json:"o3_hours_above_health,omitempty"`
	O3Present          bool    `json:"-"`
	O3SnapshotDerived  bool    `json:"o3_snapshot_derived,omitempty"`

	NO2Mean    float64 `json:"no2_mean,omitempty"`
	NO2Present bool    `json:"-"`
	SO2Mean    float64 `json:"so2_mean,omitempty"`
	SO2Present bool    `json:"-"`
	COMean     float64 `json:"co_mean,omitempty"`
	COPresent  bool    `json:"-"`

	UVDoseHours int     `json:"uv_dose_hours,omitempty"`
	UVMax       float64 `json:"uv_max,omitempty"`
	UVPresent   bool    `json:"-"`

	TempMean    float64 `json:"temp_mean,omitempty"`
	HeatHours   int     `json:"heat_hours,omitempty"`
	ColdHours   int     `json:"cold_hours,omitempty"`
	TempPresent bool    `json:"-"`

	LowRHHours         int `json:"low_rh_hours,omitempty"`
	HighRHHours        int `json:"high_rh_hours,omitempty"`
	OppressiveDewHours int `json:"oppressive_dew_hours,omitempty"`

	WindyHours         int `json:"windy_hours,omitempty"`
	HazardousWindHours int `json:"hazardous_wind_hours,omitempty"`

	PrecipTotalMm float64 `json:"precip_total_mm,omitempty"`
	HeavyRainDays int     `json:"heavy_rain_days,omitempty"`
	DrySpellDays  int     `json:"dry_spell_days,omitempty"`

	LowLightHours int `json:"low_light_hours,omitempty"`

	// SnapshotOnlyPollutants is true when the bucket has pollutant data but
	// none of it came from a true hourly series. It lowers confidence, not
	// the scores themselves.
	SnapshotOnlyPollutants bool `json:"snapshot_only_pollutants,omitempty"`
}

// DailyPrecip is one calendar day's summed precipitation, computed over the
// full reading history so dry-spell streaks can cross bucket boundaries.
type DailyPrecip struct {
	Day      time.Time `json:"day"` // local midnight
	TotalMm  float64   `json:"total_mm"`
	Observed bool      `json:"observed"` // at least one non-nil hourly value
}

// DailyPrecipTotals sums hourly precipitation per local calendar day across
// the whole reading sequence.
func DailyPrecipTotals(readings []EnvironmentalReading) []DailyPrecip {
	var days []DailyPrecip
	for _, r := range readings {
		day := periodStart(r.Timestamp, PeriodDaily)
		if n := len(days); n == 0 || !days[n-1].Day.Equal(day) {
			days = append(days, DailyPrecip{Day: day})
		}
		if r.PrecipitationMm != nil {
			d := &days[len(days)-1]
			d.TotalMm += *r.PrecipitationMm
			d.Observed = true
		}
	}
	return days
}

// ExtractFeatures runs every extractor over one bucket. precipHistory is
// the full per-day precipitation record (not just the bucket's days) so the
// trailing dry-spell streak can look back past the bucket start.
func ExtractFeatures(b PeriodBucket, precipHistory []DailyPrecip, g Guidelines) Features {
	f := Features{Hours: len(b.Readings)}
	if f.Hours == 0 {
		return f
	}

	extractPM25(&f, b.Readings, g)
	extractO3(&f, b.Readings, g)
	extractGasMeans(&f, b.Readings)
	extractUV(&f, b.Readings, g)
	extractThermal(&f, b.Readings, g)
	extractHumidity(&f, b.Readings, g)
	extractWind(&f, b.Readings, g)
	extractPrecip(&f, b, precipHistory, g)
	extractLowLight(&f, b.Readings, g)
	f.SnapshotOnlyPollutants = snapshotOnly(b.Readings)
	return f
}

func extractPM25(f *Features, readings []EnvironmentalReading, g Guidelines) {
	vals := collect(readings, func(r EnvironmentalReading) *float64 { return r.PM25 })
	if len(vals) == 0 {
		return
	}
	f.PM25Present = true
	f.PM25Mean = mean(vals)
	f.PM25P95 = percentile(vals, 0.95)
	for _, v := range vals {
		if v > g.PM2524hUgm3 {
			f.PM25HoursAbove24h++
		}
	}
}

// extractO3 computes the maximum 8-hour block average over contiguous
// hourly ozone runs. When only a broadcast snapshot is available the
// snapshot value stands in and the result is marked snapshot-derived.
func extractO3(f *Features, readings []EnvironmentalReading, g Guidelines) {
	hourly := false
	for _, r := range readings {
		if r.O3 != nil && r.PollutantSource == ProvenanceHourly {
			hourly = true
			break
		}
	}

	vals := collect(readings, func(r EnvironmentalReading) *float64 { return r.O3 })
	if len(vals) == 0 {
		return
	}
	f.O3Present = true
	for _, v := range vals {
		if v > g.O3HealthPpb {
			f.O3HoursAboveHealth++
		}
	}

	if !hourly {
		f.O3Max8h = vals[0]
		f.O3SnapshotDerived = true
		return
	}
	f.O3Max8h = maxBlockAverage(readings, 8)
}

// maxBlockAverage finds the highest mean over contiguous runs of non-nil
// hourly ozone, using sliding windows of the given size. Runs shorter than
// the window contribute their whole-run mean.
func maxBlockAverage(readings []EnvironmentalReading, window int) float64 {
	best := 0.0
	var run []float64
	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) < window {
			if m := mean(run); m > best {
				best = m
			}
		} else {
			sum := 0.0
			for i := 0; i < window; i++ {
				sum += run[i]
			}
			if avg := sum / float64(window); avg > best {
				best = avg
			}
			for i := window; i < len(run); i++ {
				sum += run[i] - run[i-window]
				if avg := sum / float64(window); avg > best {
					best = avg
				}
			}
		}
		run = run[:0]
	}
	for _, r := range readings {
		if r.O3 == nil {
			flush()
			continue
		}
		run = append(run, *r.O3)
	}
	flush()
	return best
}

func extractGasMeans(f *Features, readings []EnvironmentalReading) {
	if vals := collect(readings, func(r EnvironmentalReading) *float64 { return r.NO2 }); len(vals) > 0 {
		f.NO2Present = true
		f.NO2Mean = mean(vals)
	}
	if vals := collect(readings, func(r EnvironmentalReading) *float64 { return r.SO2 }); len(vals) > 0 {
		f.SO2Present = true
		f.SO2Mean = mean(vals)
	}
	if vals := collect(readings, func(r EnvironmentalReading) *float64 { return r.CO }); len(vals) > 0 {
		f.COPresent = true
		f.COMean = mean(vals)
	}
}

// extractUV counts protection-threshold dose-hours: a deliberately coarse,
// monotonic proxy rather than a dose integral, so the number stays
// explainable.
func extractUV(f *Features, readings []EnvironmentalReading, g Guidelines) {
	vals := collect(readings, func(r EnvironmentalReading) *float64 { return r.UVIndex })
	if len(vals) == 0 {
		return
	}
	f.UVPresent = true
	for _, v := range vals {
		if v >= g.UVProtectThreshold {
			f.UVDoseHours++
		}
		if v > f.UVMax {
			f.UVMax = v
		}
	}
}

func extractThermal(f *Features, readings []EnvironmentalReading, g Guidelines) {
	var temps []float64
	for _, r := range readings {
		if r.TemperatureC == nil {
			continue
		}
		t := *r.TemperatureC
		temps = append(temps, t)
		if t >= g.HeatCutoffC || heatIndexDanger(t, r.RelativeHumidity, g) {
			f.HeatHours++
		}
		if t <= g.ColdCutoffC {
			f.ColdHours++
		}
	}
	if len(temps) > 0 {
		f.TempPresent = true
		f.TempMean = mean(temps)
	}
}

// heatIndexDanger reports whether the Rothfusz heat index for a warm, humid
// hour reaches the danger threshold. Applies only from 27°C up, where the
// regression is valid.
func heatIndexDanger(tempC float64, rh *float64, g Guidelines) bool {
	if rh == nil || tempC < 27.0 {
		return false
	}
	return heatIndexC(tempC, *rh) >= g.HeatIndexDangerC
}

// heatIndexC is the NWS Rothfusz regression, computed in Fahrenheit and
// converted back.
func heatIndexC(tempC, rh float64) float64 {
	t := tempC*9/5 + 32
	hi := -42.379 + 2.04901523*t + 10.14333127*rh +
		-0.22475541*t*rh - 0.00683783*t*t - 0.05481717*rh*rh +
		0.00122874*t*t*rh + 0.00085282*t*rh*rh - 0.00000199*t*t*rh*rh
	return (hi - 32) * 5 / 9
}

func extractHumidity(f *Features, readings []EnvironmentalReading, g Guidelines) {
	for _, r := range readings {
		if r.RelativeHumidity != nil {
			if *r.RelativeHumidity < g.RHLowPct {
				f.LowRHHours++
			} else if *r.RelativeHumidity > g.RHHighPct {
				f.HighRHHours++
			}
		}
		if r.DewPointC != nil && *r.DewPointC >= g.DewOppressiveC {
			f.OppressiveDewHours++
		}
	}
}

// extractWind keeps two independent counters. A hazardous hour also counts
// as windy; the thresholds overlap rather than partition.
func extractWind(f *Features, readings []EnvironmentalReading, g Guidelines) {
	for _, r := range readings {
		if r.WindSpeedKmh == nil {
			continue
		}
		if *r.WindSpeedKmh >= g.WindDustyKmh {
			f.WindyHours++
		}
		if *r.WindSpeedKmh >= g.WindHazardKmh {
			f.HazardousWindHours++
		}
	}
}

func extractPrecip(f *Features, b PeriodBucket, history []DailyPrecip, g Guidelines) {
	for _, r := range b.Readings {
		if r.PrecipitationMm != nil {
			f.PrecipTotalMm += *r.PrecipitationMm
		}
	}
	for _, d := range history {
		if !d.Day.Before(b.Start) && d.Day.Before(b.End) && d.Observed && d.TotalMm >= g.HeavyRainMmDay {
			f.HeavyRainDays++
		}
	}
	f.DrySpellDays = trailingDrySpell(history, b.End)
}

// trailingDrySpell counts consecutive observed zero-precipitation days
// ending at the bucket boundary, walking backwards through the full daily
// history. An unobserved day ends the streak: absence of data is not
// evidence of dryness.
func trailingDrySpell(history []DailyPrecip, end time.Time) int {
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		d := history[i]
		if !d.Day.Before(end) {
			continue
		}
		if !d.Observed || d.TotalMm > 0 {
			break
		}
		streak++
	}
	return streak
}

// extractLowLight counts daylight hours blanketed by heavy cloud, using a
// simple time-of-day daylight proxy (08:00–18:00 local).
func extractLowLight(f *Features, readings []EnvironmentalReading, g Guidelines) {
	for _, r := range readings {
		if r.CloudCoverPct == nil {
			continue
		}
		h := r.Timestamp.Hour()
		if h >= 8 && h < 18 && *r.CloudCoverPct >= g.CloudLowLightPct {
			f.LowLightHours++
		}
	}
}

func snapshotOnly(readings []EnvironmentalReading) bool {
	sawSnapshot := false
	for _, r := range readings {
		switch r.PollutantSource {
		case ProvenanceHourly:
			return false
		case ProvenanceSnapshot:
			sawSnapshot = true
		}
	}
	return sawSnapshot
}

// --- small numeric helpers ---

func collect(readings []EnvironmentalReading, get func(EnvironmentalReading) *float64) []float64 {
	var vals []float64
	for _, r := range readings {
		if v := get(r); v != nil {
			vals = append(vals, *v)
		}
	}
	return vals
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// percentile uses the nearest-rank method for determinism.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
