package domain

import "math"

// ScoreFeatures maps one bucket's features to the ten sub-scores. Each
// score is a guideline-relative ratio, scaled and capped, plus a bounded
// peak-frequency penalty; all land in [0,100] with higher = worse. A
// factor with no data in the bucket scores 0; missing data lowers
// confidence, never severity.
func ScoreFeatures(f Features, g Guidelines) Subscores {
	return Subscores{
		PM25:        scorePM25(f, g),
		O3:          scoreO3(f, g),
		NO2:         scoreRatio(f.NO2Present, f.NO2Mean, g.NO2AnnualUgm3),
		SO2:         scoreRatio(f.SO2Present, f.SO2Mean, g.SO224hUgm3),
		CO:          scoreRatio(f.COPresent, f.COMean, g.CO24hPpm),
		UV:          scoreUV(f, g),
		Temp:        scoreTemp(f, g),
		HumidityDew: scoreHumidityDew(f),
		Wind:        scoreWind(f),
		Precip:      scorePrecip(f, g),
	}
}

func scorePM25(f Features, g Guidelines) int {
	if !f.PM25Present {
		return 0
	}
	raw := 60*(f.PM25Mean/g.PM25AnnualUgm3) +
		30*(f.PM25P95/g.PM2524hUgm3) +
		10*math.Min(1, float64(f.PM25HoursAbove24h)/8)
	return clampScore(raw)
}

// scoreO3 shapes a 0–150 raw range (80-point peak term plus 20-point
// duration term) back onto 0–100.
func scoreO3(f Features, g Guidelines) int {
	if !f.O3Present {
		return 0
	}
	raw := (80*(f.O3Max8h/g.O3AQI100Ppb) +
		20*math.Min(1, float64(f.O3HoursAboveHealth)/4)) * (100.0 / 150.0)
	return clampScore(raw)
}

// scoreRatio handles the central-tendency gases (NO2, SO2, CO): period
// mean over the guideline anchor, no peak term.
func scoreRatio(present bool, periodMean, anchor float64) int {
	if !present {
		return 0
	}
	return clampScore(100 * (periodMean / anchor))
}

func scoreUV(f Features, g Guidelines) int {
	if !f.UVPresent {
		return 0
	}
	raw := math.Min(100, float64(f.UVDoseHours)*5)
	if f.UVMax >= g.UVVeryHigh {
		raw += 10
	}
	return clampScore(raw)
}

// scoreTemp adds a deviation penalty of 2 points per °C the period mean
// sits outside the comfort band; only one tail can be non-zero per period.
func scoreTemp(f Features, g Guidelines) int {
	if !f.TempPresent {
		return 0
	}
	deviation := 0.0
	if f.TempMean > g.TempComfortMaxC {
		deviation = 2 * (f.TempMean - g.TempComfortMaxC)
	} else if f.TempMean < g.TempComfortMinC {
		deviation = 2 * (g.TempComfortMinC - f.TempMean)
	}
	raw := math.Min(100, float64(f.HeatHours)*4+float64(f.ColdHours)*3+deviation)
	return clampScore(raw)
}

func scoreHumidityDew(f Features) int {
	raw := math.Min(100, float64(f.LowRHHours)*2+float64(f.HighRHHours)*2+float64(f.OppressiveDewHours)*3)
	return clampScore(raw)
}

func scoreWind(f Features) int {
	raw := math.Min(100, float64(f.WindyHours)*1+float64(f.HazardousWindHours)*5)
	return clampScore(raw)
}

// scorePrecip penalizes both flood risk and prolonged dryness; the
// dry-spell term only kicks in past the one-week grace period.
func scorePrecip(f Features, g Guidelines) int {
	dry := f.DrySpellDays - g.DrySpellGraceDays
	if dry < 0 {
		dry = 0
	}
	raw := math.Min(100, float64(f.HeavyRainDays)*20+float64(dry)*5)
	return clampScore(raw)
}

func clampScore(raw float64) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return int(math.Round(raw))
}

// CompositeScore combines the ten sub-scores by weight and applies the
// severity kicker: when any single factor reaches 80, 0.2 points per point
// above 80 are added so one spiking factor is not averaged away. The
// result stays in floating point; callers round once at the output
// boundary.
func CompositeScore(s Subscores, w Weights) float64 {
	composite := 0.0
	for _, f := range Factors {
		composite += float64(s.Get(f)) * w.Get(f)
	}
	if max := s.Max(); max >= 80 {
		composite += 0.2 * float64(max-80)
	}
	if composite > 100 {
		composite = 100
	}
	if composite < 0 {
		composite = 0
	}
	return composite
}
