package domain

import (
	"fmt"
	"math"
)

// narrativeThreshold gates per-factor narrative emission.
const narrativeThreshold = 60

// Narratives renders the templated explanation strings for one aggregate:
// exactly one sentence per factor whose sub-score reaches the threshold,
// in factor declaration order, followed by exactly one overall sentence
// stating the rounded composite and confidence. Template selection is
// deterministic; downstream consumers may re-rank by severity but this
// order is fixed.
func Narratives(s Subscores, f Features, composite float64, confidence float64) []string {
	var out []string
	for _, factor := range Factors {
		if s.Get(factor) < narrativeThreshold {
			continue
		}
		out = append(out, factorNarrative(factor, f))
	}
	out = append(out, fmt.Sprintf(
		"Overall exposure score %d with %d%% data confidence.",
		int(math.Round(composite)), int(math.Round(confidence*100))))
	return out
}

func factorNarrative(factor Factor, f Features) string {
	switch factor {
	case FactorPM25:
		return fmt.Sprintf(
			"PM2.5 levels elevated (mean %.1f µg/m³, 95th percentile %.1f). Consider reducing outdoor activity and using air filtration indoors.",
			f.PM25Mean, f.PM25P95)
	case FactorO3:
		return fmt.Sprintf(
			"Ozone levels high (8-hour peak %.1f ppb). Afternoon exertion outdoors may worsen breathing; mornings are safer.",
			f.O3Max8h)
	case FactorNO2:
		return fmt.Sprintf(
			"NO2 levels elevated (mean %.1f µg/m³). Heavy-traffic areas are the likely contributor.",
			f.NO2Mean)
	case FactorSO2:
		return fmt.Sprintf(
			"SO2 levels elevated (mean %.1f µg/m³).",
			f.SO2Mean)
	case FactorCO:
		return fmt.Sprintf(
			"CO levels elevated (mean %.2f ppm). Avoid enclosed spaces with combustion sources.",
			f.COMean)
	case FactorUV:
		return fmt.Sprintf(
			"High UV exposure (%d hours at or above protection threshold, peak index %.1f). Use sun protection and avoid midday sun.",
			f.UVDoseHours, f.UVMax)
	case FactorTemp:
		return fmt.Sprintf(
			"Thermal stress detected (%d heat hours, %d cold hours, mean %.1f°C). Plan activity around the most comfortable part of the day.",
			f.HeatHours, f.ColdHours, f.TempMean)
	case FactorHumidityDew:
		return fmt.Sprintf(
			"Humidity extremes detected (%d dry hours, %d humid hours, %d oppressive dew-point hours).",
			f.LowRHHours, f.HighRHHours, f.OppressiveDewHours)
	case FactorWind:
		return fmt.Sprintf(
			"Strong winds (%d windy hours, %d hazardous hours). Airborne dust and debris are more likely.",
			f.WindyHours, f.HazardousWindHours)
	case FactorPrecip:
		return fmt.Sprintf(
			"Precipitation risk (%d heavy-rain days, %d-day dry spell).",
			f.HeavyRainDays, f.DrySpellDays)
	}
	return ""
}
