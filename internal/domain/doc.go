// Package domain implements the exposure aggregation and scoring engine:
// it turns a person's hourly environmental readings into daily and weekly
// exposure aggregates with per-factor severity scores, a composite score,
// a data-confidence estimate, baseline-relative anomalies, and templated
// narrative explanations.
//
// # Input
//
// The engine consumes a ResolvedPayload: a location, an IANA timezone, a
// pollutant snapshot (current-conditions style) or a true hourly pollutant
// series, and an hourly weather series of equal-length arrays as produced
// by the upstream resolver from Open-Meteo and the Google Air Quality API.
// [NormalizeReadings] flattens a payload into one EnvironmentalReading per
// hour. When only a snapshot is available its values are broadcast to every
// hour and tagged with provenance "snapshot"; a true hourly series overrides
// the snapshot and is tagged "hourly". Missing values stay nil throughout;
// zero is a valid physical reading and is never used as a missing marker.
//
// # Factors
//
// The factor set is closed and ordered: pm25, o3, no2, so2, co, uv, temp,
// humidity_dew, wind, precip. Narrative output follows this declaration
// order, so the set is a fixed array of named fields rather than a map.
//
// # Guideline anchors
//
// Scoring is anchored on WHO air quality guidelines and US NAAQS reference
// points (see [DefaultGuidelines]):
//
//	PM2.5:  5 µg/m³ annual, 15 µg/m³ 24-hour (WHO 2021)
//	Ozone:  70 ppb 8-hour (US NAAQS AQI-100), 50 ppb WHO peak-season
//	NO2:    10 µg/m³ annual (WHO)
//	SO2:    40 µg/m³ 24-hour (WHO)
//	CO:     3.5 ppm 24-hour (≈4 mg/m³, WHO)
//	UV:     index 3 protection threshold, index 8 very high (WHO UVI)
//	Heat:   32°C heat stress cutoff, 18–24°C comfort band
//	Wind:   30 km/h dust-lofting, 60 km/h hazardous debris
//	Rain:   50 mm/day heavy-rain heuristic, 7-day dry-spell grace
//
// These are tunable scoring constants, not biomedical claims.
//
// # Scores
//
// Each factor maps extracted features to a 0–100 severity (higher = worse)
// via a guideline-relative ratio plus a capped peak penalty. The composite
// is a weighted sum of the ten sub-scores (weights must sum to 1.0) with a
// severity kicker of 0.2·(max−80) when any single sub-score reaches 80.
// Intermediate math stays in floating point; rounding happens once at the
// output boundary.
//
// # Baselines and anomalies
//
// Anomaly detection compares each aggregate against a rolling personal
// baseline (mean/std per factor and composite over the trailing 30 daily or
// 12 weekly aggregates) that strictly precedes the aggregate under test.
// The engine only reads baseline snapshots; appending the new aggregate to
// the rolling history is the caller's job and must happen after detection
// so an aggregate is never compared against itself.
//
// The engine is pure computation: no I/O, no clocks other than the
// swappable ProcessedAt stamp, no mutable shared state. Any two buckets may
// be aggregated concurrently.
package domain
