package domain

// FactorStats is a rolling mean/standard-deviation pair for one score track.
type FactorStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Baseline is a read-only snapshot of a user's rolling score statistics for
// one period kind, computed over aggregates that strictly precede the one
// under test. The engine never mutates a baseline; appending new aggregates
// to the rolling history is the owning store's job.
type Baseline struct {
	Factors   [len(Factors)]FactorStats `json:"factors"`
	Composite FactorStats               `json:"composite"`
	Samples   int                       `json:"samples"`
}

// Factor returns the stats for one factor.
func (b *Baseline) Factor(f Factor) FactorStats {
	for i, name := range Factors {
		if name == f {
			return b.Factors[i]
		}
	}
	return FactorStats{}
}

// SetFactor stores stats for one factor; used by baseline stores when
// assembling a snapshot.
func (b *Baseline) SetFactor(f Factor, s FactorStats) {
	for i, name := range Factors {
		if name == f {
			b.Factors[i] = s
			return
		}
	}
}

// AnomalyKind discriminates the two deviation checks.
type AnomalyKind string

const (
	AnomalySubscoreSpike    AnomalyKind = "subscore_spike"
	AnomalyCompositeOutlier AnomalyKind = "composite_outlier"
)

// Anomaly is a flagged deviation from the personal baseline. It has no
// independent lifecycle; it exists only nested inside one PeriodAggregate.
type Anomaly struct {
	Kind     AnomalyKind `json:"kind"`
	Factor   Factor      `json:"factor,omitempty"` // subscore_spike only
	Observed float64     `json:"observed"`
	ZScore   float64     `json:"z_score,omitempty"` // subscore_spike only
	Margin   float64     `json:"margin,omitempty"`  // composite_outlier only
}

// spikeZThreshold is the minimum per-factor z-score that flags a spike.
const spikeZThreshold = 2.0

// compositeMarginFloor keeps the composite check meaningful when the
// baseline variance is small: the excess must reach max(15, 2·std).
const compositeMarginFloor = 15.0

// DetectAnomalies runs the per-factor z-score test and the composite
// margin test against a baseline snapshot. The two checks are independent
// and non-exclusive; a bucket may carry zero, one, or several anomalies.
// With no baseline, or fewer than minSamples trailing aggregates, both
// checks are skipped entirely; absence of history is not zero variance.
// A degenerate factor track (zero std) is likewise skipped.
func DetectAnomalies(s Subscores, composite float64, base *Baseline, minSamples int) []Anomaly {
	if base == nil || base.Samples < minSamples {
		return nil
	}

	var anomalies []Anomaly
	for _, f := range Factors {
		stats := base.Factor(f)
		if stats.StdDev <= 0 {
			continue
		}
		observed := float64(s.Get(f))
		z := (observed - stats.Mean) / stats.StdDev
		if z >= spikeZThreshold {
			anomalies = append(anomalies, Anomaly{
				Kind:     AnomalySubscoreSpike,
				Factor:   f,
				Observed: observed,
				ZScore:   z,
			})
		}
	}

	margin := composite - base.Composite.Mean
	threshold := compositeMarginFloor
	if t := 2 * base.Composite.StdDev; t > threshold {
		threshold = t
	}
	if margin >= threshold {
		anomalies = append(anomalies, Anomaly{
			Kind:     AnomalyCompositeOutlier,
			Observed: composite,
			Margin:   margin,
		})
	}

	return anomalies
}
