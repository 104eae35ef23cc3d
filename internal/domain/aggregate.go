package domain

import "time"

// PeriodAggregate is the engine's output unit: one bucket's derived
// statistics, scores, confidence, anomalies, and narratives. Aggregates
// are immutable once produced and hold no cross-references; the baseline
// used to produce one is a snapshot, not a pointer into live state.
type PeriodAggregate struct {
	UserID string     `json:"user_id"`
	Kind   PeriodKind `json:"period_kind"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`

	Features   Features  `json:"features"`
	Subscores  Subscores `json:"subscores"`
	Composite  int       `json:"composite"`
	Confidence float64   `json:"confidence"`
	Anomalies  []Anomaly `json:"anomalies,omitempty"`
	Narratives []string  `json:"narratives"`

	ProcessedAt time.Time `json:"processed_at"`

	// composite kept unrounded for the baseline track, so rolling stats
	// don't accumulate per-period rounding error.
	CompositeRaw float64 `json:"-"`
}

// BaselineStore is the externally owned rolling history the engine reads
// snapshots from. Snapshot returns nil when no history exists for the
// user and period kind. Run appends each aggregate strictly after its own
// anomaly test, so no aggregate is ever compared against itself.
type BaselineStore interface {
	Snapshot(userID string, kind PeriodKind) *Baseline
	Append(userID string, kind PeriodKind, agg PeriodAggregate)
}

// Aggregator drives the per-bucket flow: features → sub-scores →
// composite → confidence → baseline → anomalies → narratives. It is
// stateless and safe for concurrent use.
type Aggregator struct {
	guidelines Guidelines
	weights    Weights
	minSamples int
}

// NewAggregator validates the weights (ConfigError when they don't sum to
// 1.0) and returns an aggregator. minBaselineSamples is the trailing
// history required before anomaly detection engages.
func NewAggregator(g Guidelines, w Weights, minBaselineSamples int) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{guidelines: g, weights: w, minSamples: minBaselineSamples}, nil
}

// Run buckets a time-ordered reading sequence by the given period kind and
// produces one aggregate per bucket, in order. store may be nil, in which
// case anomaly detection is skipped entirely. Malformed buckets (empty,
// all-null factors) still produce an aggregate: sub-scores default to 0
// and confidence drops; nothing here aborts the period set.
func (a *Aggregator) Run(userID string, readings []EnvironmentalReading, kind PeriodKind, store BaselineStore) []PeriodAggregate {
	buckets := BucketReadings(readings, kind)
	precipHistory := DailyPrecipTotals(readings)

	aggregates := make([]PeriodAggregate, 0, len(buckets))
	for _, b := range buckets {
		var base *Baseline
		if store != nil {
			base = store.Snapshot(userID, kind)
		}
		agg := a.AggregateBucket(userID, b, precipHistory, base)
		if store != nil {
			store.Append(userID, kind, agg)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates
}

// AggregateBucket produces one aggregate from one bucket and a baseline
// snapshot. Pure except for the ProcessedAt clock stamp.
func (a *Aggregator) AggregateBucket(userID string, b PeriodBucket, precipHistory []DailyPrecip, base *Baseline) PeriodAggregate {
	features := ExtractFeatures(b, precipHistory, a.guidelines)
	subscores := ScoreFeatures(features, a.guidelines)
	composite := CompositeScore(subscores, a.weights)
	confidence := EstimateConfidence(b)
	anomalies := DetectAnomalies(subscores, composite, base, a.minSamples)
	narratives := Narratives(subscores, features, composite, confidence)

	return PeriodAggregate{
		UserID:       userID,
		Kind:         b.Kind,
		Start:        b.Start,
		End:          b.End,
		Features:     features,
		Subscores:    subscores,
		Composite:    roundScore(composite),
		CompositeRaw: composite,
		Confidence:   confidence,
		Anomalies:    anomalies,
		Narratives:   narratives,
		ProcessedAt:  clock.Now(),
	}
}

func roundScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
