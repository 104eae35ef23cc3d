package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/exposure-engine/internal/baseline"
	"github.com/couchcryptid/exposure-engine/internal/domain"
	"github.com/couchcryptid/exposure-engine/internal/observability"
)

// ExposureTransformer implements Transformer by running the full scoring
// flow for one resolved payload: normalize the readings, aggregate daily
// and weekly buckets against the user's rolling baseline, and serialize
// each aggregate for the sink topic.
type ExposureTransformer struct {
	aggregator *domain.Aggregator
	baselines  *baseline.Registry
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewTransformer creates an ExposureTransformer backed by the given
// baseline registry.
func NewTransformer(agg *domain.Aggregator, baselines *baseline.Registry, logger *slog.Logger, metrics *observability.Metrics) *ExposureTransformer {
	return &ExposureTransformer{
		aggregator: agg,
		baselines:  baselines,
		logger:     logger,
		metrics:    metrics,
	}
}

func (t *ExposureTransformer) Transform(_ context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	payload, err := domain.ParseResolvedPayload(raw)
	if err != nil {
		return nil, err
	}

	readings, err := domain.NormalizeReadings(payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	daily := t.aggregator.Run(payload.UserID, readings, domain.PeriodDaily, t.baselines)
	weekly := t.aggregator.Run(payload.UserID, readings, domain.PeriodWeekly, t.baselines)
	t.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	t.metrics.BaselineUsers.Set(float64(t.baselines.Users()))

	events := make([]domain.OutputEvent, 0, len(daily)+len(weekly))
	for _, agg := range append(daily, weekly...) {
		out, err := domain.SerializeAggregate(agg)
		if err != nil {
			return nil, fmt.Errorf("user %s %s bucket %s: %w",
				agg.UserID, agg.Kind, agg.Start.Format("2006-01-02"), err)
		}
		events = append(events, out)

		t.metrics.AggregatesProduced.WithLabelValues(string(agg.Kind)).Inc()
		for _, an := range agg.Anomalies {
			t.metrics.AnomaliesFlagged.WithLabelValues(string(agg.Kind), string(an.Kind)).Inc()
		}
		if len(agg.Anomalies) > 0 {
			t.logger.Info("anomalies flagged",
				"user_id", agg.UserID,
				"period", agg.Kind,
				"start", agg.Start.Format("2006-01-02"),
				"count", len(agg.Anomalies),
			)
		}
	}

	t.logger.Debug("payload aggregated",
		"user_id", payload.UserID,
		"readings", len(readings),
		"daily_buckets", len(daily),
		"weekly_buckets", len(weekly),
	)

	return events, nil
}
