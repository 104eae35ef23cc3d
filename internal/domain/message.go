package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseResolvedPayload deserializes a RawEvent's value into a
// ResolvedPayload. It expects the JSON produced by the resolver service.
func ParseResolvedPayload(raw RawEvent) (ResolvedPayload, error) {
	var p ResolvedPayload
	if err := json.Unmarshal(raw.Value, &p); err != nil {
		return ResolvedPayload{}, fmt.Errorf("parse resolved payload: %w", err)
	}
	return p, nil
}

// SerializeAggregate marshals one period aggregate into an output event.
// The key is the user ID so all of a user's aggregates share a partition
// and arrive in order.
func SerializeAggregate(agg PeriodAggregate) (OutputEvent, error) {
	data, err := json.Marshal(agg)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize aggregate: %w", err)
	}
	return OutputEvent{
		Key:   []byte(agg.UserID),
		Value: data,
		Headers: map[string]string{
			"period_kind":  string(agg.Kind),
			"period_start": agg.Start.Format(time.RFC3339),
			"processed_at": agg.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
