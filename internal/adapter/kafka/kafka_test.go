package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/exposure-engine/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("user-1"),
		Value:     []byte(`{"user_id":"user-1"}`),
		Topic:     "resolved-env-payloads",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("resolver")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("user-1"), raw.Key)
	assert.JSONEq(t, `{"user_id":"user-1"}`, string(raw.Value))
	assert.Equal(t, "resolved-env-payloads", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "resolver", raw.Headers["source"])
	assert.Nil(t, raw.Commit, "commit callback is attached by the reader")
}

func TestToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("user-1"),
		Value: []byte(`{"composite":62}`),
		Headers: map[string]string{
			"period_kind":  "daily",
			"period_start": "2025-03-10T00:00:00Z",
			"processed_at": "2025-03-11T06:00:00Z",
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("user-1"), msg.Key)
	assert.Equal(t, []byte(`{"composite":62}`), msg.Value)
	assert.Len(t, msg.Headers, 3)
	assert.Equal(t, "period_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("daily"), msg.Headers[0].Value)
	assert.Equal(t, "period_start", msg.Headers[1].Key)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
}

func TestToMessageSkipsMissingHeaders(t *testing.T) {
	event := domain.OutputEvent{
		Key:     []byte("user-2"),
		Value:   []byte(`{}`),
		Headers: map[string]string{"period_kind": "weekly"},
	}

	msg := toMessage(event)

	assert.Len(t, msg.Headers, 1)
	assert.Equal(t, "period_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("weekly"), msg.Headers[0].Value)
}
