//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/exposure-engine/internal/adapter/kafka"
	"github.com/couchcryptid/exposure-engine/internal/baseline"
	"github.com/couchcryptid/exposure-engine/internal/config"
	"github.com/couchcryptid/exposure-engine/internal/domain"
	"github.com/couchcryptid/exposure-engine/internal/observability"
	"github.com/couchcryptid/exposure-engine/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-resolved-payloads"
	testSinkTopic   = "test-exposure-aggregates"
)

func ptr(v float64) *float64 { return &v }

// makePayload builds a resolved payload with full hourly coverage for the
// given number of days.
func makePayload(t *testing.T, userID string, days int) []byte {
	t.Helper()

	hours := days * 24
	weather := domain.HourlyWeather{
		Time:             make([]string, hours),
		Temperature:      make([]*float64, hours),
		RelativeHumidity: make([]*float64, hours),
		DewPoint:         make([]*float64, hours),
		Precipitation:    make([]*float64, hours),
		CloudCover:       make([]*float64, hours),
		WindSpeed:        make([]*float64, hours),
		UVIndex:          make([]*float64, hours),
	}
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < hours; i++ {
		weather.Time[i] = start.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
		weather.Temperature[i] = ptr(21.0)
		weather.RelativeHumidity[i] = ptr(50.0)
		weather.DewPoint[i] = ptr(10.0)
		weather.Precipitation[i] = ptr(1.0)
		weather.CloudCover[i] = ptr(30.0)
		weather.WindSpeed[i] = ptr(12.0)
		weather.UVIndex[i] = ptr(3.0)
	}

	payload := domain.ResolvedPayload{
		UserID:   userID,
		Latitude: 40.4,
		Timezone: "UTC",
		Pollutants: &domain.PollutantSnapshot{
			PM25: ptr(6.0),
			O3:   ptr(35.0),
			NO2:  ptr(8.0),
			SO2:  ptr(12.0),
			CO:   ptr(0.4),
		},
		Weather: weather,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

// aggregateMessage holds a deserialized message read from the sink topic.
type aggregateMessage struct {
	Aggregate domain.PeriodAggregate
	Key       string
	Headers   map[string]string
}

// readAggregate reads one message from the sink consumer and deserializes it.
func readAggregate(ctx context.Context, t *testing.T, consumer *kafkago.Reader) aggregateMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var agg domain.PeriodAggregate
	require.NoError(t, json.Unmarshal(msg.Value, &agg), "unmarshal sink message")

	return aggregateMessage{
		Aggregate: agg,
		Key:       string(msg.Key),
		Headers:   headers,
	}
}

func newTransformer() *pipeline.ExposureTransformer {
	agg, err := domain.NewAggregator(domain.DefaultGuidelines(), domain.DefaultWeights(), 5)
	if err != nil {
		panic(err)
	}
	return pipeline.NewTransformer(agg, baseline.NewRegistry(100), discardLogger(), observability.NewMetricsForTesting())
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor)
// and kafka.Writer (Loader) correctly round-trip a payload through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	payload := makePayload(t, "user-1", 1)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("user-1"),
		Value: payload,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("user-1"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	// Transform into aggregates: one daily bucket plus one weekly bucket.
	events, err := newTransformer().Transform(ctx, raw)
	require.NoError(t, err)
	require.Len(t, events, 2)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, events))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	am := readAggregate(ctx, t, consumer)
	assert.Equal(t, "user-1", am.Key)
	assert.Equal(t, "daily", am.Headers["period_kind"])
	assert.Contains(t, am.Headers, "processed_at")
	_, err = time.Parse(time.RFC3339, am.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "user-1", am.Aggregate.UserID)
	assert.Equal(t, domain.PeriodDaily, am.Aggregate.Kind)
	assert.GreaterOrEqual(t, am.Aggregate.Composite, 0)
	assert.LessOrEqual(t, am.Aggregate.Composite, 100)
	assert.InDelta(t, 1.0, am.Aggregate.Confidence, 1e-9, "full coverage should give confidence 1.0")
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer →
// Writer) with real Kafka and verifies a week of payloads aggregates into
// the expected daily and weekly buckets.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// One payload per user: 7 days for user-a, 2 days for user-b.
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("user-a"), Value: makePayload(t, "user-a", 7)},
		kafkago.Message{Key: []byte("user-b"), Value: makePayload(t, "user-b", 2)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	// user-a: 7 daily + 1 weekly (2025-03-10 is a Monday, so all seven
	// days share one ISO week). user-b: 2 daily + 1 weekly.
	const wantMessages = 8 + 3
	received := make([]aggregateMessage, 0, wantMessages)
	for len(received) < wantMessages {
		received = append(received, readAggregate(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	counts := map[string]int{}
	for _, am := range received {
		counts[am.Key+"/"+am.Headers["period_kind"]]++

		assert.NotEmpty(t, am.Headers["period_start"], "missing period_start header")
		_, err := time.Parse(time.RFC3339, am.Headers["period_start"])
		assert.NoError(t, err, "invalid period_start format")
		assert.Equal(t, am.Key, am.Aggregate.UserID, "key should match aggregate user")
		assert.NotEmpty(t, am.Aggregate.Narratives)
	}

	assert.Equal(t, 7, counts["user-a/daily"])
	assert.Equal(t, 1, counts["user-a/weekly"])
	assert.Equal(t, 2, counts["user-b/daily"])
	assert.Equal(t, 1, counts["user-b/weekly"])
}

// TestPipelineTransformError verifies that an invalid payload (poison pill)
// is skipped and the pipeline continues processing valid payloads.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("user-c"), Value: makePayload(t, "user-c", 1)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	// Only the valid payload's aggregates appear: one daily, one weekly.
	first := readAggregate(ctx, t, consumer)
	second := readAggregate(ctx, t, consumer)
	assert.Equal(t, "user-c", first.Aggregate.UserID)
	assert.Equal(t, "user-c", second.Aggregate.UserID)

	// Verify no third message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no third message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
