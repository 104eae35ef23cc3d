package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/exposure-engine/internal/domain"
	"github.com/couchcryptid/exposure-engine/internal/observability"
	"github.com/couchcryptid/exposure-engine/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

// mockTransformer fans each raw payload out into fanOut output events,
// or fails for keys listed in failKeys.
type mockTransformer struct {
	fanOut   int
	failKeys map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	if m.failKeys[string(raw.Key)] {
		return nil, errors.New("bad payload")
	}
	n := m.fanOut
	if n == 0 {
		n = 1
	}
	outs := make([]domain.OutputEvent, n)
	for i := range outs {
		outs[i] = domain.OutputEvent{
			Key:   raw.Key,
			Value: raw.Value,
			Headers: map[string]string{
				"period_kind": fmt.Sprintf("bucket-%d", i),
			},
		}
	}
	return outs, nil
}

type mockLoader struct {
	mu        sync.Mutex
	loaded    []domain.OutputEvent
	failFirst int
	calls     int
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failFirst {
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) all() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

func makeRaw(key string, commits *atomic.Int64) domain.RawEvent {
	raw := domain.RawEvent{
		Key:   []byte(key),
		Value: []byte(`{"user_id":"` + key + `"}`),
		Topic: "resolved-env-payloads",
	}
	if commits != nil {
		raw.Commit = func(context.Context) error {
			commits.Add(1)
			return nil
		}
	}
	return raw
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var commits atomic.Int64
	batch := []domain.RawEvent{
		makeRaw("user-1", &commits),
		makeRaw("user-2", &commits),
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	tfm := &mockTransformer{fanOut: 2}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	// 2 payloads, each fanned into 2 aggregates.
	assert.Len(t, ldr.all(), 4)
	assert.Equal(t, int64(2), commits.Load())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.all())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_PoisonPillSkippedAndCommitted(t *testing.T) {
	var commits atomic.Int64
	batch := []domain.RawEvent{
		makeRaw("bad-user", &commits),
		makeRaw("good-user", &commits),
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	tfm := &mockTransformer{failKeys: map[string]bool{"bad-user": true}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	loaded := ldr.all()
	require.Len(t, loaded, 1)
	assert.Equal(t, []byte("good-user"), loaded[0].Key)

	// Both the poison pill and the good payload have their offsets committed.
	assert.Equal(t, int64(2), commits.Load())
}

func TestPipeline_Run_RetriesLoadWithBackoff(t *testing.T) {
	var commits atomic.Int64
	batch := []domain.RawEvent{makeRaw("user-1", &commits)}

	// Same batch offered twice: the first load fails, the pipeline backs
	// off and the next cycle succeeds.
	ext := &mockExtractor{batches: [][]domain.RawEvent{batch, batch}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{failFirst: 1}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	assert.Len(t, ldr.all(), 1)
	// The commit happens only after a successful load.
	assert.Equal(t, int64(1), commits.Load())
}

func TestPipeline_Run_AllPayloadsFailed(t *testing.T) {
	var commits atomic.Int64
	batch := []domain.RawEvent{makeRaw("bad-user", &commits)}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	tfm := &mockTransformer{failKeys: map[string]bool{"bad-user": true}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	assert.Empty(t, ldr.all())
	assert.Equal(t, int64(1), commits.Load())
	// A batch with no successful payloads does not flip readiness.
	assert.Error(t, p.CheckReadiness(context.Background()))
}
