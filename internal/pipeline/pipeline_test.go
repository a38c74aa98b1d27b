package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
	"github.com/couchcryptid/hazard-product-generator/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawMessage
	index   atomic.Int64
	err     error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	if m.err != nil {
		return domain.OutputMessage{}, m.err
	}
	return domain.OutputMessage{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputMessage
	fail   atomic.Int64
}

func (m *mockLoader) LoadBatch(_ context.Context, msgs []domain.OutputMessage) error {
	if m.fail.Load() > 0 {
		m.fail.Add(-1)
		return errors.New("broker unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = append(m.loaded, msgs...)
	return nil
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

type mockGenerator struct {
	out *generator.Output
	err error
	got domain.EventSet
}

func (m *mockGenerator) Generate(_ context.Context, set domain.EventSet) (*generator.Output, error) {
	m.got = set
	return m.out, m.err
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func rawRequest(t *testing.T, key string, events ...domain.HazardEvent) domain.RawMessage {
	t.Helper()
	data, err := json.Marshal(domain.EventSet{
		Events:     events,
		Attributes: domain.EventSetAttributes{SiteID: "BOU", CurrentTime: time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	return domain.RawMessage{Key: []byte(key), Value: data, Topic: "hazard-event-sets"}
}

func watchEvent(id string) domain.HazardEvent {
	return domain.HazardEvent{EventID: id, Status: domain.StatusPending, Phen: "FF", Sig: "A", GeoType: domain.GeoArea,
		Attributes: domain.Attributes{"ugcs": []any{"COC005"}}}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := rawRequest(t, "req-1", watchEvent("1"))

	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	require.Equal(t, 1, ldr.count())
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.True(t, p.Ready())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int64
	raw := rawRequest(t, "req-2", watchEvent("1"))
	raw.Commit = func(context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad request")}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.False(t, p.Ready())
	assert.Equal(t, int64(1), commits.Load(), "a failed request is committed so it is not redelivered")
}

func TestPipeline_Run_CountsFailuresByReason(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawMessage{{rawRequest(t, "req-7", watchEvent("1"))}}}
	metrics := newTestMetrics()
	p := pipeline.New(ext, &mockTransformer{err: domain.ExternalServiceError("event store", errors.New("closed"))},
		&mockLoader{}, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RequestErrors.WithLabelValues(pipeline.ReasonService)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RequestErrors.WithLabelValues(pipeline.ReasonRejected)), 0)
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", fmt.Errorf("%w: no events", domain.ErrValidation), pipeline.ReasonRejected},
		{"collaborator", domain.ExternalServiceError("vtec store", errors.New("locked")), pipeline.ReasonService},
		{"other", errors.New("boom"), pipeline.ReasonInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.Reason(tt.err))
		})
	}
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false
	raw := rawRequest(t, "req-3", watchEvent("1"))
	raw.Commit = func(context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.True(t, commitCalled)
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	var commits atomic.Int64
	raw := rawRequest(t, "req-4", watchEvent("1"))
	raw.Commit = func(context.Context) error {
		commits.Add(1)
		return nil
	}

	ldr := &mockLoader{}
	ldr.fail.Store(1 << 20)
	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Zero(t, commits.Load())
	assert.False(t, p.Ready())
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	ext := &mockExtractor{err: errors.New("broker down")}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond, "run returns only when the context ends")
}

func TestProductTransformer_Transform(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, 6, 15, 18, 5, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	gen := &mockGenerator{out: &generator.Output{Issued: true}}
	tfm := pipeline.NewTransformer(gen, slog.Default())

	out, err := tfm.Transform(context.Background(), rawRequest(t, "req-5", watchEvent("HZ-7")))
	require.NoError(t, err)

	assert.Equal(t, []byte("req-5"), out.Key)
	assert.Equal(t, "true", out.Headers["issued"])
	assert.Equal(t, "2026-06-15T18:05:00Z", out.Headers["generated_at"])
	require.Len(t, gen.got.Events, 1)
	assert.Equal(t, "HZ-7", gen.got.Events[0].EventID)
}

func TestProductTransformer_GeneratorError(t *testing.T) {
	tfm := pipeline.NewTransformer(&mockGenerator{err: domain.ExternalServiceError("vtec engine", errors.New("down"))}, slog.Default())

	_, err := tfm.Transform(context.Background(), rawRequest(t, "req-6", watchEvent("1")))
	require.ErrorIs(t, err, domain.ErrExternalService)
}

func TestParseRequest_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"not json":  "not json",
		"no events": `{"events":[],"attributes":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := pipeline.ParseRequest(domain.RawMessage{Value: []byte(body)})
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
