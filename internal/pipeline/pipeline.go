// Package pipeline consumes event-set requests from the broker, generates
// products for each and publishes the results.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
)

// BatchExtractor reads up to batchSize raw requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer turns one raw request into a publishable result.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error)
}

// BatchLoader writes multiple results to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, msgs []domain.OutputMessage) error
}

// Request failure reasons, used as the request_errors_total label.
const (
	ReasonRejected = "rejected"
	ReasonService  = "external_service"
	ReasonInternal = "internal"
)

// Pipeline runs the request loop: extract a batch, generate products for each
// request, publish them, then commit.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
	retry       retryPolicy
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		retry:       retryPolicy{initial: 200 * time.Millisecond, max: 5 * time.Second},
	}
}

// Ready reports whether at least one batch has been published.
func (p *Pipeline) Ready() bool { return p.ready.Load() }

// CheckReadiness returns nil once the pipeline has published products.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any products yet")
	}
	return nil
}

// Run processes batches until ctx is cancelled. Extract and publish failures
// are retried with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.retry.reset()
	for ctx.Err() == nil {
		if err := p.step(ctx); err != nil && !p.retry.wait(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// step runs one batch. A non-nil error asks Run to back off before the next.
func (p *Pipeline) step(ctx context.Context) error {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("extract batch failed", "error", err)
		}
		return err
	}
	if len(batch) == 0 {
		return nil
	}
	p.metrics.RequestsConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	p.retry.reset()

	outs, done := p.generate(ctx, batch)
	if len(outs) == 0 {
		return nil
	}
	if err := p.loader.LoadBatch(ctx, outs); err != nil {
		p.logger.Error("publish products failed", "error", err, "requests", len(outs))
		return err
	}
	p.metrics.ProductsPublished.Add(float64(len(outs)))
	for _, raw := range done {
		p.commit(ctx, raw)
	}
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return nil
}

// generate transforms each request of the batch. Requests that fail are
// counted by reason and committed right away so they are not redelivered.
// It returns the results to publish and the requests they came from.
func (p *Pipeline) generate(ctx context.Context, batch []domain.RawMessage) ([]domain.OutputMessage, []domain.RawMessage) {
	outs := make([]domain.OutputMessage, 0, len(batch))
	done := make([]domain.RawMessage, 0, len(batch))

	for _, raw := range batch {
		out, err := p.transformer.Transform(ctx, raw)
		if err == nil {
			outs = append(outs, out)
			done = append(done, raw)
			continue
		}

		reason := Reason(err)
		attrs := []any{"reason", reason, "key", string(raw.Key), "partition", raw.Partition, "offset", raw.Offset, "error", err}
		if reason == ReasonRejected {
			p.logger.Warn("request rejected", attrs...)
		} else {
			p.logger.Error("request failed", attrs...)
		}
		p.metrics.RequestErrors.WithLabelValues(reason).Inc()
		p.commit(ctx, raw)
	}
	return outs, done
}

// Reason classifies a request failure.
func Reason(err error) string {
	switch {
	case generator.IsRejected(err):
		return ReasonRejected
	case errors.Is(err, domain.ErrExternalService):
		return ReasonService
	default:
		return ReasonInternal
	}
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retryPolicy doubles the wait after each failure up to max.
type retryPolicy struct {
	initial, max, next time.Duration
}

func (r *retryPolicy) reset() { r.next = r.initial }

// wait sleeps for the current delay and advances it. It returns false when
// ctx ends first.
func (r *retryPolicy) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timer := time.NewTimer(r.next)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	r.next = min(r.next*2, r.max)
	return true
}
