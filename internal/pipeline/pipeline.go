package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/observability"
)

// BatchExtractor reads up to batchSize raw messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer converts a raw message into a typed record.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.Record, error)
}

// BatchLoader writes multiple records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.Record) error
}

// Pipeline orchestrates the extract-transform-load loop that feeds the record store.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
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
	}
}

// CheckReadiness returns nil once the pipeline has loaded a batch or MarkReady
// was called, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any records yet")
	}
	return nil
}

// MarkReady flags the store as populated by another route, such as seed CSV files.
func (p *Pipeline) MarkReady() {
	p.ready.Store(true)
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := newRetryDelay(minRetryDelay, maxRetryDelay)
	for ctx.Err() == nil {
		if !p.step(ctx, delay) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

const (
	minRetryDelay = 200 * time.Millisecond
	maxRetryDelay = 5 * time.Second
)

// step runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) step(ctx context.Context, delay *retryDelay) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	switch {
	case err != nil && ctx.Err() != nil:
		return false
	case err != nil:
		p.logger.Error("extract batch failed", "error", err)
		return delay.wait(ctx)
	case len(batch) == 0:
		return true
	}

	p.metrics.BatchSize.Observe(float64(len(batch)))
	delay.reset()

	records, accepted := p.transform(ctx, batch)
	if len(records) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, records); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(records))
		return delay.wait(ctx)
	}

	for _, rec := range records {
		p.metrics.RecordsIngested.WithLabelValues(string(rec.Kind), "kafka").Inc()
	}
	for _, raw := range accepted {
		p.commitOffset(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// transform parses every message in the batch. Unparseable messages are
// committed and skipped so a poison message cannot stall the partition.
// Messages that resolve to the same record ID collapse to the last one seen.
// The returned raws are the messages to commit after a successful load.
func (p *Pipeline) transform(ctx context.Context, batch []domain.RawMessage) ([]domain.Record, []domain.RawMessage) {
	records := make([]domain.Record, 0, len(batch))
	accepted := make([]domain.RawMessage, 0, len(batch))
	index := make(map[string]int, len(batch))

	for _, raw := range batch {
		rec, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		accepted = append(accepted, raw)

		id := rec.ID()
		if i, seen := index[id]; seen && id != "" {
			records[i] = rec
			continue
		}
		index[id] = len(records)
		records = append(records, rec)
	}
	return records, accepted
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retryDelay doubles from min to max on each failed cycle and resets on success.
type retryDelay struct {
	current, min, max time.Duration
}

func newRetryDelay(minDelay, maxDelay time.Duration) *retryDelay {
	return &retryDelay{current: minDelay, min: minDelay, max: maxDelay}
}

func (d *retryDelay) reset() { d.current = d.min }

// wait sleeps for the current delay and advances it. Returns false when ctx
// ends first.
func (d *retryDelay) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timer := time.NewTimer(d.current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	d.current = min(d.current*2, d.max)
	return true
}
