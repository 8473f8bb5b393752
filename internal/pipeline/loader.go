package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// FanOutLoader persists records to the store and then forwards them to an
// optional sink. Forwarding failures are logged; the store is the source of truth.
type FanOutLoader struct {
	store  BatchLoader
	sink   BatchLoader
	logger *slog.Logger
}

// NewFanOutLoader creates a FanOutLoader. Pass a nil sink to disable forwarding.
func NewFanOutLoader(store, sink BatchLoader, logger *slog.Logger) *FanOutLoader {
	return &FanOutLoader{store: store, sink: sink, logger: logger}
}

func (l *FanOutLoader) LoadBatch(ctx context.Context, records []domain.Record) error {
	if err := l.store.LoadBatch(ctx, records); err != nil {
		return fmt.Errorf("store batch: %w", err)
	}
	if l.sink == nil {
		return nil
	}
	if err := l.sink.LoadBatch(ctx, records); err != nil {
		l.logger.Warn("forward batch to sink failed", "error", err, "batch_size", len(records))
	}
	return nil
}
