package pipeline

import (
	"context"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// RecordTransformer implements Transformer using the domain parse and enrich functions.
type RecordTransformer struct{}

// NewTransformer creates a RecordTransformer.
func NewTransformer() *RecordTransformer {
	return &RecordTransformer{}
}

func (t *RecordTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.Record, error) {
	rec, err := domain.ParseRawMessage(raw)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.EnrichRecord(rec), nil
}
