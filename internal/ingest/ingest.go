// Package ingest loads CSV observation files into the record store.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/observability"
	"github.com/google/uuid"
)

// Sources label where a batch of rows came from.
const (
	SourceSeed   = "seed"
	SourceUpload = "upload"
)

// maxReportedErrors caps the row errors echoed back to callers.
const maxReportedErrors = 20

// DefaultChunkSize is the number of records written per store transaction.
const DefaultChunkSize = 500

// BatchLoader writes records to the store.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.Record) error
}

// Result summarizes one ingested file.
type Result struct {
	BatchID string            `json:"batch_id"`
	Kind    domain.RecordKind `json:"kind"`
	Source  string            `json:"source"`
	Total   int               `json:"total_rows"`
	Loaded  int               `json:"loaded"`
	Failed  int               `json:"failed"`
	Errors  []string          `json:"errors,omitempty"`
}

// CSVIngester parses CSV files and writes the valid rows in chunks.
type CSVIngester struct {
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	chunkSize int
}

// NewCSVIngester creates a CSVIngester writing to loader.
func NewCSVIngester(loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics) *CSVIngester {
	return &CSVIngester{loader: loader, logger: logger, metrics: metrics, chunkSize: DefaultChunkSize}
}

// IngestFile reads and loads a CSV file from disk.
func (i *CSVIngester) IngestFile(ctx context.Context, path string, kind domain.RecordKind, source string) (Result, error) {
	parsed, err := csvfile.ReadFile(path, kind)
	if err != nil {
		return Result{}, err
	}
	return i.load(ctx, parsed, source)
}

// Ingest reads and loads a CSV stream. Invalid rows are counted and skipped;
// a missing required header or a store failure fails the whole call.
func (i *CSVIngester) Ingest(ctx context.Context, r io.Reader, kind domain.RecordKind, source string) (Result, error) {
	parsed, err := csvfile.Read(r, kind)
	if err != nil {
		return Result{}, err
	}
	return i.load(ctx, parsed, source)
}

func (i *CSVIngester) load(ctx context.Context, parsed *csvfile.LoadResult, source string) (Result, error) {
	res := Result{
		BatchID: uuid.NewString(),
		Kind:    parsed.Kind,
		Source:  source,
		Total:   parsed.Total,
		Failed:  parsed.Failed,
	}
	for _, e := range parsed.Errors {
		if len(res.Errors) == maxReportedErrors {
			break
		}
		res.Errors = append(res.Errors, e.Error())
	}

	kind := string(parsed.Kind)
	i.metrics.RowsRejected.WithLabelValues(kind, source).Add(float64(parsed.Failed))

	for start := 0; start < len(parsed.Records); start += i.chunkSize {
		end := min(start+i.chunkSize, len(parsed.Records))
		if err := i.loader.LoadBatch(ctx, parsed.Records[start:end]); err != nil {
			return res, fmt.Errorf("load %s rows %d-%d: %w", kind, start+1, end, err)
		}
		res.Loaded = end
		i.metrics.RecordsIngested.WithLabelValues(kind, source).Add(float64(end - start))
	}

	i.logger.Info("csv ingested",
		"batch_id", res.BatchID,
		"kind", kind,
		"source", source,
		"loaded", res.Loaded,
		"failed", res.Failed,
	)
	if res.Failed > 0 {
		i.logger.Warn("csv rows rejected", "batch_id", res.BatchID, "kind", kind, "failed", res.Failed, "first_error", res.Errors[0])
	}
	return res, nil
}
