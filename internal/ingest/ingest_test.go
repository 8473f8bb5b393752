package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLoader struct {
	batches [][]domain.Record
	err     error
}

func (l *recordingLoader) LoadBatch(_ context.Context, records []domain.Record) error {
	if l.err != nil {
		return l.err
	}
	l.batches = append(l.batches, records)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const volumeCSV = `local_datetime,intersection_name,direction,total_volume
2025-03-03 07:00:00,Avenue 52,NB,1310
2025-03-03 08:00:00,Avenue 52,NB,1540
not-a-date,Avenue 52,NB,10
2025-03-03 09:00:00,,NB,10
`

func TestCSVIngester_Ingest(t *testing.T) {
	loader := &recordingLoader{}
	metrics := observability.NewMetricsForTesting()
	ing := NewCSVIngester(loader, discardLogger(), metrics)

	res, err := ing.Ingest(context.Background(), strings.NewReader(volumeCSV), domain.KindVolume, SourceUpload)
	require.NoError(t, err)

	_, err = uuid.Parse(res.BatchID)
	assert.NoError(t, err)
	assert.Equal(t, domain.KindVolume, res.Kind)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Loaded)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)
	require.Len(t, loader.batches, 1)
	assert.Len(t, loader.batches[0], 2)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RecordsIngested.WithLabelValues("volume", SourceUpload)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsRejected.WithLabelValues("volume", SourceUpload)), 0)
}

func TestCSVIngester_Chunks(t *testing.T) {
	loader := &recordingLoader{}
	ing := NewCSVIngester(loader, discardLogger(), observability.NewMetricsForTesting())
	ing.chunkSize = 5

	res, err := ing.IngestFile(context.Background(), filepath.Join("..", "..", "data", "mock", "travel_time_sample.csv"), domain.KindTravelTime, SourceSeed)
	require.NoError(t, err)
	assert.Equal(t, 16, res.Loaded)
	require.Len(t, loader.batches, 4)
	assert.Len(t, loader.batches[3], 1)
}

func TestCSVIngester_MissingHeader(t *testing.T) {
	ing := NewCSVIngester(&recordingLoader{}, discardLogger(), observability.NewMetricsForTesting())

	_, err := ing.Ingest(context.Background(), strings.NewReader("local_datetime,direction\n"), domain.KindVolume, SourceUpload)
	assert.ErrorIs(t, err, csvfile.ErrMissingHeader)
}

func TestCSVIngester_LoaderFailure(t *testing.T) {
	ing := NewCSVIngester(&recordingLoader{err: errors.New("disk full")}, discardLogger(), observability.NewMetricsForTesting())

	res, err := ing.Ingest(context.Background(), strings.NewReader(volumeCSV), domain.KindVolume, SourceUpload)
	require.Error(t, err)
	assert.Zero(t, res.Loaded)
}

func TestCSVIngester_MissingFile(t *testing.T) {
	ing := NewCSVIngester(&recordingLoader{}, discardLogger(), observability.NewMetricsForTesting())

	_, err := ing.IngestFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), domain.KindVolume, SourceSeed)
	assert.Error(t, err)
}
