package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "traffic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func travelRecord(t *testing.T, ts time.Time, segment, dir string, tt float64) domain.TravelTimeRecord {
	t.Helper()
	rec, err := domain.RawRecord{
		Kind:              string(domain.KindTravelTime),
		LocalDateTime:     ts.Format("2006-01-02 15:04:05"),
		SegmentName:       segment,
		Direction:         dir,
		AverageTravelTime: domain.FormatNumber(tt),
		AverageDelay:      "0.5",
	}.ToRecord()
	require.NoError(t, err)
	return domain.EnrichRecord(rec).TravelTime
}

func volumeRecord(t *testing.T, ts time.Time, intersection, dir string, v float64) domain.VolumeRecord {
	t.Helper()
	rec, err := domain.RawRecord{
		Kind:             string(domain.KindVolume),
		LocalDateTime:    ts.Format("2006-01-02 15:04:05"),
		IntersectionName: intersection,
		Direction:        dir,
		TotalVolume:      domain.FormatNumber(v),
	}.ToRecord()
	require.NoError(t, err)
	return domain.EnrichRecord(rec).Volume
}

func TestOpenAppliesPragmasAndSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	g, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), g)
	assert.NoError(t, s.CheckReadiness(ctx))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveVolumes(context.Background(), []domain.VolumeRecord{volumeRecord(t, at(4, 7), "X", "NB", 10)}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Volumes(context.Background(), filter.DateRange{}, "", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveTravelTimesUpsertsAndReadsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := travelRecord(t, at(4, 7), "A → B", "NB", 3.5)
	require.NoError(t, s.SaveTravelTimes(ctx, []domain.TravelTimeRecord{
		first,
		travelRecord(t, at(4, 8), "B → C", "NB", 4),
		travelRecord(t, at(6, 8), "A → B", "NB", 5),
	}))

	updated := first
	updated.AverageTravelTime = 6
	require.NoError(t, s.SaveTravelTimes(ctx, []domain.TravelTimeRecord{updated}))

	r, err := filter.NewDateRange(at(4, 0), at(5, 0))
	require.NoError(t, err)
	got, err := s.TravelTimes(ctx, r)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, at(4, 7), got[0].LocalDateTime)
	assert.Equal(t, 6.0, got[0].AverageTravelTime)
	assert.Equal(t, 0.5, got[0].AverageDelay)
	assert.True(t, math.IsNaN(got[0].AverageSpeed), "NULL speed should read back as NaN")
	assert.Equal(t, "B → C", got[1].SegmentName)

	g, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), g)
}

func TestVolumesFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveVolumes(ctx, []domain.VolumeRecord{
		volumeRecord(t, at(4, 7), "Avenue 50", "NB", 100),
		volumeRecord(t, at(4, 7), "Avenue 50", "SB", math.NaN()),
		volumeRecord(t, at(4, 8), "Calle Tampico", "NB", 300),
	}))

	all, err := s.Volumes(ctx, filter.DateRange{}, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := s.Volumes(ctx, filter.DateRange{}, "Avenue 50", "SB")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.True(t, math.IsNaN(one[0].TotalVolume))

	names, err := s.Intersections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Avenue 50", "Calle Tampico"}, names)

	dirs, err := s.Directions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NB", "SB"}, dirs)
}

func TestSegmentsFirstSeenOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTravelTimes(ctx, []domain.TravelTimeRecord{
		travelRecord(t, at(4, 7), "Calle Tampico → Avenue 52", "SB", 1),
		travelRecord(t, at(4, 7), "Avenue 52 → Calle Tampico", "NB", 1),
		travelRecord(t, at(4, 8), "Calle Tampico → Avenue 52", "SB", 1),
	}))

	segs, err := s.Segments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Calle Tampico → Avenue 52", "Avenue 52 → Calle Tampico"}, segs)
}

func TestBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.Bounds(ctx, domain.KindVolume)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	require.NoError(t, s.SaveVolumes(ctx, []domain.VolumeRecord{
		volumeRecord(t, at(9, 23), "X", "NB", 1),
		volumeRecord(t, at(2, 0), "X", "NB", 1),
	}))
	b, err := s.Bounds(ctx, domain.KindVolume)
	require.NoError(t, err)
	assert.Equal(t, at(2, 0), b.Start)
	assert.Equal(t, at(9, 0), b.End)
}

func TestLoadBatchMixedKinds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.LoadBatch(ctx, []domain.Record{
		{Kind: domain.KindTravelTime, TravelTime: travelRecord(t, at(4, 7), "A → B", "NB", 2)},
		{Kind: domain.KindVolume, Volume: volumeRecord(t, at(4, 7), "X", "NB", 5)},
	})
	require.NoError(t, err)

	g, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g)

	err = s.LoadBatch(ctx, []domain.Record{{Kind: "speed"}})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	g, err = s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g, "failed batch must not bump the generation")

	require.NoError(t, s.LoadBatch(ctx, nil))
	next, err := s.BumpGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}
