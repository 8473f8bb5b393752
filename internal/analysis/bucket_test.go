package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

func TestBucketStart(t *testing.T) {
	ts := time.Date(2024, 3, 10, 15, 42, 0, 0, time.UTC) // Sunday

	assert.Equal(t, time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC), BucketStart(ts, domain.Hourly))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), BucketStart(ts, domain.Daily))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), BucketStart(ts, domain.Weekly))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), BucketStart(at(4, 9), domain.Weekly))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), BucketStart(ts, domain.Monthly))
}

func TestBucketHours(t *testing.T) {
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1.0, BucketHours(feb, domain.Hourly))
	assert.Equal(t, 24.0, BucketHours(feb, domain.Daily))
	assert.Equal(t, 168.0, BucketHours(feb, domain.Weekly))
	assert.Equal(t, 696.0, BucketHours(feb, domain.Monthly))
	assert.Equal(t, 744.0, BucketHours(at(1, 0), domain.Monthly))
}

func TestBucketVolumes(t *testing.T) {
	records := []domain.VolumeRecord{
		vol(at(5, 7), "A", "NB", 300),
		vol(at(4, 7), "A", "NB", 100),
		vol(at(4, 8), "A", "SB", 200),
		vol(at(4, 9), "A", "NB", nan),
		vol(at(4, 7), "B", "NB", 50),
	}

	buckets := BucketVolumes(records, domain.Daily)
	require.Len(t, buckets, 3)
	assert.Equal(t, VolumeBucket{Start: at(4, 0), Intersection: "A", TotalVolume: 300, Hours: 24}, buckets[0])
	assert.Equal(t, VolumeBucket{Start: at(4, 0), Intersection: "B", TotalVolume: 50, Hours: 24}, buckets[1])
	assert.Equal(t, VolumeBucket{Start: at(5, 0), Intersection: "A", TotalVolume: 300, Hours: 24}, buckets[2])

	totals := TotalsByBucket(buckets)
	assert.Equal(t, []BucketTotal{
		{Start: at(4, 0), TotalVolume: 350, Hours: 24},
		{Start: at(5, 0), TotalVolume: 300, Hours: 24},
	}, totals)

	lines := CapacityLines(buckets, 1800, 1200)
	require.Len(t, lines, 2)
	assert.Equal(t, 43200.0, lines[0].Capacity)
	assert.Equal(t, 28800.0, lines[0].Threshold)
}

func TestBucketVolumesMissingOnly(t *testing.T) {
	buckets := BucketVolumes([]domain.VolumeRecord{vol(at(4, 9), "A", "NB", nan)}, domain.Hourly)
	require.Len(t, buckets, 1)
	assert.Equal(t, 0.0, buckets[0].TotalVolume)
}

func TestFormatPeriod(t *testing.T) {
	ts := at(6, 7)
	assert.Equal(t, "Mar 06, 2024 07:00", FormatPeriod(ts, domain.Hourly))
	assert.Equal(t, "Mar 06, 2024", FormatPeriod(ts, domain.Daily))
	assert.Equal(t, "Week of Mar 04, 2024", FormatPeriod(ts, domain.Weekly))
	assert.Equal(t, "Mar 2024", FormatPeriod(ts, domain.Monthly))
}
