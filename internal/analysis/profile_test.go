package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

func TestVolumeProfiles(t *testing.T) {
	prof := VolumeProfiles(volumeFixture(), domain.Hourly, DefaultThresholds(), 1)

	assert.Equal(t, "vph", prof.Unit)
	require.Len(t, prof.Series, 1)
	assert.Equal(t, "X", prof.Series[0].Intersection)
	assert.Equal(t, []SeriesPoint{
		{Start: at(4, 7), Volume: 1000},
		{Start: at(4, 8), Volume: 1500},
		{Start: at(4, 9), Volume: 0},
	}, prof.Series[0].Points)

	require.Len(t, prof.Boxes, 1)
	box := prof.Boxes[0]
	assert.Equal(t, 0.0, box.Min)
	assert.InDelta(t, 500.0, box.Q1, 1e-9)
	assert.InDelta(t, 1000.0, box.Median, 1e-9)
	assert.InDelta(t, 1250.0, box.Q3, 1e-9)
	assert.Equal(t, 1500.0, box.Max)
	assert.Equal(t, 3, box.Count)

	require.Len(t, prof.Capacity, 3)
	assert.Equal(t, CapacityPoint{Start: at(4, 7), Capacity: 1800, Threshold: 1200}, prof.Capacity[0])

	require.Len(t, prof.Ranking, 1)
	assert.Equal(t, 1, prof.Ranking[0].Rank)
}

func TestVolumeProfilesDefaultTopK(t *testing.T) {
	prof := VolumeProfiles(volumeFixture(), domain.Daily, DefaultThresholds(), 0)
	require.Len(t, prof.Ranking, 2)
	assert.Equal(t, "X", prof.Ranking[0].Intersection)
	assert.Equal(t, 2, prof.Ranking[1].Rank)
	require.Len(t, prof.Capacity, 1)
	assert.Equal(t, 1800.0*24, prof.Capacity[0].Capacity)
}

func TestVolumeProfilesEmpty(t *testing.T) {
	prof := VolumeProfiles(nil, domain.Weekly, DefaultThresholds(), 5)
	assert.Equal(t, "vpw", prof.Unit)
	assert.Empty(t, prof.Series)
}
