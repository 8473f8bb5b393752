package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

func bottleneckFixture() []domain.TravelTimeRecord {
	return []domain.TravelTimeRecord{
		travel(at(4, 7), segAB, "NB", 5, 1, 30),
		travel(at(4, 8), segAB, "Northbound", 7, 3, 20),
		travel(at(4, 7), segAB, "SB", 4, 0, 40),
		travel(at(4, 8), segAB, "SB", 4, 1, 38),
		travel(at(4, 7), segBC, "NB", 10, 2, 25),
	}
}

func TestRankBottlenecks(t *testing.T) {
	got := RankBottlenecks(bottleneckFixture(), 0)
	require.Len(t, got, 3)

	assert.Equal(t, segAB, got[0].Segment)
	assert.Equal(t, domain.DirectionNorth, got[0].Direction)
	assert.Equal(t, segAB+" (↑ NB)", got[0].Label)
	assert.InDelta(t, 90.0, got[0].Score, 1e-9)
	assert.Equal(t, RatingCritical, got[0].Rating)
	assert.Equal(t, 2.0, got[0].AvgDelay)
	assert.Equal(t, 3.0, got[0].PeakDelay)
	assert.Equal(t, 6.0, got[0].AvgTravelTime)
	assert.Equal(t, 20.0, got[0].MinSpeed)
	assert.Equal(t, 2, got[0].Observations)

	assert.Equal(t, segBC, got[1].Segment)
	assert.InDelta(t, 77.5, got[1].Score, 1e-9)
	assert.Equal(t, RatingPoor, got[1].Rating)

	assert.Equal(t, segAB+" (↓ SB)", got[2].Label)
	assert.Equal(t, 0.0, got[2].Score)
	assert.Equal(t, RatingExcellent, got[2].Rating)
}

func TestRankBottlenecksLimit(t *testing.T) {
	got := RankBottlenecks(bottleneckFixture(), 2)
	assert.Len(t, got, 2)
	assert.Empty(t, RankBottlenecks(nil, 15))
}

func TestRankBottlenecksSingleGroup(t *testing.T) {
	got := RankBottlenecks([]domain.TravelTimeRecord{travel(at(4, 7), segAB, "EB", 3, 1, 30)}, 15)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Score)
	assert.Equal(t, segAB+" (• UNK)", got[0].Label)
}

func TestBottleneckRating(t *testing.T) {
	assert.Equal(t, RatingExcellent, BottleneckRating(20))
	assert.Equal(t, RatingGood, BottleneckRating(20.1))
	assert.Equal(t, RatingFair, BottleneckRating(60))
	assert.Equal(t, RatingPoor, BottleneckRating(80))
	assert.Equal(t, RatingCritical, BottleneckRating(80.1))
}
