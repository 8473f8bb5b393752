package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

const (
	segAB = "Avenue 52 → Calle Tampico"
	segBC = "Calle Tampico → Village Shopping Ctr"
)

func TestFilterTravel(t *testing.T) {
	records := []domain.TravelTimeRecord{
		travel(at(4, 7), segAB, "NB", 2, 0.5, 35),
		travel(at(4, 12), segAB, "NB", 2, 0.5, 35),
		travel(at(4, 7), segAB, "Southbound", 2, 0.5, 35),
		travel(at(4, 8), segBC, "NB", 2, 0.5, 35),
		travel(at(6, 7), segAB, "NB", 2, 0.5, 35),
	}
	r, err := filter.NewDateRange(at(4, 0), at(5, 0))
	require.NoError(t, err)

	got := FilterTravel(records, TravelFilter{
		Range:     r,
		Hours:     filter.HourWindow{Focus: filter.FocusAMPeak},
		Segments:  []string{segAB},
		Direction: domain.DirectionNorth,
	})
	require.Len(t, got, 1)
	assert.Equal(t, at(4, 7), got[0].LocalDateTime)

	assert.Len(t, FilterTravel(records, TravelFilter{}), len(records))
}

func TestBuildODSeries(t *testing.T) {
	records := []domain.TravelTimeRecord{
		travel(at(4, 7), segAB, "NB", 2, 0.5, 30),
		travel(at(4, 7), segAB, "NB", 4, 1.5, 30),
		travel(at(4, 7), segBC, "NB", 1, nan, 30),
		travel(at(4, 8), segAB, "NB", 5, 2, 30),
	}

	series := BuildODSeries(records)
	assert.Equal(t, []ODPoint{
		{Hour: at(4, 7), TravelTime: 4, Delay: 1},
		{Hour: at(4, 8), TravelTime: 5, Delay: 2},
	}, series)

	daily := AverageTravelByBucket(series, domain.Daily)
	assert.Equal(t, []TrendPoint{{Start: at(4, 0), TravelTime: 4.5, Delay: 1.5}}, daily)

	hourly := AverageTravelByBucket(series, domain.Hourly)
	assert.Len(t, hourly, 2)
	assert.Empty(t, AverageTravelByBucket(nil, domain.Weekly))
}

func TestComputePerformanceKPIs(t *testing.T) {
	tts := []float64{10, 10, 10, 10, 20}
	delays := []float64{0.5, 1, 1.5, 2, 3}
	series := make([]ODPoint, len(tts))
	for i := range tts {
		series[i] = ODPoint{Hour: at(4, i), TravelTime: tts[i], Delay: delays[i]}
	}

	k, err := ComputePerformanceKPIs(series, DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 12.0, k.AverageTravelTime.Value, 1e-9)
	assert.InDelta(t, 18.0, k.PlanningTime.Value, 1e-9)
	assert.InDelta(t, 10.0, k.FreeFlowMinutes, 1e-9)
	assert.InDelta(t, 66.667, k.Reliability.Value, 1e-3)
	assert.Equal(t, RatingGood, k.Reliability.Rating)
	assert.InDelta(t, 50.0, k.BufferIndex.Value, 1e-9)
	assert.Equal(t, RatingFair, k.BufferIndex.Rating)
	assert.InDelta(t, 6.0, k.BufferTimeMinutes, 1e-9)
	assert.InDelta(t, 1.2, k.TravelTimeIndex, 1e-9)
	assert.InDelta(t, 80.0, k.AverageTravelTime.Score, 1e-9)
	assert.Equal(t, RatingExcellent, k.AverageTravelTime.Rating)
	assert.InDelta(t, 60.0, k.PlanningTime.Score, 1e-9)
	assert.InDelta(t, 80.0, k.CongestionFrequency.Value, 1e-9)
	assert.Equal(t, RatingPoor, k.CongestionFrequency.Rating)
	assert.Equal(t, "4 of 5 hours ≥ 60s delay; 2 hours ≥ 120s (critical)", k.CongestionFrequency.Extra)
	assert.Equal(t, 5, k.Hours)
}

func TestComputePerformanceKPIsEmpty(t *testing.T) {
	_, err := ComputePerformanceKPIs(nil, DefaultThresholds())
	assert.ErrorIs(t, err, ErrNoTravelData)

	_, err = ComputePerformanceKPIs([]ODPoint{{TravelTime: nan}}, DefaultThresholds())
	assert.ErrorIs(t, err, ErrNoTravelData)
}

func TestPerformanceRating(t *testing.T) {
	tests := []struct {
		score float64
		want  Rating
	}{
		{100, RatingExcellent},
		{80, RatingExcellent},
		{79.9, RatingGood},
		{60, RatingGood},
		{40, RatingFair},
		{20, RatingPoor},
		{19.9, RatingCritical},
		{0, RatingCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceRating(tt.score), tt.score)
	}
}
