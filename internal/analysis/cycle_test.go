package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

func cycleFixture() []domain.VolumeRecord {
	return []domain.VolumeRecord{
		vol(at(4, 5), "Avenue 50", "NB", 250),
		vol(at(5, 5), "Avenue 50", "NB", 251),
		vol(at(4, 6), "Avenue 50", "NB", 700),
		vol(at(4, 7), "Avenue 50", "NB", 1600),
		vol(at(5, 7), "Avenue 50", "NB", 1700),
		vol(at(4, 8), "Avenue 50", "NB", 2500),
		vol(at(4, 12), "Avenue 50", "NB", 900),
	}
}

func TestAnalyzeCycleLengths(t *testing.T) {
	rep, err := AnalyzeCycleLengths(cycleFixture(), filter.PeriodAM, Cycle120, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, "Avenue 50", rep.Intersection)
	assert.Equal(t, "NB", rep.Direction)
	assert.Equal(t, "Monday, Mar 04, 2024", rep.StartLabel)
	assert.Equal(t, "Tuesday, Mar 05, 2024", rep.EndLabel)
	assert.Equal(t, "05:00–10:00", rep.Window)

	assert.Equal(t, []HourlyCycle{
		{Hour: 5, Label: "05:00", Volume: 250, Recommendation: CycleFree, RecommendedSeconds: 0, Status: StatusReduce},
		{Hour: 6, Label: "06:00", Volume: 700, Recommendation: Cycle120, RecommendedSeconds: 120, Status: StatusOptimal},
		{Hour: 7, Label: "07:00", Volume: 1650, Recommendation: Cycle130, RecommendedSeconds: 130, Status: StatusIncrease},
		{Hour: 8, Label: "08:00", Volume: 2500, Recommendation: Cycle140, RecommendedSeconds: 140, Status: StatusIncrease},
	}, rep.Hourly)

	k := rep.KPIs
	assert.Equal(t, 4, k.HoursAnalyzed)
	assert.Equal(t, 1, k.OptimalHours)
	assert.InDelta(t, 25.0, k.Efficiency, 1e-9)
	assert.Equal(t, 3, k.ChangesNeeded)
	assert.Equal(t, "07:00, 08:00", k.IncreasePreview)
	assert.Equal(t, "05:00", k.ReducePreview)
	assert.Equal(t, 6, k.PeriodRows)
	assert.Equal(t, 3, k.HighVolumeRows)
	assert.InDelta(t, 50.0, k.HighVolumeShare, 1e-9)
	assert.Equal(t, 2500.0, k.PeakRawVolume)
	assert.InDelta(t, 138.889, k.PeakCapacityUtilization, 1e-3)

	assert.Equal(t, 2500, rep.PeakVolume)
	assert.Equal(t, "08:00", rep.PeakHour)
	assert.Equal(t, []StatusCount{
		{Status: StatusOptimal, Hours: 1, Color: StatusOptimal.Color()},
		{Status: StatusIncrease, Hours: 2, Color: StatusIncrease.Color()},
		{Status: StatusReduce, Hours: 1, Color: StatusReduce.Color()},
	}, rep.StatusCounts)
	assert.Len(t, rep.Legend, 5)
}

func TestAnalyzeCycleLengthsErrors(t *testing.T) {
	_, err := AnalyzeCycleLengths(nil, filter.PeriodAM, Cycle140, DefaultThresholds())
	assert.ErrorIs(t, err, ErrNoVolumeData)

	_, err = AnalyzeCycleLengths(cycleFixture(), filter.PeriodPM, Cycle140, DefaultThresholds())
	assert.ErrorIs(t, err, ErrNoPeriodData)
}

func TestAnalyzeCycleLengthsContext(t *testing.T) {
	raw := append(cycleFixture(), vol(at(4, 7), "Avenue 52", "SB", 100))
	rep, err := AnalyzeCycleLengths(raw, filter.PeriodAll, CycleFree, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, "2 Intersections", rep.Intersection)
	assert.Equal(t, "All Directions", rep.Direction)
}

func TestRecommendCycle(t *testing.T) {
	tests := []struct {
		volume float64
		want   CycleLength
	}{
		{nan, CycleFree},
		{0, CycleFree},
		{299, CycleFree},
		{300, Cycle110},
		{599, Cycle110},
		{600, Cycle120},
		{1500, Cycle130},
		{2399, Cycle130},
		{2400, Cycle140},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendCycle(tt.volume), tt.volume)
	}
}

func TestCompareCycle(t *testing.T) {
	assert.Equal(t, StatusOptimal, CompareCycle(Cycle120, Cycle120))
	assert.Equal(t, StatusReduce, CompareCycle(CycleFree, Cycle110))
	assert.Equal(t, StatusIncrease, CompareCycle(Cycle110, CycleFree))
	assert.Equal(t, StatusIncrease, CompareCycle(Cycle140, Cycle130))
	assert.Equal(t, StatusReduce, CompareCycle(Cycle110, Cycle140))
}

func TestParseCycleLength(t *testing.T) {
	tests := []struct {
		in   string
		want CycleLength
	}{
		{"", Cycle140},
		{"140", Cycle140},
		{"130 sec", Cycle130},
		{"120s", Cycle120},
		{"Free mode", CycleFree},
		{"free", CycleFree},
	}
	for _, tt := range tests {
		got, err := ParseCycleLength(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCycleLength("90")
	assert.ErrorIs(t, err, ErrUnknownCycle)
}

func TestHoursPreview(t *testing.T) {
	assert.Equal(t, "None", HoursPreview(nil, 5))
	assert.Equal(t, "01:00, 02:00", HoursPreview([]string{"01:00", "02:00"}, 5))
	assert.Equal(t, "01:00, 02:00 (+1 more)", HoursPreview([]string{"01:00", "02:00", "03:00"}, 2))
}
