package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 1), r.Start)
	assert.Equal(t, day(2024, 3, 31), r.End)
	assert.Equal(t, 31, r.Days())
	assert.Equal(t, "2024-03-01..2024-03-31", r.String())
	assert.Equal(t, day(2024, 4, 1), r.EndExclusive())

	_, err = ParseDateRange("2024-03-31", "2024-03-01")
	assert.ErrorIs(t, err, ErrInvertedRange)

	_, err = ParseDateRange("03/01/2024", "2024-03-31")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateRangeContains(t *testing.T) {
	r, err := NewDateRange(day(2024, 3, 1), day(2024, 3, 2).Add(13*time.Hour))
	require.NoError(t, err)

	assert.True(t, r.Contains(day(2024, 3, 1)))
	assert.True(t, r.Contains(day(2024, 3, 2).Add(23*time.Hour+59*time.Minute)))
	assert.False(t, r.Contains(day(2024, 3, 3)))
	assert.False(t, r.Contains(day(2024, 2, 29).Add(23*time.Hour)))
}

func TestResolvePreset(t *testing.T) {
	bounds := DateRange{Start: day(2024, 1, 15), End: day(2024, 3, 10)}

	tests := []struct {
		name string
		want DateRange
	}{
		{"", bounds},
		{"all", bounds},
		{"last_day", DateRange{Start: day(2024, 3, 10), End: day(2024, 3, 10)}},
		{"last_7_days", DateRange{Start: day(2024, 3, 4), End: day(2024, 3, 10)}},
		{"last_30_days", DateRange{Start: day(2024, 2, 10), End: day(2024, 3, 10)}},
		{"last_90_days", bounds},
		{"this_month", DateRange{Start: day(2024, 3, 1), End: day(2024, 3, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePreset(tt.name, bounds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolvePreset("next_week", bounds)
	assert.ErrorIs(t, err, ErrUnknownPreset)
}
