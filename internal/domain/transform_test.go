package domain

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSegment      = "Avenue 52 → Calle Tampico"
	testIntersection = "Avenue 50"
)

func TestParseRawMessage(t *testing.T) {
	t.Run("travel time record", func(t *testing.T) {
		data := []byte(`{"kind":"travel_time","local_datetime":"2024-03-04 07:00:00","segment_name":"Avenue 52 -> Calle Tampico","direction":"NB","average_traveltime":"2.5","average_delay":"0.75","average_speed":"38"}`)
		rec, err := ParseRawMessage(RawMessage{Value: data})

		require.NoError(t, err)
		assert.Equal(t, KindTravelTime, rec.Kind)
		tt := rec.TravelTime
		assert.Equal(t, testSegment, tt.SegmentName)
		assert.Equal(t, "NB", tt.Direction)
		assert.Equal(t, time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC), tt.LocalDateTime)
		assert.Equal(t, 2.5, tt.AverageTravelTime)
		assert.Equal(t, 0.75, tt.AverageDelay)
		assert.Equal(t, 38.0, tt.AverageSpeed)
		assert.True(t, strings.HasPrefix(tt.ID, "tt-"))
		assert.Equal(t, tt.ID, rec.ID())
	})

	t.Run("volume record with kind header", func(t *testing.T) {
		data := []byte(`{"local_datetime":"2024-03-04T17:00:00","intersection_name":"Avenue 50","direction":"SB","total_volume":"1,250"}`)
		rec, err := ParseRawMessage(RawMessage{Value: data, Headers: map[string]string{"kind": "volume"}})

		require.NoError(t, err)
		assert.Equal(t, KindVolume, rec.Kind)
		assert.Equal(t, testIntersection, rec.Volume.IntersectionName)
		assert.Equal(t, 1250.0, rec.Volume.TotalVolume)
		assert.True(t, strings.HasPrefix(rec.Volume.ID, "vol-"))
	})

	t.Run("blank numeric columns become NaN", func(t *testing.T) {
		data := []byte(`{"kind":"travel_time","local_datetime":"2024-03-04 07:00","segment_name":"A → B","direction":"SB","average_traveltime":"","average_delay":"n/a"}`)
		rec, err := ParseRawMessage(RawMessage{Value: data})

		require.NoError(t, err)
		assert.True(t, math.IsNaN(rec.TravelTime.AverageTravelTime))
		assert.True(t, math.IsNaN(rec.TravelTime.AverageDelay))
		assert.True(t, math.IsNaN(rec.TravelTime.AverageSpeed))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawMessage(RawMessage{Value: []byte("{nope")})
		assert.ErrorContains(t, err, "parse raw record")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseRawMessage(RawMessage{Value: []byte(`{"kind":"speed","local_datetime":"2024-03-04"}`)})
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("missing segment", func(t *testing.T) {
		_, err := ParseRawMessage(RawMessage{Value: []byte(`{"kind":"travel_time","local_datetime":"2024-03-04"}`)})
		assert.ErrorIs(t, err, ErrMissingSegment)
	})

	t.Run("missing intersection", func(t *testing.T) {
		_, err := ParseRawMessage(RawMessage{Value: []byte(`{"kind":"volume","local_datetime":"2024-03-04"}`)})
		assert.ErrorIs(t, err, ErrMissingIntersection)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := ParseRawMessage(RawMessage{Value: []byte(`{"kind":"volume","local_datetime":"yesterday","intersection_name":"X"}`)})
		assert.ErrorIs(t, err, ErrInvalidLocalDateTime)
	})
}

func TestParseLocalDateTime(t *testing.T) {
	want := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-04 07:00:00",
		"2024-03-04T07:00:00",
		"2024-03-04 07:00",
		"3/4/2024 07:00",
		"2024-03-04T07:00:00-08:00",
	} {
		got, err := ParseLocalDateTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Travel-Time")
	require.NoError(t, err)
	assert.Equal(t, KindTravelTime, k)

	k, err = ParseKind("volumes")
	require.NoError(t, err)
	assert.Equal(t, KindVolume, k)
}

func TestGenerateID(t *testing.T) {
	hour := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, generateID(KindVolume, testIntersection, "NB", hour), generateID(KindVolume, testIntersection, "NB", hour))
	})

	t.Run("direction case does not matter", func(t *testing.T) {
		assert.Equal(t, generateID(KindVolume, testIntersection, "nb", hour), generateID(KindVolume, testIntersection, "NB", hour))
	})

	t.Run("sub-hour jitter maps to same ID", func(t *testing.T) {
		assert.Equal(t, generateID(KindTravelTime, testSegment, "NB", hour), generateID(KindTravelTime, testSegment, "NB", hour.Add(59*time.Second)))
	})

	t.Run("different inputs differ", func(t *testing.T) {
		assert.NotEqual(t, generateID(KindVolume, testIntersection, "NB", hour), generateID(KindVolume, testIntersection, "SB", hour))
		assert.NotEqual(t, generateID(KindVolume, testIntersection, "NB", hour), generateID(KindVolume, testIntersection, "NB", hour.Add(time.Hour)))
	})
}

func TestEnrichRecord(t *testing.T) {
	fixedTime := time.Date(2024, 4, 26, 12, 30, 45, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	rec := EnrichRecord(Record{Kind: KindVolume, Volume: VolumeRecord{IntersectionName: testIntersection}})
	assert.Equal(t, fixedTime, rec.Volume.IngestedAt)

	rec = EnrichRecord(Record{Kind: KindTravelTime})
	assert.Equal(t, fixedTime, rec.TravelTime.IngestedAt)
}

func TestRecordToRaw(t *testing.T) {
	rec, err := RawRecord{
		Kind:              "travel_time",
		LocalDateTime:     "2024-03-04 07:00:00",
		SegmentName:       testSegment,
		Direction:         "NB",
		AverageTravelTime: "2.5",
		AverageDelay:      "",
		AverageSpeed:      "38",
	}.ToRecord()
	require.NoError(t, err)

	raw := rec.ToRaw()
	assert.Equal(t, "travel_time", raw.Kind)
	assert.Equal(t, "2024-03-04 07:00:00", raw.LocalDateTime)
	assert.Equal(t, "2.5", raw.AverageTravelTime)
	assert.Equal(t, "", raw.AverageDelay)

	back, err := raw.ToRecord()
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), back.ID())
}

func TestSetClock(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	assert.Equal(t, fixedTime, Now())

	SetClock(nil)
	assert.WithinDuration(t, time.Now(), Now(), time.Second)
}

func TestParseRawRecord(t *testing.T) {
	rec, err := ParseRawRecord([]byte(`{"kind":"volume","local_datetime":"2024-03-04 08:00:00","intersection_name":"Avenue 48","direction":"NB","total_volume":"640"}`))
	require.NoError(t, err)
	assert.Equal(t, "Avenue 48", rec.Volume.IntersectionName)
	assert.Equal(t, 640.0, rec.Volume.TotalVolume)

	_, err = ParseRawRecord([]byte(`{"local_datetime":"2024-03-04 08:00:00"}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}
