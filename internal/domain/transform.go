package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownKind          = errors.New("unknown record kind")
	ErrMissingSegment       = errors.New("segment_name is required")
	ErrMissingIntersection  = errors.New("intersection_name is required")
	ErrInvalidLocalDateTime = errors.New("invalid local_datetime")
)

// timestampLayouts are tried in order; all are interpreted as local wall-clock time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
}

// ParseRawMessage deserializes a source-topic message into a Record. A "kind"
// header stands in for a payload without a kind field.
func ParseRawMessage(raw RawMessage) (Record, error) {
	return parseRawRecord(raw.Value, raw.Headers["kind"])
}

// ParseRawRecord decodes one flat JSON record.
func ParseRawRecord(payload []byte) (Record, error) {
	return parseRawRecord(payload, "")
}

func parseRawRecord(payload []byte, defaultKind string) (Record, error) {
	var rec RawRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("parse raw record: %w", err)
	}
	if rec.Kind == "" {
		rec.Kind = defaultKind
	}
	return rec.ToRecord()
}

// ToRecord validates the raw columns and converts them into a typed Record.
// Unparseable numeric columns become NaN rather than failing the row.
func (r RawRecord) ToRecord() (Record, error) {
	kind, err := ParseKind(r.Kind)
	if err != nil {
		return Record{}, err
	}
	ts, err := ParseLocalDateTime(r.LocalDateTime)
	if err != nil {
		return Record{}, err
	}
	direction := strings.TrimSpace(r.Direction)

	switch kind {
	case KindTravelTime:
		segment := normalizeSegmentName(r.SegmentName)
		if segment == "" {
			return Record{}, ErrMissingSegment
		}
		return Record{Kind: kind, TravelTime: TravelTimeRecord{
			ID:                generateID(kind, segment, direction, ts),
			LocalDateTime:     ts,
			SegmentName:       segment,
			Direction:         direction,
			AverageTravelTime: ParseNumber(r.AverageTravelTime),
			AverageDelay:      ParseNumber(r.AverageDelay),
			AverageSpeed:      ParseNumber(r.AverageSpeed),
		}}, nil
	default:
		intersection := strings.TrimSpace(r.IntersectionName)
		if intersection == "" {
			return Record{}, ErrMissingIntersection
		}
		return Record{Kind: kind, Volume: VolumeRecord{
			ID:               generateID(kind, intersection, direction, ts),
			LocalDateTime:    ts,
			IntersectionName: intersection,
			Direction:        direction,
			TotalVolume:      ParseNumber(r.TotalVolume),
		}}, nil
	}
}

// ParseKind accepts the record family name, tolerating case and "-" for "_".
func ParseKind(s string) (RecordKind, error) {
	k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch k {
	case "travel_time", "traveltime", "travel":
		return KindTravelTime, nil
	case "volume", "volumes":
		return KindVolume, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ParseLocalDateTime parses a timestamp and keeps its wall-clock fields in UTC.
// Offsets in RFC 3339 input are discarded after reading the local time, so
// hour-of-day filters see the hour the observation was recorded in.
func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return wallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidLocalDateTime, s)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// ParseNumber parses a numeric column, returning NaN when the value is blank or invalid.
// Thousands separators are accepted.
func ParseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// FormatNumber is the inverse of ParseNumber; NaN renders as an empty string.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// generateID produces a deterministic ID from the record's identifying fields.
// The hour is truncated so sub-hour timestamp jitter maps to the same row.
func generateID(kind RecordKind, location, direction string, ts time.Time) string {
	input := fmt.Sprintf("%s|%s|%s|%s", kind, location, strings.ToLower(direction), ts.Truncate(time.Hour).Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if kind == KindVolume {
		return "vol-" + short
	}
	return "tt-" + short
}

// EnrichRecord stamps the ingestion time on a parsed record.
func EnrichRecord(rec Record) Record {
	now := clock.Now().UTC()
	switch rec.Kind {
	case KindTravelTime:
		rec.TravelTime.IngestedAt = now
	case KindVolume:
		rec.Volume.IngestedAt = now
	}
	return rec
}

// ToRaw renders a record back into its flat wire form.
func (r Record) ToRaw() RawRecord {
	const layout = "2006-01-02 15:04:05"
	switch r.Kind {
	case KindVolume:
		v := r.Volume
		return RawRecord{
			Kind:             string(KindVolume),
			LocalDateTime:    v.LocalDateTime.Format(layout),
			IntersectionName: v.IntersectionName,
			Direction:        v.Direction,
			TotalVolume:      FormatNumber(v.TotalVolume),
		}
	default:
		t := r.TravelTime
		return RawRecord{
			Kind:              string(KindTravelTime),
			LocalDateTime:     t.LocalDateTime.Format(layout),
			SegmentName:       t.SegmentName,
			Direction:         t.Direction,
			AverageTravelTime: FormatNumber(t.AverageTravelTime),
			AverageDelay:      FormatNumber(t.AverageDelay),
			AverageSpeed:      FormatNumber(t.AverageSpeed),
		}
	}
}
