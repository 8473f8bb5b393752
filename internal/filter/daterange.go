package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for dates in queries and responses.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvertedRange = errors.New("start date is after end date")
	ErrUnknownPreset = errors.New("unknown date preset")
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both bounds to their calendar day.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: DateOf(start), End: DateOf(end)}
	if r.Start.After(r.End) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return r, nil
}

// ParseDateRange parses YYYY-MM-DD bounds.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
	}
	return NewDateRange(s, e)
}

// DateOf returns midnight UTC of the wall-clock day of t.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days is the number of calendar days covered, counting both ends.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// EndExclusive is midnight after the last day.
func (r DateRange) EndExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// Preset names a range relative to the most recent day with data.
type Preset string

const (
	PresetAll        Preset = "all"
	PresetLast7Days  Preset = "last_7_days"
	PresetLast30Days Preset = "last_30_days"
	PresetLast90Days Preset = "last_90_days"
	PresetThisMonth  Preset = "this_month"
	PresetLastDay    Preset = "last_day"
	// PresetCustom defers to explicit start and end dates; alone it selects all data.
	PresetCustom Preset = "custom"
)

// ResolvePreset anchors a preset on bounds.End and clamps it to bounds.
func ResolvePreset(name string, bounds DateRange) (DateRange, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	end := bounds.End
	var start time.Time
	switch p {
	case "", PresetAll, PresetCustom:
		return bounds, nil
	case PresetLastDay:
		start = end
	case PresetLast7Days:
		start = end.AddDate(0, 0, -6)
	case PresetLast30Days:
		start = end.AddDate(0, 0, -29)
	case PresetLast90Days:
		start = end.AddDate(0, 0, -89)
	case PresetThisMonth:
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	return DateRange{Start: start, End: end}, nil
}
