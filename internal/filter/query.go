package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

var (
	ErrMissingRange     = errors.New("date range is required")
	ErrIncompleteODPair = errors.New("origin and destination must be set together")
)

// TravelQuery selects travel-time observations for a performance report.
type TravelQuery struct {
	Range       DateRange          `json:"range"`
	Granularity domain.Granularity `json:"granularity"`
	Hours       HourWindow         `json:"hours"`
	Origin      string             `json:"origin,omitempty"`
	Destination string             `json:"destination,omitempty"`
}

// Validate checks the query is complete and internally consistent.
func (q TravelQuery) Validate() error {
	if q.Range.IsZero() {
		return ErrMissingRange
	}
	if _, err := domain.ParseGranularity(string(q.Granularity)); err != nil {
		return err
	}
	if (q.Origin == "") != (q.Destination == "") {
		return ErrIncompleteODPair
	}
	return nil
}

// HasODPair reports whether both route endpoints are set.
func (q TravelQuery) HasODPair() bool {
	return q.Origin != "" && q.Destination != ""
}

// EffectiveHours is the hour focus actually applied. Focus only narrows hourly reports.
func (q TravelQuery) EffectiveHours() HourWindow {
	if q.Granularity != domain.Hourly && q.Granularity != "" {
		return AllHours
	}
	return q.Hours
}

// CacheKey identifies the query for memoized reports.
func (q TravelQuery) CacheKey() string {
	h := q.EffectiveHours()
	return strings.Join([]string{
		"travel", q.Range.String(), string(q.Granularity),
		string(h.Focus), fmt.Sprint(h.StartHour), fmt.Sprint(h.EndHour),
		q.Origin, q.Destination,
	}, "|")
}

// VolumeQuery selects intersection volumes. Empty intersection or direction means all.
type VolumeQuery struct {
	Range        DateRange          `json:"range"`
	Granularity  domain.Granularity `json:"granularity"`
	Intersection string             `json:"intersection,omitempty"`
	Direction    string             `json:"direction,omitempty"`
}

func (q VolumeQuery) Validate() error {
	if q.Range.IsZero() {
		return ErrMissingRange
	}
	_, err := domain.ParseGranularity(string(q.Granularity))
	return err
}

func (q VolumeQuery) CacheKey() string {
	return strings.Join([]string{"volume", q.Range.String(), string(q.Granularity), q.Intersection, q.Direction}, "|")
}

// CycleQuery selects volumes for cycle length recommendations.
type CycleQuery struct {
	Range        DateRange `json:"range"`
	Intersection string    `json:"intersection,omitempty"`
	Direction    string    `json:"direction,omitempty"`
	Period       Period    `json:"period"`
	CurrentCycle string    `json:"current_cycle"`
}

func (q CycleQuery) Validate() error {
	if q.Range.IsZero() {
		return ErrMissingRange
	}
	_, err := ParsePeriod(string(q.Period))
	return err
}

func (q CycleQuery) CacheKey() string {
	return strings.Join([]string{"cycle", q.Range.String(), q.Intersection, q.Direction, string(q.Period), q.CurrentCycle}, "|")
}
