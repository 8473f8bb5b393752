// Package report turns analyst queries into computed reports. It reads records
// from a Repository, applies the filters and analysis functions, and memoizes
// results in a Cache keyed by the store's write generation.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// ErrNoData is returned when the store holds no records of the requested kind.
var ErrNoData = errors.New("no data loaded")

// Repository is the read side of the record store.
type Repository interface {
	TravelTimes(ctx context.Context, r filter.DateRange) ([]domain.TravelTimeRecord, error)
	Volumes(ctx context.Context, r filter.DateRange, intersection, direction string) ([]domain.VolumeRecord, error)
	Segments(ctx context.Context) ([]string, error)
	Intersections(ctx context.Context) ([]string, error)
	Directions(ctx context.Context) ([]string, error)
	Bounds(ctx context.Context, kind domain.RecordKind) (filter.DateRange, error)
	Generation(ctx context.Context) (int64, error)
}

// Cache stores encoded reports.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Bounds are the first and last days with data for each record kind.
type Bounds struct {
	TravelTime filter.DateRange `json:"travel_time"`
	Volume     filter.DateRange `json:"volume"`
}

// Nodes describes the corridor as stored.
type Nodes struct {
	Nodes         []string `json:"nodes"`
	Segments      []string `json:"segments"`
	Intersections []string `json:"intersections"`
	Directions    []string `json:"directions"`
}

// Path is the resolved origin-destination route of a performance report.
type Path struct {
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	Label       string           `json:"label"`
	Direction   domain.Direction `json:"direction,omitempty"`
	Segments    []string         `json:"segments"`
}

// Performance is the corridor travel-time report.
type Performance struct {
	Query       filter.TravelQuery       `json:"query"`
	Path        *Path                    `json:"path,omitempty"`
	Notice      string                   `json:"notice,omitempty"`
	FocusLabel  string                   `json:"focus_label"`
	Records     int                      `json:"records"`
	KPIs        analysis.PerformanceKPIs `json:"kpis"`
	Trend       []analysis.TrendPoint    `json:"trend"`
	Bottlenecks []analysis.Bottleneck    `json:"bottlenecks"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// Volume is the intersection demand and capacity report.
type Volume struct {
	Query        filter.VolumeQuery         `json:"query"`
	Records      int                        `json:"records"`
	KPIs         analysis.VolumeKPIs        `json:"kpis"`
	Insights     analysis.VolumeInsights    `json:"insights"`
	Profile      analysis.VolumeProfile     `json:"profile"`
	CapacityRisk []analysis.CapacityRiskRow `json:"capacity_risk"`
	Summary      []analysis.SummaryRow      `json:"summary"`
	GeneratedAt  time.Time                  `json:"generated_at"`
}

// Cycle is the signal cycle length report.
type Cycle struct {
	Query       filter.CycleQuery    `json:"query"`
	Analysis    analysis.CycleReport `json:"analysis"`
	GeneratedAt time.Time            `json:"generated_at"`
}
