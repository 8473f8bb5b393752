package export

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// Name identifies a downloadable table.
type Name string

const (
	NameBottlenecks  Name = "bottlenecks"
	NamePerformance  Name = "performance"
	NameCapacityRisk Name = "capacity-risk"
	NameVolume       Name = "volume"
	NameCycleLength  Name = "cycle-length"
)

// Names lists the downloadable tables.
var Names = []Name{NameBottlenecks, NamePerformance, NameCapacityRisk, NameVolume, NameCycleLength}

// ParseName validates a table name.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Names {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

// BottlenecksTable lists ranked segments worst first.
func BottlenecksTable(rows []analysis.Bottleneck) Table {
	t := Table{
		Name: "bottlenecks",
		Header: []string{"Segment", "Direction", "Score", "Rating", "Avg Delay (min)", "Peak Delay (min)",
			"Avg Travel Time (min)", "Peak Travel Time (min)", "Avg Speed (mph)", "Min Speed (mph)", "Observations"},
	}
	for _, b := range rows {
		t.Rows = append(t.Rows, []any{
			b.Segment, string(b.Direction), b.Score, string(b.Rating),
			analysis.Round(b.AvgDelay, 2), analysis.Round(b.PeakDelay, 2),
			analysis.Round(b.AvgTravelTime, 2), analysis.Round(b.PeakTravelTime, 2),
			analysis.Round(b.AvgSpeed, 1), analysis.Round(b.MinSpeed, 1), b.Observations,
		})
	}
	return t
}

// PerformanceTable lists the travel-time records behind a performance report.
func PerformanceTable(records []domain.TravelTimeRecord) Table {
	t := Table{
		Name:   "performance_filtered",
		Header: []string{"local_datetime", "segment_name", "direction", "average_traveltime", "average_delay", "average_speed"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []any{
			r.LocalDateTime, r.SegmentName, r.Direction, r.AverageTravelTime, r.AverageDelay, r.AverageSpeed,
		})
	}
	return t
}

// CapacityRiskTable lists approaches by capacity risk score.
func CapacityRiskTable(rows []analysis.CapacityRiskRow) Table {
	t := Table{
		Name: "capacity_risk",
		Header: []string{"Intersection", "Direction", "Risk Level", "Action Priority", "Risk Score",
			"Peak Capacity Util (%)", "Avg Capacity Util (%)", "Avg Volume (vph)", "Peak Volume (vph)",
			"Volume Variability (%)", "Peak/Avg Ratio", "Data Points"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Intersection, r.Direction, r.RiskLevel, r.ActionPriority, r.RiskScore,
			r.PeakUtilization, r.AvgUtilization, analysis.Round(r.AvgVolume, 0), analysis.Round(r.PeakVolume, 0),
			r.Variability, r.PeakAvgRatio, r.DataPoints,
		})
	}
	return t
}

// VolumeTable lists the volume records behind a volume report.
func VolumeTable(records []domain.VolumeRecord) Table {
	t := Table{
		Name:   "volume_filtered",
		Header: []string{"local_datetime", "intersection_name", "direction", "total_volume"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []any{r.LocalDateTime, r.IntersectionName, r.Direction, r.TotalVolume})
	}
	return t
}

// CycleTable lists the hourly cycle recommendations for one period.
func CycleTable(rep analysis.CycleReport) Table {
	t := Table{
		Name:   CycleTableName(rep.Period),
		Header: []string{"Hour", "Avg Volume (vph)", "Recommended Cycle", "Recommended (sec)", "Current Cycle", "Status"},
	}
	for _, h := range rep.Hourly {
		t.Rows = append(t.Rows, []any{
			h.Label, h.Volume, string(h.Recommendation), h.RecommendedSeconds, string(rep.CurrentCycle), string(h.Status),
		})
	}
	return t
}

// CycleTableName is the per-period file stem, e.g. cycle_length_recommendations_am.
func CycleTableName(p filter.Period) string {
	return "cycle_length_recommendations_" + strings.ToLower(string(p))
}
