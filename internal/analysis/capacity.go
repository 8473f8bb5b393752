package analysis

import (
	"sort"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// CapacityRiskRow scores one intersection approach against link capacity.
type CapacityRiskRow struct {
	Intersection    string  `json:"intersection"`
	Direction       string  `json:"direction"`
	RiskLevel       string  `json:"risk_level"`
	ActionPriority  string  `json:"action_priority"`
	RiskScore       float64 `json:"risk_score"`
	PeakUtilization float64 `json:"peak_utilization_pct"`
	AvgUtilization  float64 `json:"avg_utilization_pct"`
	AvgVolume       float64 `json:"avg_volume_vph"`
	PeakVolume      float64 `json:"peak_volume_vph"`
	Variability     float64 `json:"variability_pct"`
	PeakAvgRatio    float64 `json:"peak_avg_ratio"`
	DataPoints      int     `json:"data_points"`
}

// RiskLevel bins a capacity risk score.
func RiskLevel(score float64) string {
	switch {
	case score <= 40:
		return "Low Risk"
	case score <= 60:
		return "Moderate Risk"
	case score <= 80:
		return "High Risk"
	case score <= 90:
		return "Critical Risk"
	default:
		return "Severe Risk"
	}
}

// ActionPriority bins peak capacity utilization.
func ActionPriority(peakUtil float64) string {
	switch {
	case peakUtil <= 60:
		return "Monitor"
	case peakUtil <= 75:
		return "Optimize"
	case peakUtil <= 90:
		return "Upgrade"
	default:
		return "Urgent"
	}
}

type approachKey struct {
	intersection string
	direction    string
}

func groupByApproach(raw []domain.VolumeRecord) ([]approachKey, map[approachKey][]float64) {
	groups := make(map[approachKey][]float64)
	for _, r := range raw {
		k := approachKey{intersection: r.IntersectionName, direction: r.Direction}
		groups[k] = append(groups[k], r.TotalVolume)
	}
	keys := make([]approachKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].intersection != keys[j].intersection {
			return keys[i].intersection < keys[j].intersection
		}
		return keys[i].direction < keys[j].direction
	})
	return keys, groups
}

// CapacityRisk scores each (intersection, direction) on raw hourly volume:
// half peak utilization, three tenths average utilization and a fifth the
// peak-to-average ratio scaled by ten. Utilizations and the ratio are rounded
// to one decimal before weighting. A limit of zero or less returns every row.
func CapacityRisk(raw []domain.VolumeRecord, th Thresholds, limit int) []CapacityRiskRow {
	keys, groups := groupByApproach(raw)
	out := make([]CapacityRiskRow, 0, len(keys))
	for _, k := range keys {
		vols := groups[k]
		mean, peak := Mean(vols), Max(vols)
		row := CapacityRiskRow{
			Intersection: k.intersection,
			Direction:    k.direction,
			AvgVolume:    orZero(mean),
			PeakVolume:   orZero(peak),
			DataPoints:   Count(vols),
		}
		if th.CapacityVPH > 0 {
			row.PeakUtilization = Round(orZero(peak/th.CapacityVPH*100), 1)
			row.AvgUtilization = Round(orZero(mean/th.CapacityVPH*100), 1)
		}
		row.Variability = Round(orZero(StdDev(vols, 1)/mean*100), 1)
		row.PeakAvgRatio = Round(orZero(peak/mean), 1)
		row.RiskScore = Round(0.5*row.PeakUtilization+0.3*row.AvgUtilization+0.2*(row.PeakAvgRatio*10), 1)
		row.RiskLevel = RiskLevel(row.RiskScore)
		row.ActionPriority = ActionPriority(row.PeakUtilization)
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].RiskScore > out[j].RiskScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SummaryRow is the plain average and peak of one approach.
type SummaryRow struct {
	Intersection string  `json:"intersection"`
	Direction    string  `json:"direction"`
	Average      float64 `json:"average"`
	Peak         float64 `json:"peak"`
}

// SimpleSummary lists average and peak hourly volume per approach, highest peak first.
func SimpleSummary(raw []domain.VolumeRecord) []SummaryRow {
	keys, groups := groupByApproach(raw)
	out := make([]SummaryRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, SummaryRow{
			Intersection: k.intersection,
			Direction:    k.direction,
			Average:      orZero(Mean(groups[k])),
			Peak:         orZero(Max(groups[k])),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Peak > out[j].Peak })
	return out
}
