package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// Badge is the traffic-light class attached to a KPI.
type Badge string

const (
	BadgeGood     Badge = "good"
	BadgeFair     Badge = "fair"
	BadgePoor     Badge = "poor"
	BadgeCritical Badge = "critical"
)

// bucketProfile is the shared view of bucket totals against scaled capacity.
type bucketProfile struct {
	buckets   []VolumeBucket
	totals    []BucketTotal
	volumes   []float64
	caps      []float64
	utils     []float64
	peakIndex int
}

func profileBuckets(raw []domain.VolumeRecord, g domain.Granularity, th Thresholds) bucketProfile {
	p := bucketProfile{buckets: BucketVolumes(raw, g)}
	p.totals = TotalsByBucket(p.buckets)
	for i, t := range p.totals {
		c := t.Hours * th.CapacityVPH
		p.volumes = append(p.volumes, t.TotalVolume)
		p.caps = append(p.caps, c)
		if c > 0 {
			p.utils = append(p.utils, t.TotalVolume/c*100)
		} else {
			p.utils = append(p.utils, math.NaN())
		}
		if t.TotalVolume > p.totals[p.peakIndex].TotalVolume {
			p.peakIndex = i
		}
	}
	return p
}

func (p bucketProfile) peak() (BucketTotal, float64) {
	t := p.totals[p.peakIndex]
	if c := p.caps[p.peakIndex]; c > 0 {
		return t, t.TotalVolume / c * 100
	}
	return t, 0
}

func rawVolumes(raw []domain.VolumeRecord) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		out[i] = r.TotalVolume
	}
	return out
}

func countAbove(xs []float64, limit float64) int {
	n := 0
	for _, v := range xs {
		if isFinite(v) && v > limit {
			n++
		}
	}
	return n
}

// VolumeKPIs are the demand indicators for the selected window.
type VolumeKPIs struct {
	Granularity        domain.Granularity `json:"granularity"`
	Unit               string             `json:"unit"`
	PeakLabel          string             `json:"peak_label"`
	AverageLabel       string             `json:"average_label"`
	PeakVolume         float64            `json:"peak_volume"`
	PeakBucket         time.Time          `json:"peak_bucket"`
	PeakUtilization    float64            `json:"peak_utilization_pct"`
	PeakBadge          Badge              `json:"peak_badge"`
	P95Volume          float64            `json:"p95_volume"`
	AverageVolume      float64            `json:"average_volume"`
	AverageUtilization float64            `json:"average_utilization_pct"`
	AverageBadge       Badge              `json:"average_badge"`
	HourlyAverage      float64            `json:"hourly_average"`
	HourlyCV           float64            `json:"hourly_cv_pct"`
	BucketCV           float64            `json:"bucket_cv_pct"`
	TotalVehicles      float64            `json:"total_vehicles"`
	TotalBadge         Badge              `json:"total_badge"`
	DemandConsistency  float64            `json:"demand_consistency_pct"`
	ConsistencyLabel   string             `json:"consistency_label"`
	ConsistencyBadge   Badge              `json:"consistency_badge"`
	HighVolumeHours    int                `json:"high_volume_hours"`
	TotalHours         int                `json:"total_hours"`
	HighVolumeShare    float64            `json:"high_volume_share_pct"`
	RiskLevel          string             `json:"risk_level"`
	RiskBadge          Badge              `json:"risk_badge"`
}

// ComputeVolumeKPIs aggregates raw hourly volumes to g and scores them against
// capacity scaled to each bucket's length. High-volume exposure is always
// measured on the hourly records.
func ComputeVolumeKPIs(raw []domain.VolumeRecord, g domain.Granularity, th Thresholds) (VolumeKPIs, error) {
	vols := rawVolumes(raw)
	if Count(vols) == 0 {
		return VolumeKPIs{}, ErrNoVolumeData
	}
	p := profileBuckets(raw, g, th)
	peak, peakUtil := p.peak()

	k := VolumeKPIs{
		Granularity:     g,
		Unit:            g.Unit(),
		PeakLabel:       "Peak " + g.Label() + " Volume",
		AverageLabel:    averageLabel(g),
		PeakVolume:      peak.TotalVolume,
		PeakBucket:      peak.Start,
		PeakUtilization: peakUtil,
		P95Volume:       orZero(Percentile(p.volumes, 95)),
		AverageVolume:   orZero(Mean(p.volumes)),
		HourlyAverage:   orZero(Mean(vols)),
		HourlyCV:        CoefficientOfVariation(vols),
		BucketCV:        CoefficientOfVariation(p.volumes),
		TotalVehicles:   Sum(vols),
		HighVolumeHours: countAbove(vols, th.HighVolumeVPH),
		TotalHours:      Count(vols),
	}

	switch {
	case peakUtil > 90:
		k.PeakBadge = BadgeCritical
	case peakUtil > 75:
		k.PeakBadge = BadgePoor
	case peakUtil > 60:
		k.PeakBadge = BadgeFair
	default:
		k.PeakBadge = BadgeGood
	}

	k.AverageUtilization = orZero(Mean(p.utils))
	if g == domain.Hourly && th.CapacityVPH > 0 {
		k.AverageUtilization = k.HourlyAverage / th.CapacityVPH * 100
	}
	switch {
	case k.AverageUtilization <= 40:
		k.AverageBadge = BadgeGood
	case k.AverageUtilization <= 60:
		k.AverageBadge = BadgeFair
	default:
		k.AverageBadge = BadgePoor
	}

	daily := th.CapacityVPH * 24
	switch {
	case k.TotalVehicles < 0.4*daily:
		k.TotalBadge = BadgeGood
	case k.TotalVehicles < 0.7*daily:
		k.TotalBadge = BadgeFair
	default:
		k.TotalBadge = BadgePoor
	}

	k.DemandConsistency = math.Max(0, 100-k.BucketCV)
	switch {
	case k.BucketCV < 30:
		k.ConsistencyLabel, k.ConsistencyBadge = "Consistent", BadgeGood
	case k.BucketCV < 50:
		k.ConsistencyLabel, k.ConsistencyBadge = "Variable", BadgeFair
	default:
		k.ConsistencyLabel, k.ConsistencyBadge = "Highly Variable", BadgePoor
	}

	k.HighVolumeShare = percentOf(k.HighVolumeHours, k.TotalHours)
	switch {
	case k.HighVolumeShare > 25:
		k.RiskLevel, k.RiskBadge = "Very High", BadgeCritical
	case k.HighVolumeShare > 15:
		k.RiskLevel, k.RiskBadge = "High", BadgePoor
	case k.HighVolumeShare > 5:
		k.RiskLevel, k.RiskBadge = "Moderate", BadgeFair
	default:
		k.RiskLevel, k.RiskBadge = "Low", BadgeGood
	}
	return k, nil
}

func averageLabel(g domain.Granularity) string {
	switch g {
	case domain.Daily:
		return "Average Daily Traffic (ADT)"
	case domain.Weekly:
		return "Average Weekly Traffic (AWT)"
	case domain.Monthly:
		return "Average Monthly Traffic (AMT)"
	default:
		return "Average Hourly Volume"
	}
}

// Contributor is an intersection's share of the peak bucket.
type Contributor struct {
	Intersection string  `json:"intersection"`
	Volume       float64 `json:"volume"`
}

// VolumeInsights is the narrative summary behind the demand KPIs.
type VolumeInsights struct {
	PeakVolume          float64       `json:"peak_volume"`
	PeakPeriod          string        `json:"peak_period"`
	PeakUtilization     float64       `json:"peak_utilization_pct"`
	P95Volume           float64       `json:"p95_volume"`
	P95Utilization      float64       `json:"p95_utilization_pct"`
	AverageVolume       float64       `json:"average_volume"`
	PeakToAverage       float64       `json:"peak_to_average"`
	Consistency         float64       `json:"consistency_pct"`
	TotalVehicles       float64       `json:"total_vehicles"`
	HoursOverThreshold  int           `json:"hours_over_threshold"`
	TotalHours          int           `json:"total_hours"`
	HourlyRiskShare     float64       `json:"hourly_risk_share_pct"`
	BucketsOver80       int           `json:"buckets_over_80pct"`
	BucketCount         int           `json:"bucket_count"`
	BucketRiskShare     float64       `json:"bucket_risk_share_pct"`
	TopContributors     []Contributor `json:"top_contributors"`
	ContributorSummary  string        `json:"contributor_summary"`
	Recommendation      string        `json:"recommendation"`
	RecommendationBadge Badge         `json:"recommendation_badge"`
}

// Recommendation tiers, most urgent first.
const (
	recommendCritical = "Immediate capacity relief (short-term: retime signals, dynamic splits & queue management; " +
		"mid-term: turn-lane/approach improvements; evaluate access control at peak contributors)."
	recommendPoor = "Prioritize signal optimization (AM/PM plans + progression), adjust cycle lengths, and " +
		"pilot demand management (driveway control, TSP). Plan spot upgrades at top 2–3 intersections."
	recommendFair = "Retiming & coordination refresh, monitor weekly trends, and stage TSP/ITS enhancements."
	recommendGood = "Monitor; current capacity is adequate with routine timing review."
)

// Recommend picks the action tier from peak utilization and exposure shares.
func Recommend(peakUtil, hourlyRisk, bucketRisk float64) (string, Badge) {
	switch {
	case peakUtil >= 95 || hourlyRisk >= 20:
		return recommendCritical, BadgeCritical
	case peakUtil >= 85 || hourlyRisk >= 10 || bucketRisk >= 25:
		return recommendPoor, BadgePoor
	case peakUtil >= 70 || hourlyRisk >= 5:
		return recommendFair, BadgeFair
	default:
		return recommendGood, BadgeGood
	}
}

// ComputeVolumeInsights finds the peak bucket, its top contributors and the
// exposure to near-capacity buckets, and picks a recommendation tier.
func ComputeVolumeInsights(raw []domain.VolumeRecord, g domain.Granularity, th Thresholds) (VolumeInsights, error) {
	vols := rawVolumes(raw)
	if Count(vols) == 0 {
		return VolumeInsights{}, ErrNoVolumeData
	}
	p := profileBuckets(raw, g, th)
	peak, peakUtil := p.peak()
	avg := orZero(Mean(p.volumes))

	in := VolumeInsights{
		PeakVolume:         peak.TotalVolume,
		PeakPeriod:         FormatPeriod(peak.Start, g),
		PeakUtilization:    peakUtil,
		P95Volume:          orZero(Percentile(p.volumes, 95)),
		P95Utilization:     orZero(Percentile(p.utils, 95)),
		AverageVolume:      avg,
		Consistency:        math.Max(0, 100-CoefficientOfVariation(p.volumes)),
		TotalVehicles:      Sum(vols),
		HoursOverThreshold: countAbove(vols, th.HighVolumeVPH),
		TotalHours:         Count(vols),
		BucketCount:        len(p.totals),
	}
	if avg > 0 {
		in.PeakToAverage = peak.TotalVolume / avg
	}
	in.HourlyRiskShare = percentOf(in.HoursOverThreshold, in.TotalHours)
	for i, t := range p.totals {
		if t.TotalVolume > 0.8*p.caps[i] {
			in.BucketsOver80++
		}
	}
	in.BucketRiskShare = percentOf(in.BucketsOver80, in.BucketCount)

	for _, b := range p.buckets {
		if b.Start.Equal(peak.Start) {
			in.TopContributors = append(in.TopContributors, Contributor{Intersection: b.Intersection, Volume: b.TotalVolume})
		}
	}
	sort.SliceStable(in.TopContributors, func(i, j int) bool {
		return in.TopContributors[i].Volume > in.TopContributors[j].Volume
	})
	if len(in.TopContributors) > 3 {
		in.TopContributors = in.TopContributors[:3]
	}
	in.ContributorSummary = contributorSummary(in.TopContributors)

	in.Recommendation, in.RecommendationBadge = Recommend(in.PeakUtilization, in.HourlyRiskShare, in.BucketRiskShare)
	return in, nil
}

func contributorSummary(cs []Contributor) string {
	if len(cs) == 0 {
		return "N/A"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s: %s", c.Intersection, formatCount(math.Trunc(c.Volume)))
	}
	return strings.Join(parts, " • ")
}
