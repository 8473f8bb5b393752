package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// TravelFilter narrows travel-time records before aggregation. Zero fields do not filter.
type TravelFilter struct {
	Range     filter.DateRange
	Hours     filter.HourWindow
	Segments  []string
	Direction domain.Direction
}

// FilterTravel keeps records inside the date range, hour focus, segment set and direction.
func FilterTravel(records []domain.TravelTimeRecord, f TravelFilter) []domain.TravelTimeRecord {
	var segs map[string]struct{}
	if len(f.Segments) > 0 {
		segs = make(map[string]struct{}, len(f.Segments))
		for _, s := range f.Segments {
			segs[s] = struct{}{}
		}
	}

	out := make([]domain.TravelTimeRecord, 0, len(records))
	for _, r := range records {
		if !f.Range.IsZero() && !f.Range.Contains(r.LocalDateTime) {
			continue
		}
		if !f.Hours.Includes(r.LocalDateTime.Hour()) {
			continue
		}
		if segs != nil {
			if _, ok := segs[r.SegmentName]; !ok {
				continue
			}
		}
		if f.Direction != "" && domain.NormalizeDirection(r.Direction) != f.Direction {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ODPoint is the corridor travel time and delay for one hour, in minutes.
type ODPoint struct {
	Hour       time.Time `json:"hour"`
	TravelTime float64   `json:"travel_time"`
	Delay      float64   `json:"delay"`
}

// BuildODSeries averages duplicate rows per (hour, segment), then sums the
// segment averages per hour so the series reads as end-to-end route time.
func BuildODSeries(records []domain.TravelTimeRecord) []ODPoint {
	type segHour struct {
		hour    time.Time
		segment string
	}
	type acc struct{ tt, delay []float64 }
	groups := make(map[segHour]*acc)
	for _, r := range records {
		k := segHour{hour: BucketStart(r.LocalDateTime, domain.Hourly), segment: r.SegmentName}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.tt = append(a.tt, r.AverageTravelTime)
		a.delay = append(a.delay, r.AverageDelay)
	}

	byHour := make(map[time.Time]*ODPoint)
	for k, a := range groups {
		p, ok := byHour[k.hour]
		if !ok {
			p = &ODPoint{Hour: k.hour}
			byHour[k.hour] = p
		}
		p.TravelTime += orZero(Mean(a.tt))
		p.Delay += orZero(Mean(a.delay))
	}

	out := make([]ODPoint, 0, len(byHour))
	for _, p := range byHour {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out
}

// TrendPoint is the mean route travel time and delay over one bucket.
type TrendPoint struct {
	Start      time.Time `json:"start"`
	TravelTime float64   `json:"travel_time"`
	Delay      float64   `json:"delay"`
}

// AverageTravelByBucket re-buckets an hourly O-D series by averaging the hours
// inside each bucket. Hourly granularity returns the series unchanged.
func AverageTravelByBucket(series []ODPoint, g domain.Granularity) []TrendPoint {
	var out []TrendPoint
	var tt, delay []float64
	flush := func(start time.Time) {
		out = append(out, TrendPoint{Start: start, TravelTime: orZero(Mean(tt)), Delay: orZero(Mean(delay))})
		tt, delay = tt[:0], delay[:0]
	}

	var current time.Time
	for i, p := range series {
		start := BucketStart(p.Hour, g)
		if i > 0 && !start.Equal(current) {
			flush(current)
		}
		current = start
		tt = append(tt, p.TravelTime)
		delay = append(delay, p.Delay)
	}
	if len(series) > 0 {
		flush(current)
	}
	return out
}

// Rating grades a 0-100 score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingCritical  Rating = "Critical"
)

// PerformanceRating maps a KPI score (higher is better) onto a rating.
func PerformanceRating(score float64) Rating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingFair
	case score >= 20:
		return RatingPoor
	default:
		return RatingCritical
	}
}

// KPI is one headline indicator with its 0-100 score.
type KPI struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Score  float64 `json:"score"`
	Rating Rating  `json:"rating"`
	Help   string  `json:"help"`
	Extra  string  `json:"extra,omitempty"`
}

func newKPI(value float64, unit string, score float64, help string) KPI {
	score = Round(clamp(orZero(score), 0, 100), 1)
	return KPI{Value: orZero(value), Unit: unit, Score: score, Rating: PerformanceRating(score), Help: help}
}

// PerformanceKPIs summarizes the reliability of a route over an hourly series.
type PerformanceKPIs struct {
	Reliability         KPI     `json:"reliability"`
	CongestionFrequency KPI     `json:"congestion_frequency"`
	AverageTravelTime   KPI     `json:"average_travel_time"`
	PlanningTime        KPI     `json:"planning_time"`
	BufferIndex         KPI     `json:"buffer_index"`
	BufferTimeMinutes   float64 `json:"buffer_time_minutes"`
	FreeFlowMinutes     float64 `json:"free_flow_minutes"`
	TravelTimeIndex     float64 `json:"travel_time_index"`
	PlanningTimeIndex   float64 `json:"planning_time_index"`
	Hours               int     `json:"hours"`
}

// ComputePerformanceKPIs derives the headline travel-time indicators. The 5th
// percentile travel time stands in for free-flow conditions.
func ComputePerformanceKPIs(series []ODPoint, th Thresholds) (PerformanceKPIs, error) {
	tt := make([]float64, 0, len(series))
	delays := make([]float64, 0, len(series))
	for _, p := range series {
		tt = append(tt, p.TravelTime)
		delays = append(delays, p.Delay)
	}
	if Count(tt) == 0 {
		return PerformanceKPIs{}, ErrNoTravelData
	}

	mean := Mean(tt)
	p95 := Percentile(tt, 95)
	freeFlow := Percentile(tt, 5)

	reliability := 100.0
	if p95 > 0 {
		reliability = mean / p95 * 100
	}
	var bufferIndex float64
	if mean > 0 {
		bufferIndex = (p95 - mean) / mean * 100
	}
	tti, pti := 1.0, 1.0
	if freeFlow > 0 {
		tti = mean / freeFlow
		pti = p95 / freeFlow
	}

	var high, critical int
	n := Count(delays)
	for _, d := range delays {
		if !isFinite(d) {
			continue
		}
		if d*60 >= th.HighDelaySec {
			high++
		}
		if d*60 >= th.CriticalDelaySec {
			critical++
		}
	}
	congestion := percentOf(high, n)

	k := PerformanceKPIs{
		Reliability: newKPI(reliability, "%", reliability,
			"Average travel time as a share of the 95th percentile. 100% means every trip takes the typical time."),
		CongestionFrequency: newKPI(congestion, "%", 100-congestion,
			fmt.Sprintf("Share of hours with route delay of at least %.0f seconds.", th.HighDelaySec)),
		AverageTravelTime: newKPI(mean, "min", 100-(tti-1)*100,
			"Mean end-to-end travel time across the selected hours."),
		PlanningTime: newKPI(p95, "min", 100-(pti-1)*50,
			"95th percentile travel time: plan this long to arrive on time 19 trips out of 20."),
		BufferIndex: newKPI(bufferIndex, "%", 100-bufferIndex,
			"Extra time over the average needed to arrive on time 95% of the time, as a percentage."),
		BufferTimeMinutes: math.Max(0, p95-mean),
		FreeFlowMinutes:   freeFlow,
		TravelTimeIndex:   tti,
		PlanningTimeIndex: pti,
		Hours:             len(series),
	}
	k.CongestionFrequency.Extra = fmt.Sprintf("%d of %d hours ≥ %.0fs delay; %d hours ≥ %.0fs (critical)",
		high, n, th.HighDelaySec, critical, th.CriticalDelaySec)
	return k, nil
}
