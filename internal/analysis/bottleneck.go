package analysis

import (
	"sort"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// Bottleneck weights: recurring peaks dominate, sustained delay next, then
// worst-case travel time.
const (
	weightPeakDelay      = 0.45
	weightMeanDelay      = 0.35
	weightPeakTravelTime = 0.20
)

// Bottleneck is one directed segment ranked by its composite impact score.
type Bottleneck struct {
	Segment        string           `json:"segment"`
	Direction      domain.Direction `json:"direction"`
	Label          string           `json:"label"`
	Rating         Rating           `json:"rating"`
	Score          float64          `json:"score"`
	AvgDelay       float64          `json:"avg_delay_min"`
	PeakDelay      float64          `json:"peak_delay_min"`
	AvgTravelTime  float64          `json:"avg_travel_time_min"`
	PeakTravelTime float64          `json:"peak_travel_time_min"`
	AvgSpeed       float64          `json:"avg_speed_mph"`
	MinSpeed       float64          `json:"min_speed_mph"`
	Observations   int              `json:"observations"`
}

// BottleneckRating bins an impact score where higher is worse.
func BottleneckRating(score float64) Rating {
	switch {
	case score <= 20:
		return RatingExcellent
	case score <= 40:
		return RatingGood
	case score <= 60:
		return RatingFair
	case score <= 80:
		return RatingPoor
	default:
		return RatingCritical
	}
}

// RankBottlenecks groups records by segment and normalized direction, scores
// each group against the others, and returns them worst first. A limit of
// zero or less returns every group.
func RankBottlenecks(records []domain.TravelTimeRecord, limit int) []Bottleneck {
	type key struct {
		segment string
		dir     domain.Direction
	}
	type acc struct{ delay, tt, speed []float64 }
	groups := make(map[key]*acc)
	for _, r := range records {
		k := key{segment: r.SegmentName, dir: domain.NormalizeDirection(r.Direction)}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.delay = append(a.delay, r.AverageDelay)
		a.tt = append(a.tt, r.AverageTravelTime)
		a.speed = append(a.speed, r.AverageSpeed)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].segment != keys[j].segment {
			return keys[i].segment < keys[j].segment
		}
		return keys[i].dir < keys[j].dir
	})

	out := make([]Bottleneck, len(keys))
	peakDelay := make([]float64, len(keys))
	meanDelay := make([]float64, len(keys))
	peakTT := make([]float64, len(keys))
	for i, k := range keys {
		a := groups[k]
		peakDelay[i], meanDelay[i], peakTT[i] = Max(a.delay), Mean(a.delay), Max(a.tt)
		out[i] = Bottleneck{
			Segment:        k.segment,
			Direction:      k.dir,
			Label:          k.segment + " (" + k.dir.Arrow() + ")",
			AvgDelay:       orZero(meanDelay[i]),
			PeakDelay:      orZero(peakDelay[i]),
			AvgTravelTime:  orZero(Mean(a.tt)),
			PeakTravelTime: orZero(peakTT[i]),
			AvgSpeed:       orZero(Mean(a.speed)),
			MinSpeed:       orZero(Min(a.speed)),
			Observations:   Count(a.delay),
		}
	}

	nPeakDelay, nMeanDelay, nPeakTT := Normalize(peakDelay), Normalize(meanDelay), Normalize(peakTT)
	for i := range out {
		score := (weightPeakDelay*nPeakDelay[i] + weightMeanDelay*nMeanDelay[i] + weightPeakTravelTime*nPeakTT[i]) * 100
		out[i].Score = Round(score, 1)
		out[i].Rating = BottleneckRating(out[i].Score)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
