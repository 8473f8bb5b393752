package analysis

import (
	"sort"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// DefaultTopIntersections caps how many intersections a profile plots.
const DefaultTopIntersections = 8

// SeriesPoint is one bucket total for an intersection.
type SeriesPoint struct {
	Start  time.Time `json:"start"`
	Volume float64   `json:"volume"`
}

// IntersectionSeries is the bucketed volume trend of one intersection.
type IntersectionSeries struct {
	Intersection string        `json:"intersection"`
	Points       []SeriesPoint `json:"points"`
}

// BoxStats is the five-number summary of an intersection's bucket totals.
type BoxStats struct {
	Intersection string  `json:"intersection"`
	Min          float64 `json:"min"`
	Q1           float64 `json:"q1"`
	Median       float64 `json:"median"`
	Q3           float64 `json:"q3"`
	Max          float64 `json:"max"`
	Count        int     `json:"count"`
}

// RankedVolume is an intersection's average bucket total and dense rank.
type RankedVolume struct {
	Intersection string  `json:"intersection"`
	Average      float64 `json:"average"`
	Rank         int     `json:"rank"`
}

// VolumeProfile holds the chart-ready views of bucketed demand.
type VolumeProfile struct {
	Granularity domain.Granularity   `json:"granularity"`
	Unit        string               `json:"unit"`
	Series      []IntersectionSeries `json:"series"`
	Capacity    []CapacityPoint      `json:"capacity"`
	Boxes       []BoxStats           `json:"boxes"`
	Ranking     []RankedVolume       `json:"ranking"`
}

// VolumeProfiles keeps the topK intersections by mean bucket total and builds
// their trend series, distribution boxes and ranking. Series and boxes are
// ordered busiest first.
func VolumeProfiles(raw []domain.VolumeRecord, g domain.Granularity, th Thresholds, topK int) VolumeProfile {
	prof := VolumeProfile{Granularity: g, Unit: g.Unit()}
	buckets := BucketVolumes(raw, g)
	if len(buckets) == 0 {
		return prof
	}

	byName := make(map[string][]VolumeBucket)
	for _, b := range buckets {
		byName[b.Intersection] = append(byName[b.Intersection], b)
	}
	type avg struct {
		name string
		mean float64
	}
	order := make([]avg, 0, len(byName))
	for name, bs := range byName {
		vals := make([]float64, len(bs))
		for i, b := range bs {
			vals[i] = b.TotalVolume
		}
		order = append(order, avg{name: name, mean: orZero(Mean(vals))})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].mean != order[j].mean {
			return order[i].mean > order[j].mean
		}
		return order[i].name < order[j].name
	})
	if topK <= 0 {
		topK = DefaultTopIntersections
	}
	if len(order) > topK {
		order = order[:topK]
	}

	var kept []VolumeBucket
	means := make([]float64, len(order))
	for i, o := range order {
		bs := byName[o.name]
		kept = append(kept, bs...)
		means[i] = o.mean

		series := IntersectionSeries{Intersection: o.name}
		vals := make([]float64, len(bs))
		for j, b := range bs {
			series.Points = append(series.Points, SeriesPoint{Start: b.Start, Volume: b.TotalVolume})
			vals[j] = b.TotalVolume
		}
		prof.Series = append(prof.Series, series)
		prof.Boxes = append(prof.Boxes, BoxStats{
			Intersection: o.name,
			Min:          orZero(Min(vals)),
			Q1:           orZero(Percentile(vals, 25)),
			Median:       orZero(Percentile(vals, 50)),
			Q3:           orZero(Percentile(vals, 75)),
			Max:          orZero(Max(vals)),
			Count:        len(vals),
		})
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start.Before(kept[j].Start) })
	prof.Capacity = CapacityLines(dedupeStarts(kept), th.CapacityVPH, th.HighVolumeVPH)

	ranks := DenseRankDesc(means)
	for i, o := range order {
		prof.Ranking = append(prof.Ranking, RankedVolume{Intersection: o.name, Average: o.mean, Rank: ranks[i]})
	}
	return prof
}

// dedupeStarts keeps one bucket per start so capacity lines are not summed.
func dedupeStarts(sorted []VolumeBucket) []VolumeBucket {
	var out []VolumeBucket
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Start.Equal(b.Start) {
			continue
		}
		out = append(out, b)
	}
	return out
}
