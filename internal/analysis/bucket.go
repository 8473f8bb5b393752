package analysis

import (
	"sort"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// BucketStart floors t to the start of its bucket. Weeks start on Monday and
// end on Sunday.
func BucketStart(t time.Time, g domain.Granularity) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case domain.Daily:
		return day
	case domain.Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day.Add(time.Duration(t.Hour()) * time.Hour)
	}
}

// BucketHours is the number of hours in the bucket starting at start.
func BucketHours(start time.Time, g domain.Granularity) float64 {
	switch g {
	case domain.Daily:
		return 24
	case domain.Weekly:
		return 24 * 7
	case domain.Monthly:
		first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 1, 0).Sub(first).Hours()
	default:
		return 1
	}
}

// VolumeBucket is the summed volume of one intersection over one bucket.
type VolumeBucket struct {
	Start        time.Time `json:"start"`
	Intersection string    `json:"intersection"`
	TotalVolume  float64   `json:"total_volume"`
	Hours        float64   `json:"bucket_hours"`
}

// BucketTotal is the summed volume of all intersections over one bucket.
type BucketTotal struct {
	Start       time.Time `json:"start"`
	TotalVolume float64   `json:"total_volume"`
	Hours       float64   `json:"bucket_hours"`
}

// CapacityPoint scales the hourly capacity and alert threshold to a bucket.
type CapacityPoint struct {
	Start     time.Time `json:"start"`
	Capacity  float64   `json:"capacity"`
	Threshold float64   `json:"threshold"`
}

// BucketVolumes sums hourly volumes per (bucket, intersection), across all
// directions. A bucket whose volumes are all missing totals 0.
func BucketVolumes(records []domain.VolumeRecord, g domain.Granularity) []VolumeBucket {
	type key struct {
		start        time.Time
		intersection string
	}
	sums := make(map[key]float64)
	for _, r := range records {
		k := key{start: BucketStart(r.LocalDateTime, g), intersection: r.IntersectionName}
		if isFinite(r.TotalVolume) {
			sums[k] += r.TotalVolume
		} else if _, ok := sums[k]; !ok {
			sums[k] = 0
		}
	}

	out := make([]VolumeBucket, 0, len(sums))
	for k, v := range sums {
		out = append(out, VolumeBucket{Start: k.start, Intersection: k.intersection, TotalVolume: v, Hours: BucketHours(k.start, g)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Intersection < out[j].Intersection
	})
	return out
}

// TotalsByBucket sums intersection buckets into one total per bucket, in time order.
func TotalsByBucket(buckets []VolumeBucket) []BucketTotal {
	var out []BucketTotal
	for _, b := range buckets {
		if n := len(out); n > 0 && out[n-1].Start.Equal(b.Start) {
			out[n-1].TotalVolume += b.TotalVolume
			continue
		}
		out = append(out, BucketTotal{Start: b.Start, TotalVolume: b.TotalVolume, Hours: b.Hours})
	}
	return out
}

// CapacityLines returns one capacity and threshold point per distinct bucket.
func CapacityLines(buckets []VolumeBucket, capVPH, highVPH float64) []CapacityPoint {
	var out []CapacityPoint
	for _, t := range TotalsByBucket(buckets) {
		out = append(out, CapacityPoint{Start: t.Start, Capacity: t.Hours * capVPH, Threshold: t.Hours * highVPH})
	}
	return out
}

// FormatPeriod renders a bucket start for captions.
func FormatPeriod(t time.Time, g domain.Granularity) string {
	switch g {
	case domain.Daily:
		return t.Format("Jan 02, 2006")
	case domain.Weekly:
		return "Week of " + BucketStart(t, domain.Weekly).Format("Jan 02, 2006")
	case domain.Monthly:
		return t.Format("Jan 2006")
	default:
		return t.Format("Jan 02, 2006 15:04")
	}
}
