package analysis

import (
	"math"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

var nan = math.NaN()

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func vol(ts time.Time, intersection, dir string, v float64) domain.VolumeRecord {
	return domain.VolumeRecord{LocalDateTime: ts, IntersectionName: intersection, Direction: dir, TotalVolume: v}
}

func travel(ts time.Time, segment, dir string, tt, delay, speed float64) domain.TravelTimeRecord {
	return domain.TravelTimeRecord{
		LocalDateTime:     ts,
		SegmentName:       segment,
		Direction:         dir,
		AverageTravelTime: tt,
		AverageDelay:      delay,
		AverageSpeed:      speed,
	}
}
