package domain

import (
	"context"
	"time"
)

// RecordKind discriminates the two observation families.
type RecordKind string

const (
	KindTravelTime RecordKind = "travel_time"
	KindVolume     RecordKind = "volume"
)

// RawRecord is the flat CSV-style JSON published by the collector. Numeric
// columns stay strings so blanks and sentinel values survive until parsing.
type RawRecord struct {
	Kind              string `json:"kind"`
	LocalDateTime     string `json:"local_datetime"`
	SegmentName       string `json:"segment_name,omitempty"`
	IntersectionName  string `json:"intersection_name,omitempty"`
	Direction         string `json:"direction"`
	AverageTravelTime string `json:"average_traveltime,omitempty"`
	AverageDelay      string `json:"average_delay,omitempty"`
	AverageSpeed      string `json:"average_speed,omitempty"`
	TotalVolume       string `json:"total_volume,omitempty"`
}

// RawMessage represents an unprocessed message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// TravelTimeRecord is one hourly observation for a directed corridor segment.
// Travel time and delay are in minutes, speed in mph.
type TravelTimeRecord struct {
	ID                string
	LocalDateTime     time.Time
	SegmentName       string
	Direction         string
	AverageTravelTime float64
	AverageDelay      float64
	AverageSpeed      float64
	IngestedAt        time.Time
}

// VolumeRecord is one hourly vehicle count for an intersection approach.
type VolumeRecord struct {
	ID               string
	LocalDateTime    time.Time
	IntersectionName string
	Direction        string
	TotalVolume      float64
	IngestedAt       time.Time
}

// Record carries exactly one of the two observation kinds.
type Record struct {
	Kind       RecordKind
	TravelTime TravelTimeRecord
	Volume     VolumeRecord
}

// ID returns the deterministic ID of whichever observation the record holds.
func (r Record) ID() string {
	if r.Kind == KindVolume {
		return r.Volume.ID
	}
	return r.TravelTime.ID
}

// OutputMessage is the serialized form destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
