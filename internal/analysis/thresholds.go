package analysis

import "errors"

var (
	ErrNoTravelData = errors.New("no travel time data for the selected filters")
	ErrNoVolumeData = errors.New("no volume data for the selected filters")
	ErrNoPeriodData = errors.New("no volume data for the selected time period")
)

// Thresholds are the engineering constants the scores are measured against.
type Thresholds struct {
	CapacityVPH      float64 `json:"capacity_vph"`
	HighVolumeVPH    float64 `json:"high_volume_vph"`
	HighDelaySec     float64 `json:"high_delay_sec"`
	CriticalDelaySec float64 `json:"critical_delay_sec"`
}

// DefaultThresholds returns the theoretical link capacity and alert levels
// used when no thresholds file is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CapacityVPH:      1800,
		HighVolumeVPH:    1200,
		HighDelaySec:     60,
		CriticalDelaySec: 120,
	}
}
