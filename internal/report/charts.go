package report

import (
	"context"

	"github.com/couchcryptid/traffic-ops-analytics/internal/chart"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// TravelChart draws the delay or travel-time trend of a performance report.
func (s *Service) TravelChart(ctx context.Context, name chart.Name, q filter.TravelQuery) (chart.Renderable, error) {
	rep, err := s.Performance(ctx, q)
	if err != nil {
		return nil, err
	}
	metric, title := chart.MetricTravelTime, "Travel Time Trend"
	if name == chart.NameDelay {
		metric, title = chart.MetricDelay, "Delay Trend"
	}
	if rep.Path != nil {
		title += ": " + rep.Path.Label
	}
	return chart.TravelTrend(rep.Trend, metric, q.Granularity, title)
}

// VolumeChart draws the volume trend or ranking of a volume report.
func (s *Service) VolumeChart(ctx context.Context, name chart.Name, q filter.VolumeQuery) (chart.Renderable, error) {
	rep, err := s.Volume(ctx, q)
	if err != nil {
		return nil, err
	}
	if name == chart.NameVolumeRanking {
		return chart.VolumeRanking(rep.Profile, "Average Volume Ranking ("+rep.Profile.Unit+")")
	}
	return chart.VolumeTrend(rep.Profile, "Volume Trend ("+rep.Profile.Unit+")")
}

// CycleChart draws the hourly volume bars or the status split of a cycle report.
func (s *Service) CycleChart(ctx context.Context, name chart.Name, q filter.CycleQuery) (chart.Renderable, error) {
	rep, err := s.CycleLength(ctx, q)
	if err != nil {
		return nil, err
	}
	if name == chart.NameCycleStatus {
		return chart.CycleStatus(rep.Analysis)
	}
	return chart.CycleVolume(rep.Analysis)
}
