package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
	"github.com/couchcryptid/traffic-ops-analytics/internal/observability"
)

// Settings are the analysis parameters a Service applies to every report.
type Settings struct {
	Thresholds       analysis.Thresholds
	NodeOrder        []string
	TopIntersections int
}

// Service builds reports. A nil Cache disables memoization.
type Service struct {
	repo     Repository
	cache    Cache
	settings Settings
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewService creates a Service over repo.
func NewService(repo Repository, cache Cache, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if settings.TopIntersections <= 0 {
		settings.TopIntersections = analysis.DefaultTopIntersections
	}
	if len(settings.NodeOrder) == 0 {
		settings.NodeOrder = domain.DefaultNodeOrder
	}
	return &Service{repo: repo, cache: cache, settings: settings, logger: logger, metrics: metrics}
}

// Thresholds returns the thresholds reports are computed against.
func (s *Service) Thresholds() analysis.Thresholds {
	return s.settings.Thresholds
}

// CheckReadiness reports whether the store answers queries.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if _, err := s.repo.Generation(ctx); err != nil {
		return fmt.Errorf("record store unavailable: %w", err)
	}
	return nil
}

// DataBounds returns the date span of each record kind.
func (s *Service) DataBounds(ctx context.Context) (Bounds, error) {
	tt, err := s.repo.Bounds(ctx, domain.KindTravelTime)
	if err != nil {
		return Bounds{}, err
	}
	vol, err := s.repo.Bounds(ctx, domain.KindVolume)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{TravelTime: tt, Volume: vol}, nil
}

// ResolveRange turns explicit dates or a preset into a date range. Explicit
// dates win; presets are anchored on the last day with data of kind.
func (s *Service) ResolveRange(ctx context.Context, kind domain.RecordKind, preset, start, end string) (filter.DateRange, error) {
	if start != "" || end != "" {
		return filter.ParseDateRange(start, end)
	}
	bounds, err := s.repo.Bounds(ctx, kind)
	if err != nil {
		return filter.DateRange{}, err
	}
	if bounds.IsZero() {
		if _, err := filter.ResolvePreset(preset, bounds); err != nil {
			return filter.DateRange{}, err
		}
		return filter.DateRange{}, fmt.Errorf("%w: %s", ErrNoData, kind)
	}
	return filter.ResolvePreset(preset, bounds)
}

// Nodes lists the corridor nodes in display order with the observed names.
func (s *Service) Nodes(ctx context.Context) (Nodes, error) {
	segments, err := s.repo.Segments(ctx)
	if err != nil {
		return Nodes{}, err
	}
	intersections, err := s.repo.Intersections(ctx)
	if err != nil {
		return Nodes{}, err
	}
	directions, err := s.repo.Directions(ctx)
	if err != nil {
		return Nodes{}, err
	}
	return Nodes{
		Nodes:         domain.CorridorNodes(s.settings.NodeOrder, segments),
		Segments:      segments,
		Intersections: intersections,
		Directions:    directions,
	}, nil
}

// travelSelection is the segment and direction scope of a travel query.
type travelSelection struct {
	path      *Path
	notice    string
	segments  []string
	direction domain.Direction
}

func (s *Service) selectTravel(ctx context.Context, q filter.TravelQuery) (travelSelection, error) {
	var sel travelSelection
	if !q.HasODPair() {
		return sel, nil
	}
	segments, err := s.repo.Segments(ctx)
	if err != nil {
		return sel, err
	}
	nodes := domain.CorridorNodes(s.settings.NodeOrder, segments)
	od, err := domain.ResolveODPath(nodes, q.Origin, q.Destination, segments)
	switch {
	case errors.Is(err, domain.ErrNoPathSegments):
		sel.notice = fmt.Sprintf("No observed segments between %s and %s; showing all segments.", q.Origin, q.Destination)
	case err != nil:
		return sel, err
	default:
		sel.segments = od.Segments
	}
	sel.direction = od.Direction
	sel.path = &Path{
		Origin:      od.Origin,
		Destination: od.Destination,
		Label:       od.Label(),
		Direction:   od.Direction,
		Segments:    od.Segments,
	}
	return sel, nil
}

// FilteredTravel returns the travel-time rows a performance report is built from.
func (s *Service) FilteredTravel(ctx context.Context, q filter.TravelQuery) ([]domain.TravelTimeRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sel, err := s.selectTravel(ctx, q)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.TravelTimes(ctx, q.Range)
	if err != nil {
		return nil, err
	}
	return analysis.FilterTravel(records, analysis.TravelFilter{
		Range:     q.Range,
		Hours:     q.EffectiveHours(),
		Segments:  sel.segments,
		Direction: sel.direction,
	}), nil
}

// FilteredVolumes returns the volume rows a volume or cycle report is built from.
func (s *Service) FilteredVolumes(ctx context.Context, r filter.DateRange, intersection, direction string) ([]domain.VolumeRecord, error) {
	if r.IsZero() {
		return nil, filter.ErrMissingRange
	}
	return s.repo.Volumes(ctx, r, intersection, direction)
}

// Performance computes route KPIs, the bucketed trend and the bottleneck
// ranking. Bottlenecks cover every hour of the range; the time focus only
// narrows the KPIs and trend.
func (s *Service) Performance(ctx context.Context, q filter.TravelQuery) (Performance, error) {
	if err := q.Validate(); err != nil {
		return Performance{}, err
	}
	return cached(ctx, s, "performance", q.CacheKey(), func() (Performance, error) {
		sel, err := s.selectTravel(ctx, q)
		if err != nil {
			return Performance{}, err
		}
		records, err := s.repo.TravelTimes(ctx, q.Range)
		if err != nil {
			return Performance{}, err
		}
		scope := analysis.TravelFilter{Range: q.Range, Segments: sel.segments, Direction: sel.direction}
		bottleneckRows := analysis.FilterTravel(records, scope)
		scope.Hours = q.EffectiveHours()
		focused := analysis.FilterTravel(records, scope)
		if len(focused) == 0 {
			return Performance{}, analysis.ErrNoTravelData
		}

		series := analysis.BuildODSeries(focused)
		kpis, err := analysis.ComputePerformanceKPIs(series, s.settings.Thresholds)
		if err != nil {
			return Performance{}, err
		}
		return Performance{
			Query:       q,
			Path:        sel.path,
			Notice:      sel.notice,
			FocusLabel:  q.EffectiveHours().Label(),
			Records:     len(focused),
			KPIs:        kpis,
			Trend:       analysis.AverageTravelByBucket(series, q.Granularity),
			Bottlenecks: analysis.RankBottlenecks(bottleneckRows, 0),
			GeneratedAt: domain.Now().UTC(),
		}, nil
	})
}

// Volume computes demand KPIs, insights, chart profiles and capacity risk.
func (s *Service) Volume(ctx context.Context, q filter.VolumeQuery) (Volume, error) {
	if err := q.Validate(); err != nil {
		return Volume{}, err
	}
	return cached(ctx, s, "volume", q.CacheKey(), func() (Volume, error) {
		records, err := s.repo.Volumes(ctx, q.Range, q.Intersection, q.Direction)
		if err != nil {
			return Volume{}, err
		}
		th := s.settings.Thresholds
		kpis, err := analysis.ComputeVolumeKPIs(records, q.Granularity, th)
		if err != nil {
			return Volume{}, err
		}
		insights, err := analysis.ComputeVolumeInsights(records, q.Granularity, th)
		if err != nil {
			return Volume{}, err
		}
		return Volume{
			Query:        q,
			Records:      len(records),
			KPIs:         kpis,
			Insights:     insights,
			Profile:      analysis.VolumeProfiles(records, q.Granularity, th, s.settings.TopIntersections),
			CapacityRisk: analysis.CapacityRisk(records, th, 0),
			Summary:      analysis.SimpleSummary(records),
			GeneratedAt:  domain.Now().UTC(),
		}, nil
	})
}

// CycleLength recommends a cycle length for each hour of the period.
func (s *Service) CycleLength(ctx context.Context, q filter.CycleQuery) (Cycle, error) {
	if err := q.Validate(); err != nil {
		return Cycle{}, err
	}
	q.Period, _ = filter.ParsePeriod(string(q.Period))
	current, err := analysis.ParseCycleLength(q.CurrentCycle)
	if err != nil {
		return Cycle{}, err
	}
	q.CurrentCycle = string(current)
	return cached(ctx, s, "cycle", q.CacheKey(), func() (Cycle, error) {
		records, err := s.repo.Volumes(ctx, q.Range, q.Intersection, q.Direction)
		if err != nil {
			return Cycle{}, err
		}
		rep, err := analysis.AnalyzeCycleLengths(records, q.Period, current, s.settings.Thresholds)
		if err != nil {
			return Cycle{}, err
		}
		return Cycle{Query: q, Analysis: rep, GeneratedAt: domain.Now().UTC()}, nil
	})
}
