package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-ops-analytics/internal/config"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
	"github.com/couchcryptid/traffic-ops-analytics/internal/observability"
	"github.com/couchcryptid/traffic-ops-analytics/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// sourceOptions name the CSV exports a report command reads.
type sourceOptions struct {
	TravelTimeCSV string
	VolumeCSV     string
}

func (s *sourceOptions) register(cmd *cobra.Command, kinds ...domain.RecordKind) {
	for _, k := range kinds {
		switch k {
		case domain.KindTravelTime:
			cmd.Flags().StringVar(&s.TravelTimeCSV, "travel-time", "", "travel-time CSV export (required)")
			_ = cmd.MarkFlagRequired("travel-time")
		case domain.KindVolume:
			cmd.Flags().StringVar(&s.VolumeCSV, "volume", "", "intersection volume CSV export (required)")
			_ = cmd.MarkFlagRequired("volume")
		}
	}
}

// queryOptions are the filter flags shared by the report commands.
type queryOptions struct {
	Preset       string
	Start        string
	End          string
	Granularity  string
	TimeFocus    string
	StartHour    int
	EndHour      int
	Origin       string
	Destination  string
	Intersection string
	Direction    string
	Period       string
	CurrentCycle string
	Limit        int
}

func (q *queryOptions) registerRange(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.Preset, "preset", "", "date preset (all|last_day|last_7_days|last_30_days|last_90_days|this_month)")
	cmd.Flags().StringVar(&q.Start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&q.End, "end", "", "last day, YYYY-MM-DD")
}

func (q *queryOptions) registerTravel(cmd *cobra.Command) {
	q.registerRange(cmd)
	cmd.Flags().StringVar(&q.Granularity, "granularity", "hourly", "bucket size (hourly|daily|weekly|monthly)")
	cmd.Flags().StringVar(&q.TimeFocus, "time-focus", "", "hour filter (all|peak|am_peak|pm_peak|off_peak|custom)")
	cmd.Flags().IntVar(&q.StartHour, "start-hour", 0, "first hour for --time-focus=custom")
	cmd.Flags().IntVar(&q.EndHour, "end-hour", 24, "end hour (exclusive) for --time-focus=custom")
	cmd.Flags().StringVar(&q.Origin, "origin", "", "origin corridor node")
	cmd.Flags().StringVar(&q.Destination, "destination", "", "destination corridor node")
}

func (q *queryOptions) registerVolume(cmd *cobra.Command) {
	q.registerRange(cmd)
	cmd.Flags().StringVar(&q.Granularity, "granularity", "hourly", "bucket size (hourly|daily|weekly|monthly)")
	cmd.Flags().StringVar(&q.Intersection, "intersection", "", "limit to one intersection")
	cmd.Flags().StringVar(&q.Direction, "direction", "", "limit to one approach direction")
}

func (q *queryOptions) registerCycle(cmd *cobra.Command) {
	q.registerRange(cmd)
	cmd.Flags().StringVar(&q.Intersection, "intersection", "", "limit to one intersection")
	cmd.Flags().StringVar(&q.Direction, "direction", "", "limit to one approach direction")
	cmd.Flags().StringVar(&q.Period, "period", "am", "analysis period (am|md|pm|all)")
	cmd.Flags().StringVar(&q.CurrentCycle, "current-cycle", "140", "cycle length currently in operation, seconds or \"free\"")
}

func (q *queryOptions) registerLimit(cmd *cobra.Command) {
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum rows to print (default from thresholds file)")
}

func (q *queryOptions) dateRange(ctx context.Context, svc *report.Service, kind domain.RecordKind) (filter.DateRange, error) {
	return svc.ResolveRange(ctx, kind, q.Preset, q.Start, q.End)
}

func (q *queryOptions) travel(ctx context.Context, svc *report.Service) (filter.TravelQuery, error) {
	var out filter.TravelQuery
	var err error
	if out.Granularity, err = domain.ParseGranularity(q.Granularity); err != nil {
		return out, err
	}
	if out.Hours, err = filter.NewHourWindow(q.TimeFocus, q.StartHour, q.EndHour); err != nil {
		return out, err
	}
	out.Origin, out.Destination = q.Origin, q.Destination
	if out.Range, err = q.dateRange(ctx, svc, domain.KindTravelTime); err != nil {
		return out, err
	}
	return out, out.Validate()
}

func (q *queryOptions) volume(ctx context.Context, svc *report.Service) (filter.VolumeQuery, error) {
	var out filter.VolumeQuery
	var err error
	if out.Granularity, err = domain.ParseGranularity(q.Granularity); err != nil {
		return out, err
	}
	out.Intersection, out.Direction = q.Intersection, q.Direction
	if out.Range, err = q.dateRange(ctx, svc, domain.KindVolume); err != nil {
		return out, err
	}
	return out, out.Validate()
}

func (q *queryOptions) cycle(ctx context.Context, svc *report.Service) (filter.CycleQuery, error) {
	var out filter.CycleQuery
	var err error
	if out.Period, err = filter.ParsePeriod(q.Period); err != nil {
		return out, err
	}
	out.Intersection, out.Direction, out.CurrentCycle = q.Intersection, q.Direction, q.CurrentCycle
	if out.Range, err = q.dateRange(ctx, svc, domain.KindVolume); err != nil {
		return out, err
	}
	return out, out.Validate()
}

// limit resolves --limit against the configured row limit.
func (q *queryOptions) limit(a config.Analysis) int {
	if q.Limit > 0 {
		return q.Limit
	}
	return a.RowLimit
}

// session is a report service over CSV files loaded into memory.
type session struct {
	analysis config.Analysis
	service  *report.Service
	skipped  int
}

// openSession loads the configured CSV files and builds a report service.
// Rows that fail to parse are skipped and counted.
func openSession(ctx context.Context, opts *RootOptions, src sourceOptions, stderr io.Writer) (*session, error) {
	a, err := config.LoadAnalysis(opts.Thresholds)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load thresholds", err)
	}
	logger := observability.NewLoggerTo(stderr, opts.LogLevel, "text")

	repo := report.NewMemoryRepository()
	s := &session{analysis: a}
	for _, f := range []struct {
		path string
		kind domain.RecordKind
	}{
		{src.TravelTimeCSV, domain.KindTravelTime},
		{src.VolumeCSV, domain.KindVolume},
	} {
		if f.path == "" {
			continue
		}
		res, err := csvfile.ReadFile(f.path, f.kind)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("read %s", f.path), err)
		}
		for _, rowErr := range res.Errors {
			logger.Warn("skipped csv row", "file", f.path, "error", rowErr)
		}
		s.skipped += res.Failed
		if err := repo.LoadBatch(ctx, res.Records); err != nil {
			return nil, err
		}
	}

	s.service = report.NewService(repo, nil, report.Settings{
		Thresholds:       a.Thresholds,
		NodeOrder:        a.NodeOrder,
		TopIntersections: a.TopIntersections,
	}, logger, observability.NewMetricsWith(prometheus.NewRegistry()))
	return s, nil
}
