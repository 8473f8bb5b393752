package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const timeLayout = "2006-01-02 15:04"

// num renders a float with thousands separators; NaN prints as "-".
func num(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// NewPerformanceCommand creates the performance command.
func NewPerformanceCommand(rootOpts *RootOptions) *cobra.Command {
	var src sourceOptions
	var q queryOptions

	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Corridor travel-time KPIs and trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), rootOpts, src, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			query, err := q.travel(cmd.Context(), s.service)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid query", err)
			}
			rep, err := s.service.Performance(cmd.Context(), query)
			if err != nil {
				return WrapExitError(ExitCommandError, "performance report", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printPerformance(cmd.OutOrStdout(), rep)
		},
	}
	src.register(cmd, domain.KindTravelTime)
	q.registerTravel(cmd)
	return cmd
}

func printPerformance(w io.Writer, rep report.Performance) error {
	route := "All segments"
	if rep.Path != nil {
		route = rep.Path.Label
	}
	fmt.Fprintf(w, "Route: %s\n", route)
	if rep.Notice != "" {
		fmt.Fprintf(w, "Notice: %s\n", rep.Notice)
	}
	fmt.Fprintf(w, "Hours: %s\nRecords: %s\n\n", rep.FocusLabel, printer.Sprint(rep.Records))

	k := rep.KPIs
	t := newTable(w, "KPI", "VALUE", "RATING")
	t.row("Reliability", num(k.Reliability.Value, 1)+k.Reliability.Unit, k.Reliability.Rating)
	t.row("Congestion frequency", num(k.CongestionFrequency.Value, 1)+k.CongestionFrequency.Unit, k.CongestionFrequency.Rating)
	t.row("Average travel time", num(k.AverageTravelTime.Value, 2)+" "+k.AverageTravelTime.Unit, k.AverageTravelTime.Rating)
	t.row("Planning time", num(k.PlanningTime.Value, 2)+" "+k.PlanningTime.Unit, k.PlanningTime.Rating)
	t.row("Buffer index", num(k.BufferIndex.Value, 1)+k.BufferIndex.Unit, k.BufferIndex.Rating)
	if err := t.flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	t = newTable(w, "BUCKET", "TRAVEL TIME (MIN)", "DELAY (MIN)")
	for _, p := range rep.Trend {
		t.row(p.Start.Format(timeLayout), num(p.TravelTime, 2), num(p.Delay, 2))
	}
	return t.flush()
}

// NewBottlenecksCommand creates the bottlenecks command.
func NewBottlenecksCommand(rootOpts *RootOptions) *cobra.Command {
	var src sourceOptions
	var q queryOptions

	cmd := &cobra.Command{
		Use:   "bottlenecks",
		Short: "Rank segment-direction pairs by bottleneck score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), rootOpts, src, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			query, err := q.travel(cmd.Context(), s.service)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid query", err)
			}
			rep, err := s.service.Performance(cmd.Context(), query)
			if err != nil {
				return WrapExitError(ExitCommandError, "bottleneck ranking", err)
			}
			rows := rep.Bottlenecks
			if n := q.limit(s.analysis); len(rows) > n {
				rows = rows[:n]
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			t := newTable(cmd.OutOrStdout(), "#", "SEGMENT", "DIR", "SCORE", "RATING", "AVG DELAY", "PEAK DELAY", "AVG SPEED", "OBS")
			for i, b := range rows {
				t.row(i+1, b.Segment, b.Direction.Arrow(), num(b.Score, 1), b.Rating,
					num(b.AvgDelay, 2), num(b.PeakDelay, 2), num(b.AvgSpeed, 1), b.Observations)
			}
			return t.flush()
		},
	}
	src.register(cmd, domain.KindTravelTime)
	q.registerTravel(cmd)
	q.registerLimit(cmd)
	return cmd
}

// NewVolumeCommand creates the volume command.
func NewVolumeCommand(rootOpts *RootOptions) *cobra.Command {
	var src sourceOptions
	var q queryOptions

	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Intersection demand KPIs and capacity risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), rootOpts, src, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			query, err := q.volume(cmd.Context(), s.service)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid query", err)
			}
			rep, err := s.service.Volume(cmd.Context(), query)
			if err != nil {
				return WrapExitError(ExitCommandError, "volume report", err)
			}
			if n := q.limit(s.analysis); len(rep.CapacityRisk) > n {
				rep.CapacityRisk = rep.CapacityRisk[:n]
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printVolume(cmd.OutOrStdout(), rep)
		},
	}
	src.register(cmd, domain.KindVolume)
	q.registerVolume(cmd)
	q.registerLimit(cmd)
	return cmd
}

func printVolume(w io.Writer, rep report.Volume) error {
	k := rep.KPIs
	fmt.Fprintf(w, "Records: %s\n", printer.Sprint(rep.Records))
	fmt.Fprintf(w, "%s: %s %s (%s%% of capacity, %s)\n", k.PeakLabel, num(k.PeakVolume, 0), k.Unit, num(k.PeakUtilization, 1), k.PeakBadge)
	fmt.Fprintf(w, "%s: %s %s (%s%% of capacity, %s)\n", k.AverageLabel, num(k.AverageVolume, 0), k.Unit, num(k.AverageUtilization, 1), k.AverageBadge)
	fmt.Fprintf(w, "Total vehicles: %s\n", num(k.TotalVehicles, 0))
	fmt.Fprintf(w, "High-volume hours: %d of %d (%s%%), risk %s\n\n", k.HighVolumeHours, k.TotalHours, num(k.HighVolumeShare, 1), k.RiskLevel)

	t := newTable(w, "#", "INTERSECTION", "DIRECTION", "RISK", "SCORE", "PEAK UTIL %", "AVG VPH", "PEAK VPH", "PRIORITY")
	for i, r := range rep.CapacityRisk {
		t.row(i+1, r.Intersection, r.Direction, r.RiskLevel, num(r.RiskScore, 1),
			num(r.PeakUtilization, 1), num(r.AvgVolume, 0), num(r.PeakVolume, 0), r.ActionPriority)
	}
	return t.flush()
}

// NewCycleCommand creates the cycle command.
func NewCycleCommand(rootOpts *RootOptions) *cobra.Command {
	var src sourceOptions
	var q queryOptions

	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Hourly signal cycle length recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), rootOpts, src, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			query, err := q.cycle(cmd.Context(), s.service)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid query", err)
			}
			rep, err := s.service.CycleLength(cmd.Context(), query)
			if err != nil {
				return WrapExitError(ExitCommandError, "cycle length report", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printCycle(cmd.OutOrStdout(), rep)
		},
	}
	src.register(cmd, domain.KindVolume)
	q.registerCycle(cmd)
	return cmd
}

func printCycle(w io.Writer, rep report.Cycle) error {
	a := rep.Analysis
	fmt.Fprintf(w, "Window: %s (current cycle %s)\n", a.Window, a.CurrentCycle)
	fmt.Fprintf(w, "Optimal hours: %d of %d (%s%%), changes needed: %d\n\n",
		a.KPIs.OptimalHours, a.KPIs.HoursAnalyzed, num(a.KPIs.Efficiency, 1), a.KPIs.ChangesNeeded)

	t := newTable(w, "HOUR", "AVG VPH", "RECOMMENDED", "STATUS")
	for _, h := range a.Hourly {
		t.row(h.Label, printer.Sprint(h.Volume), h.Recommendation, h.Status)
	}
	return t.flush()
}
