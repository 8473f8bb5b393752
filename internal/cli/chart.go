package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/traffic-ops-analytics/internal/chart"
	"github.com/couchcryptid/traffic-ops-analytics/internal/report"
	"github.com/spf13/cobra"
)

// NewChartCommand creates the chart command.
func NewChartCommand(rootOpts *RootOptions) *cobra.Command {
	var src sourceOptions
	var q queryOptions
	var out string

	names := make([]string, len(chart.Names))
	for i, n := range chart.Names {
		names[i] = string(n)
	}

	cmd := &cobra.Command{
		Use:       "chart <name>",
		Short:     "Render a dashboard chart to a PNG or SVG file",
		Long:      "Render one of " + strings.Join(names, ", ") + ". The output extension picks the format.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := chart.ParseName(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "chart", err)
			}
			if out == "" {
				out = string(name) + ".png"
			}
			format, err := chart.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil {
				return WrapExitError(ExitCommandError, "output file", err)
			}
			s, err := openSession(cmd.Context(), rootOpts, src, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := buildChart(cmd.Context(), s.service, &q, name)
			if err != nil {
				return WrapExitError(ExitCommandError, "build chart", err)
			}

			var buf bytes.Buffer
			if err := chart.Render(&buf, c, format); err != nil {
				return fmt.Errorf("render chart: %w", err)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return WrapExitError(ExitCommandError, "write chart", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"chart": name, "file": out, "bytes": buf.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s chart to %s\n", name, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, .png or .svg (default <name>.png)")
	cmd.Flags().StringVar(&src.TravelTimeCSV, "travel-time", "", "travel-time CSV export (delay, travel-time)")
	cmd.Flags().StringVar(&src.VolumeCSV, "volume", "", "intersection volume CSV export (volume and cycle charts)")
	q.registerRange(cmd)
	cmd.Flags().StringVar(&q.Granularity, "granularity", "hourly", "bucket size (hourly|daily|weekly|monthly)")
	cmd.Flags().StringVar(&q.Origin, "origin", "", "origin corridor node")
	cmd.Flags().StringVar(&q.Destination, "destination", "", "destination corridor node")
	cmd.Flags().StringVar(&q.TimeFocus, "time-focus", "", "hour filter for travel charts")
	cmd.Flags().StringVar(&q.Intersection, "intersection", "", "limit to one intersection")
	cmd.Flags().StringVar(&q.Direction, "direction", "", "limit to one approach direction")
	cmd.Flags().StringVar(&q.Period, "period", "am", "cycle analysis period (am|md|pm|all)")
	cmd.Flags().StringVar(&q.CurrentCycle, "current-cycle", "140", "cycle length currently in operation")
	q.EndHour = 24
	return cmd
}

func buildChart(ctx context.Context, svc *report.Service, q *queryOptions, name chart.Name) (chart.Renderable, error) {
	switch name.Family() {
	case chart.FamilyVolume:
		query, err := q.volume(ctx, svc)
		if err != nil {
			return nil, err
		}
		return svc.VolumeChart(ctx, name, query)
	case chart.FamilyCycle:
		query, err := q.cycle(ctx, svc)
		if err != nil {
			return nil, err
		}
		return svc.CycleChart(ctx, name, query)
	default:
		query, err := q.travel(ctx, svc)
		if err != nil {
			return nil, err
		}
		return svc.TravelChart(ctx, name, query)
	}
}
