// Package cli implements trafficctl, the offline companion to the dashboard
// service. Every command reads CSV exports directly and needs no database.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "json" | "text"
	Thresholds string // optional YAML thresholds file
	LogLevel   string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root trafficctl command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trafficctl",
		Short: "Corridor travel-time and intersection volume analytics",
		Long: `trafficctl analyzes travel-time and intersection volume CSV exports offline.

It produces the same performance, bottleneck, volume and cycle length reports
as the dashboard API, generates synthetic corridor data, validates exports
before ingest, and renders charts to files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Thresholds, "thresholds", "", "YAML file overriding analysis thresholds")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewPerformanceCommand(opts))
	cmd.AddCommand(NewBottlenecksCommand(opts))
	cmd.AddCommand(NewVolumeCommand(opts))
	cmd.AddCommand(NewCycleCommand(opts))
	cmd.AddCommand(NewGenmockCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewChartCommand(opts))

	return cmd
}
