package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/spf13/cobra"
)

// Phase is one data-integrity check over a file.
type Phase struct {
	Name   string   `json:"name"`
	Errors []string `json:"errors,omitempty"`
}

func (p *Phase) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

// Passed reports whether the phase found no problems.
func (p *Phase) Passed() bool { return len(p.Errors) == 0 }

// FileSummary counts the rows of one validated file.
type FileSummary struct {
	Kind   domain.RecordKind `json:"kind"`
	Rows   int               `json:"rows"`
	Parsed int               `json:"parsed"`
}

// ValidationReport is the outcome of the validate command.
type ValidationReport struct {
	Valid  bool          `json:"valid"`
	Phases []*Phase      `json:"phases"`
	Files  []FileSummary `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var src sourceOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check CSV exports for integrity problems before ingest",
		Long: `Validate travel-time and volume CSV exports.

Checks required headers, unparseable rows, unrecognized directions, malformed
segment names and duplicate hourly observations. Exits 1 when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if src.TravelTimeCSV == "" && src.VolumeCSV == "" {
				return NewExitError(ExitCommandError, "at least one of --travel-time or --volume is required")
			}
			rep := Validate(src)
			if rootOpts.Format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			} else {
				printValidation(cmd.OutOrStdout(), rep)
			}
			if !rep.Valid {
				return NewExitError(ExitFailure, "validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&src.TravelTimeCSV, "travel-time", "", "travel-time CSV export")
	cmd.Flags().StringVar(&src.VolumeCSV, "volume", "", "intersection volume CSV export")
	return cmd
}

// Validate runs every phase over the configured files.
func Validate(src sourceOptions) ValidationReport {
	rep := ValidationReport{Valid: true}
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
		phases, summary := validateFile(f.path, f.kind)
		rep.Phases = append(rep.Phases, phases...)
		rep.Files = append(rep.Files, summary)
	}
	for _, p := range rep.Phases {
		if !p.Passed() {
			rep.Valid = false
		}
	}
	return rep
}

func validateFile(path string, kind domain.RecordKind) ([]*Phase, FileSummary) {
	summary := FileSummary{Kind: kind}
	headers := &Phase{Name: fmt.Sprintf("%s: headers", kind)}

	res, err := csvfile.ReadFile(path, kind)
	if err != nil {
		if errors.Is(err, csvfile.ErrMissingHeader) {
			headers.errorf("%v", err)
		} else {
			headers.errorf("read file: %v", err)
		}
		return []*Phase{headers}, summary
	}
	summary.Rows, summary.Parsed = res.Total, res.Loaded()

	parsing := &Phase{Name: fmt.Sprintf("%s: row parsing", kind)}
	for _, e := range res.Errors {
		parsing.errorf("%v", e)
	}

	directions := &Phase{Name: fmt.Sprintf("%s: directions", kind)}
	duplicates := &Phase{Name: fmt.Sprintf("%s: duplicate hours", kind)}
	segments := &Phase{Name: fmt.Sprintf("%s: segment names", kind)}
	seen := make(map[string]bool, len(res.Records))

	for _, rec := range res.Records {
		location, direction, ts := describe(rec)
		at := ts.Format(timeLayout)
		if domain.NormalizeDirection(direction) == domain.DirectionUnknown {
			directions.errorf("unknown direction %q at %s %s", direction, location, at)
		}
		if kind == domain.KindTravelTime {
			if _, _, ok := domain.SplitSegment(location); !ok {
				segments.errorf("malformed segment name %q at %s", location, at)
			}
		}
		if seen[rec.ID()] {
			duplicates.errorf("duplicate hour %s for %s %s", at, location, direction)
		}
		seen[rec.ID()] = true
	}

	phases := []*Phase{headers, parsing, directions}
	if kind == domain.KindTravelTime {
		phases = append(phases, segments)
	}
	return append(phases, duplicates), summary
}

func describe(rec domain.Record) (location, direction string, ts time.Time) {
	if rec.Kind == domain.KindVolume {
		return rec.Volume.IntersectionName, rec.Volume.Direction, rec.Volume.LocalDateTime
	}
	return rec.TravelTime.SegmentName, rec.TravelTime.Direction, rec.TravelTime.LocalDateTime
}

func printValidation(w io.Writer, rep ValidationReport) {
	fmt.Fprintln(w, "=== Corridor Data Validation ===")
	fmt.Fprintln(w)
	for _, p := range rep.Phases {
		status := "PASS"
		if !p.Passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.Errors))
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.Name, status)
	}

	fmt.Fprintln(w)
	for _, f := range rep.Files {
		fmt.Fprintf(w, "Rows: %d %s, %d parsed\n", f.Rows, f.Kind, f.Parsed)
	}

	for _, p := range rep.Phases {
		if p.Passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.Name)
		for i, e := range p.Errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if rep.Valid {
		fmt.Fprintln(w, "\nAll validations passed.")
		return
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
}
