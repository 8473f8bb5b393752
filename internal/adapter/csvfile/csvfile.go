// Package csvfile reads and writes the travel-time and volume CSV exports.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// ErrMissingHeader is returned when a required column is absent.
var ErrMissingHeader = errors.New("missing required csv header")

var (
	travelTimeHeaders = []string{"local_datetime", "segment_name", "direction", "average_traveltime", "average_delay", "average_speed"}
	volumeHeaders     = []string{"local_datetime", "intersection_name", "direction", "total_volume"}
)

// Headers lists the columns a file of the given kind must carry, in file order.
func Headers(kind domain.RecordKind) []string {
	if kind == domain.KindVolume {
		return volumeHeaders
	}
	return travelTimeHeaders
}

// RowError ties a parse failure to its 1-based file line.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// LoadResult is the outcome of reading one file. Rows that fail to parse are
// counted and skipped.
type LoadResult struct {
	Kind    domain.RecordKind
	Records []domain.Record
	Total   int
	Failed  int
	Errors  []RowError
}

// Loaded is the number of rows that became records.
func (r *LoadResult) Loaded() int {
	return len(r.Records)
}

// TravelTimes returns the travel-time records.
func (r *LoadResult) TravelTimes() []domain.TravelTimeRecord {
	out := make([]domain.TravelTimeRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Kind == domain.KindTravelTime {
			out = append(out, rec.TravelTime)
		}
	}
	return out
}

// Volumes returns the volume records.
func (r *LoadResult) Volumes() []domain.VolumeRecord {
	out := make([]domain.VolumeRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Kind == domain.KindVolume {
			out = append(out, rec.Volume)
		}
	}
	return out
}

// ReadFile opens path and reads it as kind.
func ReadFile(path string, kind domain.RecordKind) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, kind)
}

// Read parses a header-mapped CSV stream. Column order is free, extra columns
// are ignored and short rows read missing cells as blank.
func Read(r io.Reader, kind domain.RecordKind) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &LoadResult{Kind: kind}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := headerIndex(header)
	for _, req := range Headers(kind) {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, req)
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Total++
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			result.fail(line, err)
			continue
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			result.Total--
			continue
		}

		get := func(col string) string {
			if i, ok := cols[col]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}
		rec, err := domain.RawRecord{
			Kind:              string(kind),
			LocalDateTime:     get("local_datetime"),
			SegmentName:       get("segment_name"),
			IntersectionName:  get("intersection_name"),
			Direction:         get("direction"),
			AverageTravelTime: get("average_traveltime"),
			AverageDelay:      get("average_delay"),
			AverageSpeed:      get("average_speed"),
			TotalVolume:       get("total_volume"),
		}.ToRecord()
		if err != nil {
			result.fail(line, err)
			continue
		}
		result.Records = append(result.Records, domain.EnrichRecord(rec))
	}
	return result, nil
}

func (r *LoadResult) fail(line int, err error) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Line: line, Err: err})
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Write renders records of one kind in the column order Read expects.
// Records of the other kind are skipped.
func Write(w io.Writer, kind domain.RecordKind, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(kind)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if rec.Kind != kind {
			continue
		}
		raw := rec.ToRaw()
		var row []string
		if kind == domain.KindVolume {
			row = []string{raw.LocalDateTime, raw.IntersectionName, raw.Direction, raw.TotalVolume}
		} else {
			row = []string{raw.LocalDateTime, raw.SegmentName, raw.Direction, raw.AverageTravelTime, raw.AverageDelay, raw.AverageSpeed}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.ID(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}
