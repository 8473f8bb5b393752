package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// rangeClause limits local_datetime to the range. A zero range matches everything.
func rangeClause(r filter.DateRange) (string, []any) {
	if r.IsZero() {
		return "1 = 1", nil
	}
	return "local_datetime >= ? AND local_datetime < ?",
		[]any{r.Start.Format(timestampLayout), r.EndExclusive().Format(timestampLayout)}
}

// TravelTimes returns travel-time records inside the range ordered by time.
func (s *Store) TravelTimes(ctx context.Context, r filter.DateRange) ([]domain.TravelTimeRecord, error) {
	where, args := rangeClause(r)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, local_datetime, segment_name, direction,
		       average_traveltime, average_delay, average_speed, ingested_at
		FROM travel_time_records
		WHERE `+where+`
		ORDER BY local_datetime, segment_name, direction`, args...)
	if err != nil {
		return nil, fmt.Errorf("query travel times: %w", err)
	}
	defer rows.Close()

	var out []domain.TravelTimeRecord
	for rows.Next() {
		var (
			rec            domain.TravelTimeRecord
			ts, ingested   string
			tt, delay, spd sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.SegmentName, &rec.Direction, &tt, &delay, &spd, &ingested); err != nil {
			return nil, fmt.Errorf("scan travel time: %w", err)
		}
		if rec.LocalDateTime, err = parseTimestamp(ts); err != nil {
			return nil, err
		}
		rec.IngestedAt, _ = parseTimestamp(ingested)
		rec.AverageTravelTime, rec.AverageDelay, rec.AverageSpeed = valueOrNaN(tt), valueOrNaN(delay), valueOrNaN(spd)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Volumes returns volume records inside the range ordered by time. Empty
// intersection or direction match every value.
func (s *Store) Volumes(ctx context.Context, r filter.DateRange, intersection, direction string) ([]domain.VolumeRecord, error) {
	where, args := rangeClause(r)
	conds := []string{where}
	if intersection != "" {
		conds = append(conds, "intersection_name = ?")
		args = append(args, intersection)
	}
	if direction != "" {
		conds = append(conds, "direction = ?")
		args = append(args, direction)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, local_datetime, intersection_name, direction, total_volume, ingested_at
		FROM volume_records
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY local_datetime, intersection_name, direction`, args...)
	if err != nil {
		return nil, fmt.Errorf("query volumes: %w", err)
	}
	defer rows.Close()

	var out []domain.VolumeRecord
	for rows.Next() {
		var (
			rec          domain.VolumeRecord
			ts, ingested string
			total        sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.IntersectionName, &rec.Direction, &total, &ingested); err != nil {
			return nil, fmt.Errorf("scan volume: %w", err)
		}
		if rec.LocalDateTime, err = parseTimestamp(ts); err != nil {
			return nil, err
		}
		rec.IngestedAt, _ = parseTimestamp(ingested)
		rec.TotalVolume = valueOrNaN(total)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Segments lists segment names in the order they were first stored.
func (s *Store) Segments(ctx context.Context) ([]string, error) {
	return s.names(ctx, `
		SELECT segment_name FROM travel_time_records
		WHERE segment_name <> ''
		GROUP BY segment_name
		ORDER BY MIN(rowid)`)
}

// Intersections lists intersection names alphabetically.
func (s *Store) Intersections(ctx context.Context) ([]string, error) {
	return s.names(ctx, `
		SELECT DISTINCT intersection_name FROM volume_records
		WHERE intersection_name <> ''
		ORDER BY intersection_name`)
}

// Directions lists the volume approach directions alphabetically.
func (s *Store) Directions(ctx context.Context) ([]string, error) {
	return s.names(ctx, `
		SELECT DISTINCT direction FROM volume_records
		WHERE direction <> ''
		ORDER BY direction`)
}

func (s *Store) names(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Bounds returns the first and last day with records of the given kind. An
// empty table yields a zero range.
func (s *Store) Bounds(ctx context.Context, kind domain.RecordKind) (filter.DateRange, error) {
	table := "travel_time_records"
	if kind == domain.KindVolume {
		table = "volume_records"
	}
	var lo, hi sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT MIN(local_datetime), MAX(local_datetime) FROM "+table).Scan(&lo, &hi); err != nil {
		return filter.DateRange{}, fmt.Errorf("query %s bounds: %w", kind, err)
	}
	if !lo.Valid || !hi.Valid {
		return filter.DateRange{}, nil
	}
	start, err := parseTimestamp(lo.String)
	if err != nil {
		return filter.DateRange{}, err
	}
	end, err := parseTimestamp(hi.String)
	if err != nil {
		return filter.DateRange{}, err
	}
	return filter.NewDateRange(start, end)
}

// Generation is the write counter used to key cached reports.
func (s *Store) Generation(ctx context.Context) (int64, error) {
	var g int64
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'generation'`).Scan(&g); err != nil {
		return 0, fmt.Errorf("query generation: %w", err)
	}
	return g, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func valueOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
