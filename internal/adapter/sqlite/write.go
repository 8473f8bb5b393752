package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// Upserts keyed on the deterministic record ID, so replayed messages and
// re-uploaded files overwrite instead of duplicating.
const (
	upsertTravelTime = `
		INSERT INTO travel_time_records
		(id, local_datetime, segment_name, direction, average_traveltime, average_delay, average_speed, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			average_traveltime = excluded.average_traveltime,
			average_delay      = excluded.average_delay,
			average_speed      = excluded.average_speed,
			ingested_at        = excluded.ingested_at`

	upsertVolume = `
		INSERT INTO volume_records
		(id, local_datetime, intersection_name, direction, total_volume, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_volume = excluded.total_volume,
			ingested_at  = excluded.ingested_at`

	bumpGeneration = `UPDATE store_meta SET value = value + 1 WHERE key = 'generation'`
)

// SaveTravelTimes upserts travel-time records and bumps the generation.
func (s *Store) SaveTravelTimes(ctx context.Context, records []domain.TravelTimeRecord) error {
	recs := make([]domain.Record, len(records))
	for i, r := range records {
		recs[i] = domain.Record{Kind: domain.KindTravelTime, TravelTime: r}
	}
	return s.LoadBatch(ctx, recs)
}

// SaveVolumes upserts volume records and bumps the generation.
func (s *Store) SaveVolumes(ctx context.Context, records []domain.VolumeRecord) error {
	recs := make([]domain.Record, len(records))
	for i, r := range records {
		recs[i] = domain.Record{Kind: domain.KindVolume, Volume: r}
	}
	return s.LoadBatch(ctx, recs)
}

// LoadBatch writes a mixed batch in one transaction. The generation counter
// moves in the same transaction so readers never see new rows under an old
// generation.
func (s *Store) LoadBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	travel, err := tx.PrepareContext(ctx, upsertTravelTime)
	if err != nil {
		return fmt.Errorf("prepare travel-time upsert: %w", err)
	}
	defer travel.Close()
	volume, err := tx.PrepareContext(ctx, upsertVolume)
	if err != nil {
		return fmt.Errorf("prepare volume upsert: %w", err)
	}
	defer volume.Close()

	for _, rec := range records {
		switch rec.Kind {
		case domain.KindTravelTime:
			r := rec.TravelTime
			_, err = travel.ExecContext(ctx,
				r.ID,
				r.LocalDateTime.Format(timestampLayout),
				r.SegmentName,
				r.Direction,
				nullable(r.AverageTravelTime),
				nullable(r.AverageDelay),
				nullable(r.AverageSpeed),
				r.IngestedAt.UTC().Format(timestampLayout),
			)
		case domain.KindVolume:
			r := rec.Volume
			_, err = volume.ExecContext(ctx,
				r.ID,
				r.LocalDateTime.Format(timestampLayout),
				r.IntersectionName,
				r.Direction,
				nullable(r.TotalVolume),
				r.IngestedAt.UTC().Format(timestampLayout),
			)
		default:
			err = fmt.Errorf("%w: %q", domain.ErrUnknownKind, rec.Kind)
		}
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.ID(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, bumpGeneration); err != nil {
		return fmt.Errorf("bump generation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// BumpGeneration invalidates cached reports without writing records.
func (s *Store) BumpGeneration(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, bumpGeneration); err != nil {
		return 0, fmt.Errorf("bump generation: %w", err)
	}
	return s.Generation(ctx)
}

// nullable stores missing measurements as NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}
