package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// MemoryRepository keeps records in memory for offline analysis and tests.
// Records upsert by ID like the SQLite store.
type MemoryRepository struct {
	mu         sync.RWMutex
	travel     []domain.TravelTimeRecord
	volumes    []domain.VolumeRecord
	travelIdx  map[string]int
	volumeIdx  map[string]int
	generation int64
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		travelIdx: make(map[string]int),
		volumeIdx: make(map[string]int),
	}
}

// LoadBatch upserts records and bumps the generation.
func (m *MemoryRepository) LoadBatch(_ context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		switch rec.Kind {
		case domain.KindTravelTime:
			if i, ok := m.travelIdx[rec.TravelTime.ID]; ok {
				m.travel[i] = rec.TravelTime
				continue
			}
			m.travelIdx[rec.TravelTime.ID] = len(m.travel)
			m.travel = append(m.travel, rec.TravelTime)
		case domain.KindVolume:
			if i, ok := m.volumeIdx[rec.Volume.ID]; ok {
				m.volumes[i] = rec.Volume
				continue
			}
			m.volumeIdx[rec.Volume.ID] = len(m.volumes)
			m.volumes = append(m.volumes, rec.Volume)
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownKind, rec.Kind)
		}
	}
	m.generation++
	return nil
}

func (m *MemoryRepository) TravelTimes(_ context.Context, r filter.DateRange) ([]domain.TravelTimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.TravelTimeRecord
	for _, rec := range m.travel {
		if r.IsZero() || r.Contains(rec.LocalDateTime) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LocalDateTime.Before(out[j].LocalDateTime) })
	return out, nil
}

// Volumes filters on exact intersection and direction values; empty means all.
func (m *MemoryRepository) Volumes(_ context.Context, r filter.DateRange, intersection, direction string) ([]domain.VolumeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.VolumeRecord
	for _, rec := range m.volumes {
		if !r.IsZero() && !r.Contains(rec.LocalDateTime) {
			continue
		}
		if intersection != "" && rec.IntersectionName != intersection {
			continue
		}
		if direction != "" && rec.Direction != direction {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.LocalDateTime.Equal(b.LocalDateTime) {
			return a.LocalDateTime.Before(b.LocalDateTime)
		}
		if a.IntersectionName != b.IntersectionName {
			return a.IntersectionName < b.IntersectionName
		}
		return a.Direction < b.Direction
	})
	return out, nil
}

// Segments lists segment names in first-seen order.
func (m *MemoryRepository) Segments(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, rec := range m.travel {
		if rec.SegmentName != "" && !seen[rec.SegmentName] {
			seen[rec.SegmentName] = true
			out = append(out, rec.SegmentName)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Intersections(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return distinctSorted(len(m.volumes), func(i int) string { return m.volumes[i].IntersectionName }), nil
}

func (m *MemoryRepository) Directions(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return distinctSorted(len(m.volumes), func(i int) string { return m.volumes[i].Direction }), nil
}

// Bounds returns the first and last day with data; an empty kind yields a zero range.
func (m *MemoryRepository) Bounds(_ context.Context, kind domain.RecordKind) (filter.DateRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.travel)
	if kind == domain.KindVolume {
		n = len(m.volumes)
	}
	if n == 0 {
		return filter.DateRange{}, nil
	}
	ts := func(i int) time.Time {
		if kind == domain.KindVolume {
			return m.volumes[i].LocalDateTime
		}
		return m.travel[i].LocalDateTime
	}
	lo, hi := ts(0), ts(0)
	for i := 1; i < n; i++ {
		t := ts(i)
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return filter.NewDateRange(lo, hi)
}

func (m *MemoryRepository) Generation(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation, nil
}

func distinctSorted(n int, name func(int) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < n; i++ {
		if v := name(i); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
