package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
)

// cached returns the memoized report for key, building and storing it on a
// miss. The store generation is part of the key so any write invalidates
// earlier entries. Cache and generation failures fall back to building the
// report directly.
func cached[T any](ctx context.Context, s *Service, name, key string, build func() (T, error)) (T, error) {
	start := time.Now()
	defer func() {
		s.metrics.ReportDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	result, err := lookupOrBuild(ctx, s, name, key, build)
	if err != nil {
		outcome := "error"
		if IsNotFound(err) {
			outcome = "empty"
		}
		s.metrics.ReportRequests.WithLabelValues(name, outcome).Inc()
		var zero T
		return zero, err
	}
	s.metrics.ReportRequests.WithLabelValues(name, "success").Inc()
	return result, nil
}

func lookupOrBuild[T any](ctx context.Context, s *Service, name, key string, build func() (T, error)) (T, error) {
	if s.cache == nil {
		return build()
	}

	gen, err := s.repo.Generation(ctx)
	if err != nil {
		s.logger.Warn("read store generation failed, bypassing report cache", "report", name, "error", err)
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
		return build()
	}
	cacheKey := lookupKey(name, gen, key)

	data, ok, err := s.cache.Get(ctx, cacheKey)
	switch {
	case err != nil:
		s.logger.Warn("report cache get failed", "report", name, "error", err)
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
	case ok:
		var hit T
		if err := json.Unmarshal(data, &hit); err == nil {
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return hit, nil
		}
		s.logger.Warn("decode cached report failed", "report", name, "error", err)
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
	default:
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	result, err := build()
	if err != nil {
		return result, err
	}
	data, err = json.Marshal(result)
	if err != nil {
		s.logger.Warn("encode report for cache failed", "report", name, "error", err)
		return result, nil
	}
	if err := s.cache.Set(ctx, cacheKey, data); err != nil {
		s.logger.Warn("report cache set failed", "report", name, "error", err)
	}
	return result, nil
}

func lookupKey(name string, generation int64, key string) string {
	return fmt.Sprintf("%s|g%d|%s", name, generation, key)
}

// IsNotFound reports whether err means the selection matched no data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, analysis.ErrNoTravelData) ||
		errors.Is(err, analysis.ErrNoVolumeData) ||
		errors.Is(err, analysis.ErrNoPeriodData)
}
