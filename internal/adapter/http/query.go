package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

var errBadParam = errors.New("invalid query parameter")

// rangeResolver turns date params into a range; *report.Service implements it.
type rangeResolver interface {
	ResolveRange(ctx context.Context, kind domain.RecordKind, preset, start, end string) (filter.DateRange, error)
}

func param(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func intParam(r *http.Request, key string, def int) (int, error) {
	s := param(r, key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadParam, key, s)
	}
	return n, nil
}

func granularityParam(r *http.Request) (domain.Granularity, error) {
	s := param(r, "granularity")
	if s == "" {
		return domain.Hourly, nil
	}
	return domain.ParseGranularity(s)
}

func dateRange(r *http.Request, res rangeResolver, kind domain.RecordKind) (filter.DateRange, error) {
	return res.ResolveRange(r.Context(), kind, param(r, "preset"), param(r, "start"), param(r, "end"))
}

func travelQuery(r *http.Request, res rangeResolver) (filter.TravelQuery, error) {
	var q filter.TravelQuery
	var err error
	if q.Granularity, err = granularityParam(r); err != nil {
		return q, err
	}
	startHour, err := intParam(r, "start_hour", 0)
	if err != nil {
		return q, err
	}
	endHour, err := intParam(r, "end_hour", 24)
	if err != nil {
		return q, err
	}
	if q.Hours, err = filter.NewHourWindow(param(r, "time_focus"), startHour, endHour); err != nil {
		return q, err
	}
	q.Origin, q.Destination = param(r, "origin"), param(r, "destination")
	if q.Range, err = dateRange(r, res, domain.KindTravelTime); err != nil {
		return q, err
	}
	return q, q.Validate()
}

func volumeQuery(r *http.Request, res rangeResolver) (filter.VolumeQuery, error) {
	var q filter.VolumeQuery
	var err error
	if q.Granularity, err = granularityParam(r); err != nil {
		return q, err
	}
	q.Intersection, q.Direction = param(r, "intersection"), param(r, "direction")
	if q.Range, err = dateRange(r, res, domain.KindVolume); err != nil {
		return q, err
	}
	return q, q.Validate()
}

func cycleQuery(r *http.Request, res rangeResolver) (filter.CycleQuery, error) {
	var q filter.CycleQuery
	var err error
	if q.Period, err = filter.ParsePeriod(param(r, "period")); err != nil {
		return q, err
	}
	q.Intersection, q.Direction = param(r, "intersection"), param(r, "direction")
	q.CurrentCycle = param(r, "current_cycle")
	if q.Range, err = dateRange(r, res, domain.KindVolume); err != nil {
		return q, err
	}
	return q, q.Validate()
}
