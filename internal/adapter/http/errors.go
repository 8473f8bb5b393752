package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/chart"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/export"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
	"github.com/couchcryptid/traffic-ops-analytics/internal/report"
)

// badRequest lists the errors caused by the caller's input.
var badRequest = []error{
	errBadParam,
	filter.ErrInvalidDate,
	filter.ErrInvertedRange,
	filter.ErrUnknownPreset,
	filter.ErrMissingRange,
	filter.ErrIncompleteODPair,
	filter.ErrUnknownTimeFocus,
	filter.ErrInvalidHourRange,
	filter.ErrUnknownPeriod,
	domain.ErrInvalidGranularity,
	domain.ErrUnknownNode,
	domain.ErrUnknownKind,
	analysis.ErrUnknownCycle,
	chart.ErrUnknownChart,
	chart.ErrUnknownFormat,
	export.ErrUnknownTable,
	export.ErrUnknownFormat,
	csvfile.ErrMissingHeader,
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case report.IsNotFound(err), errors.Is(err, chart.ErrNoSeries):
		return http.StatusNotFound
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...}. Internal errors are logged and masked.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
