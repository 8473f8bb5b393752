package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/traffic-ops-analytics/internal/chart"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/export"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
	"github.com/couchcryptid/traffic-ops-analytics/internal/ingest"
	"github.com/couchcryptid/traffic-ops-analytics/internal/report"
	"github.com/gorilla/mux"
)

// maxUploadBytes bounds CSV uploads.
const maxUploadBytes = 32 << 20

// ReportService builds the reports served by the API.
type ReportService interface {
	rangeResolver
	DataBounds(ctx context.Context) (report.Bounds, error)
	Nodes(ctx context.Context) (report.Nodes, error)
	Performance(ctx context.Context, q filter.TravelQuery) (report.Performance, error)
	Volume(ctx context.Context, q filter.VolumeQuery) (report.Volume, error)
	CycleLength(ctx context.Context, q filter.CycleQuery) (report.Cycle, error)
	FilteredTravel(ctx context.Context, q filter.TravelQuery) ([]domain.TravelTimeRecord, error)
	FilteredVolumes(ctx context.Context, r filter.DateRange, intersection, direction string) ([]domain.VolumeRecord, error)
	TravelChart(ctx context.Context, name chart.Name, q filter.TravelQuery) (chart.Renderable, error)
	VolumeChart(ctx context.Context, name chart.Name, q filter.VolumeQuery) (chart.Renderable, error)
	CycleChart(ctx context.Context, name chart.Name, q filter.CycleQuery) (chart.Renderable, error)
}

// Ingester loads uploaded CSV files.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, kind domain.RecordKind, source string) (ingest.Result, error)
}

// API holds the dashboard endpoint handlers.
type API struct {
	reports  ReportService
	ingester Ingester
	rowLimit int
	logger   *slog.Logger
}

// NewAPI creates the handlers. Ranked tables are trimmed to rowLimit rows
// unless a request passes its own limit.
func NewAPI(reports ReportService, ingester Ingester, rowLimit int, logger *slog.Logger) *API {
	return &API{reports: reports, ingester: ingester, rowLimit: rowLimit, logger: logger}
}

func (a *API) register(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/corridor/nodes", a.handleNodes).Methods(http.MethodGet)
	v1.HandleFunc("/corridor/performance", a.handlePerformance).Methods(http.MethodGet)
	v1.HandleFunc("/volume/intersections", a.handleIntersections).Methods(http.MethodGet)
	v1.HandleFunc("/volume/summary", a.handleVolume).Methods(http.MethodGet)
	v1.HandleFunc("/volume/cycle-length", a.handleCycle).Methods(http.MethodGet)
	v1.HandleFunc("/charts/{name}.{format}", a.handleChart).Methods(http.MethodGet)
	v1.HandleFunc("/export/{table}.{format}", a.handleExport).Methods(http.MethodGet)
	v1.HandleFunc("/ingest/{kind}", a.handleIngest).Methods(http.MethodPost)
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, a.logger, err)
}

func (a *API) limit(r *http.Request) (int, error) {
	n, err := intParam(r, "limit", a.rowLimit)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: limit must be positive", errBadParam)
	}
	return n, nil
}

func head[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

type nodesResponse struct {
	report.Nodes
	Bounds report.Bounds `json:"bounds"`
}

func (a *API) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := a.reports.Nodes(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	bounds, err := a.reports.DataBounds(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodesResponse{Nodes: nodes, Bounds: bounds})
}

func (a *API) handleIntersections(w http.ResponseWriter, r *http.Request) {
	nodes, err := a.reports.Nodes(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	bounds, err := a.reports.DataBounds(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intersections": nodes.Intersections,
		"directions":    nodes.Directions,
		"bounds":        bounds.Volume,
	})
}

func (a *API) handlePerformance(w http.ResponseWriter, r *http.Request) {
	limit, err := a.limit(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q, err := travelQuery(r, a.reports)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rep, err := a.reports.Performance(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rep.Bottlenecks = head(rep.Bottlenecks, limit)
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleVolume(w http.ResponseWriter, r *http.Request) {
	limit, err := a.limit(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q, err := volumeQuery(r, a.reports)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rep, err := a.reports.Volume(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rep.CapacityRisk = head(rep.CapacityRisk, limit)
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleCycle(w http.ResponseWriter, r *http.Request) {
	q, err := cycleQuery(r, a.reports)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rep, err := a.reports.CycleLength(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, err := chart.ParseName(vars["name"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	format, err := chart.ParseFormat(vars["format"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.buildChart(r, name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, c, format); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (a *API) buildChart(r *http.Request, name chart.Name) (chart.Renderable, error) {
	switch name.Family() {
	case chart.FamilyVolume:
		q, err := volumeQuery(r, a.reports)
		if err != nil {
			return nil, err
		}
		return a.reports.VolumeChart(r.Context(), name, q)
	case chart.FamilyCycle:
		q, err := cycleQuery(r, a.reports)
		if err != nil {
			return nil, err
		}
		return a.reports.CycleChart(r.Context(), name, q)
	default:
		q, err := travelQuery(r, a.reports)
		if err != nil {
			return nil, err
		}
		return a.reports.TravelChart(r.Context(), name, q)
	}
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, err := export.ParseName(vars["table"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	format, err := export.ParseFormat(vars["format"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	table, err := a.buildTable(r, name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, table, format); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.FileName(format)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (a *API) buildTable(r *http.Request, name export.Name) (export.Table, error) {
	ctx := r.Context()
	switch name {
	case export.NameBottlenecks, export.NamePerformance:
		q, err := travelQuery(r, a.reports)
		if err != nil {
			return export.Table{}, err
		}
		if name == export.NamePerformance {
			rows, err := a.reports.FilteredTravel(ctx, q)
			if err != nil {
				return export.Table{}, err
			}
			return export.PerformanceTable(rows), nil
		}
		rep, err := a.reports.Performance(ctx, q)
		if err != nil {
			return export.Table{}, err
		}
		return export.BottlenecksTable(rep.Bottlenecks), nil
	case export.NameCapacityRisk, export.NameVolume:
		q, err := volumeQuery(r, a.reports)
		if err != nil {
			return export.Table{}, err
		}
		if name == export.NameVolume {
			rows, err := a.reports.FilteredVolumes(ctx, q.Range, q.Intersection, q.Direction)
			if err != nil {
				return export.Table{}, err
			}
			return export.VolumeTable(rows), nil
		}
		rep, err := a.reports.Volume(ctx, q)
		if err != nil {
			return export.Table{}, err
		}
		return export.CapacityRiskTable(rep.CapacityRisk), nil
	default:
		q, err := cycleQuery(r, a.reports)
		if err != nil {
			return export.Table{}, err
		}
		rep, err := a.reports.CycleLength(ctx, q)
		if err != nil {
			return export.Table{}, err
		}
		return export.CycleTable(rep.Analysis), nil
	}
}

func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	defer body.Close()

	res, err := a.ingester.Ingest(r.Context(), body, kind, ingest.SourceUpload)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
