package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"floorplans/pkg/charts"
	"floorplans/pkg/floorplan"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the dashboard for one loaded table. The table is never
// modified after construction, so a Handler is safe for concurrent use.
type Handler struct {
	table    floorplan.Table
	options  floorplan.Options
	resolver *floorplan.Resolver
	palette  charts.Palette
	tmpl     *template.Template
	registry *prometheus.Registry
	metrics  *Metrics
}

func NewHandler(table floorplan.Table, resolver *floorplan.Resolver) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.TableRows.Set(float64(table.Len()))

	options := floorplan.Distinct(table)
	return &Handler{
		table:    table,
		options:  options,
		resolver: resolver,
		palette:  charts.NewPalette(options.Projects),
		tmpl:     tmpl,
		registry: registry,
		metrics:  metrics,
	}, nil
}

// filtered applies the request's selection to the table.
func (h *Handler) filtered(r *http.Request) (floorplan.Selection, floorplan.Table) {
	sel := selectionFromQuery(r.URL.Query(), h.options)
	return sel, floorplan.Filter(h.table, sel)
}

func (h *Handler) grid(sel floorplan.Selection) []floorplan.FloorImages {
	grid := h.resolver.Grid(sel)
	for _, row := range grid {
		for _, res := range row.Images {
			h.metrics.ImageLookups.WithLabelValues(res.Status.String()).Inc()
			if res.Err != nil {
				log.WithError(res.Err).WithField("key", res.Key).Warn("Floor plan image unavailable")
			}
		}
	}
	return grid
}

func (h *Handler) aggregationFailed(err error) {
	h.metrics.AggregationErrors.Inc()
	log.WithError(err).Warn("Failed to aggregate floor plan areas")
}

func (h *Handler) getIndex(w http.ResponseWriter, r *http.Request) {
	sel, filtered := h.filtered(r)
	h.metrics.Renders.WithLabelValues("dashboard").Inc()

	view := dashboardView{
		Options:   h.options,
		Selection: sel,
		Query:     selectionQuery(sel),
		Images:    imageRows(h.grid(sel)),
		Columns:   filtered.Header(),
		Rows:      tableRecords(filtered),
	}
	for _, p := range h.options.Projects {
		view.Legend = append(view.Legend, legendEntry{Project: p, Color: template.CSS(h.palette.CSS(p))})
	}

	summary, err := floorplan.Summarize(filtered)
	if err != nil {
		h.aggregationFailed(err)
		view.RoomErr = err.Error()
	} else {
		view.Summary = &summary
	}
	totals, err := floorplan.SumAreaByProject(filtered)
	if err != nil {
		h.aggregationFailed(err)
		view.TotalsErr = err.Error()
	} else {
		view.Totals = totals
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		log.WithError(err).Error("Template error for dashboard")
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	sendResponse(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) getOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.options)
}

func (h *Handler) getRows(w http.ResponseWriter, r *http.Request) {
	_, filtered := h.filtered(r)
	h.metrics.Renders.WithLabelValues("table").Inc()

	resp := rowsResponse{Columns: filtered.Header(), Rows: filtered.Rows}
	summary, err := floorplan.Summarize(filtered)
	if err != nil {
		h.aggregationFailed(err)
		resp.Error = err.Error()
	} else {
		resp.Summary = &summary
	}
	render.JSON(w, r, resp)
}

func (h *Handler) getImages(w http.ResponseWriter, r *http.Request) {
	sel, _ := h.filtered(r)
	h.metrics.Renders.WithLabelValues("images").Inc()
	render.JSON(w, r, imageRows(h.grid(sel)))
}

func (h *Handler) getTotals(w http.ResponseWriter, r *http.Request) {
	_, filtered := h.filtered(r)
	h.metrics.Renders.WithLabelValues("totals").Inc()

	totals, err := floorplan.SumAreaByProject(filtered)
	if err != nil {
		h.aggregationFailed(err)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	render.JSON(w, r, totals)
}

func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	f, err := h.resolver.Open(key)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
			http.NotFound(w, r)
		default:
			log.WithError(err).WithField("key", key).Warn("Failed to open floor plan image")
			http.Error(w, "image unavailable", http.StatusForbidden)
		}
		return
	}
	f.Close()
	http.ServeFileFS(w, r, h.resolver.FS(), key)
}

func (h *Handler) getProjectChart(w http.ResponseWriter, r *http.Request) {
	_, filtered := h.filtered(r)
	h.metrics.Renders.WithLabelValues("project_chart").Inc()

	totals, err := floorplan.SumAreaByProject(filtered)
	if err != nil {
		h.aggregationFailed(err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.sendChart(w, func(buf *bytes.Buffer) error {
		return charts.ProjectArea(buf, totals, h.palette)
	})
}

func (h *Handler) getRoomChart(w http.ResponseWriter, r *http.Request) {
	_, filtered := h.filtered(r)
	h.metrics.Renders.WithLabelValues("room_chart").Inc()

	h.sendChart(w, func(buf *bytes.Buffer) error {
		return charts.RoomArea(buf, floorplan.RoomAreaView(filtered), h.palette)
	})
}

func (h *Handler) sendChart(w http.ResponseWriter, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	err := draw(&buf)
	var aggErr *floorplan.AggregationError
	switch {
	case err == nil:
		sendResponse(w, http.StatusOK, "image/png", buf.Bytes())
	case errors.Is(err, charts.ErrNoData):
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &aggErr):
		h.aggregationFailed(err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.WithError(err).Error("Failed to render chart")
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
	}
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	_, filtered := h.filtered(r)

	format := r.URL.Query().Get(paramFormat)
	if format == "" {
		format = chi.URLParam(r, "format")
	}

	var (
		body        []byte
		err         error
		filename    string
		contentType string
	)
	switch format {
	case "", "csv":
		format = "csv"
		body, err = floorplan.SerializeCSV(filtered)
		filename, contentType = floorplan.ExportFilename, floorplan.ExportContentType
	case "xlsx":
		body, err = floorplan.SerializeXLSX(filtered)
		filename, contentType = floorplan.WorkbookFilename, floorplan.WorkbookContentType
	default:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unsupported export format: " + format})
		return
	}
	if err != nil {
		log.WithError(err).WithField("format", format).Error("Failed to export floor plans")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	h.metrics.Exports.WithLabelValues(format).Inc()
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	sendResponse(w, http.StatusOK, contentType, body)
}

func getHealth(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

func sendResponse(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
