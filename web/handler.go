// Package web serves the dashboard page, its chart images, a small JSON API
// and the PDF report.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zalepa/agencydash/metrics"
	"github.com/zalepa/agencydash/render"
)

// Config is the presentation configuration of the page.
type Config struct {
	Title string
	// FooterHTML is sanitized before it reaches the page.
	FooterHTML string
	// Columns is the number of charts per grid row.
	Columns int
	Options render.Options
}

// DefaultConfig is the stock agency dashboard layout.
func DefaultConfig() Config {
	return Config{
		Title:      "Agency DA Dashboard",
		FooterHTML: "Data Source: Agency Dashboard Data",
		Columns:    3,
		Options:    render.Options{Theme: render.DefaultTheme()},
	}
}

// Handler holds the table, its derived totals and every pre-rendered
// artifact. All fields are read-only after NewHandler returns, apart from
// report rendering, which is serialized by mu.
type Handler struct {
	Log *zap.Logger

	cfg        Config
	table      *metrics.Table
	totals     metrics.CategoryTotals
	mismatches []metrics.Mismatch
	charts     []*render.Chart
	images     map[string]map[render.Format][]byte
	page       []byte

	mu sync.Mutex // guards drawing of charts into the PDF report
}

// NewHandler derives totals from t and pre-renders every chart and the page.
func NewHandler(t *metrics.Table, cfg Config, logger *zap.Logger) (*Handler, error) {
	if cfg.Columns < 1 {
		return nil, fmt.Errorf("columns must be at least 1, got %d", cfg.Columns)
	}
	if err := cfg.Options.Theme.Validate(); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}

	h := &Handler{
		Log:        logger,
		cfg:        cfg,
		table:      t,
		totals:     metrics.ComputeTotals(t, !cfg.Options.IncludeAggregateRow),
		mismatches: metrics.CheckAggregateRow(t),
		images:     make(map[string]map[render.Format][]byte),
	}

	charts, err := render.Dashboard(t, h.totals, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("build charts: %w", err)
	}
	h.charts = charts

	for _, c := range charts {
		h.images[c.ID] = make(map[render.Format][]byte)
		for _, f := range []render.Format{render.SVG, render.PNG} {
			var buf bytes.Buffer
			if err := c.Encode(&buf, f, render.DefaultWidth, render.DefaultHeight); err != nil {
				return nil, fmt.Errorf("pre-render: %w", err)
			}
			h.images[c.ID][f] = buf.Bytes()
		}
	}

	page, err := renderPage(h.pageData())
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	h.page = page

	logger.Info("dashboard ready",
		zap.Int("agencies", len(t.Agencies(true))),
		zap.Int("charts", len(charts)),
		zap.Bool("include_aggregate_row", cfg.Options.IncludeAggregateRow))
	return h, nil
}

// ServePage handles GET /.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(h.page)
}

// ServeChart handles GET /charts/{name}, where name is "<id>.<format>".
func (h *Handler) ServeChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ext := path.Ext(name)
	id := strings.TrimSuffix(name, ext)

	f, err := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data, ok := h.images[id][f]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}

type tableResponse struct {
	Fields []metrics.Metric       `json:"fields"`
	Rows   []metrics.AgencyRecord `json:"rows"`
}

// ServeTable handles GET /api/table.
func (h *Handler) ServeTable(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, tableResponse{Fields: h.table.Fields(), Rows: h.table.Rows()})
}

type totalsResponse struct {
	Totals              []metrics.CategoryTotal `json:"totals"`
	IncludeAggregateRow bool                    `json:"include_aggregate_row"`
	Mismatches          []metrics.Mismatch      `json:"mismatches"`
}

// ServeTotals handles GET /api/totals.
func (h *Handler) ServeTotals(w http.ResponseWriter, r *http.Request) {
	mismatches := h.mismatches
	if mismatches == nil {
		mismatches = []metrics.Mismatch{}
	}
	h.writeJSON(w, totalsResponse{
		Totals:              h.totals.Ordered(),
		IncludeAggregateRow: h.cfg.Options.IncludeAggregateRow,
		Mismatches:          mismatches,
	})
}

// ServeReport handles GET /report.pdf.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	h.mu.Lock()
	err := render.Report{
		Title:  h.cfg.Title,
		Table:  h.table,
		Totals: h.totals,
		Charts: h.charts,
		Theme:  h.cfg.Options.Theme,
	}.Write(&buf)
	h.mu.Unlock()
	if err != nil {
		h.Log.Error("report render failed", zap.Error(err))
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="agency-dashboard.pdf"`)
	w.Write(buf.Bytes())
}

type healthResponse struct {
	Status   string `json:"status"`
	Agencies int    `json:"agencies"`
}

// ServeHealth handles GET /health.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, healthResponse{Status: "ok", Agencies: len(h.table.Agencies(true))})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("write json response", zap.Error(err))
	}
}
