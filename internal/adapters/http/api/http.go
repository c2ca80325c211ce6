// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DatasetDependencies
	ChartDependencies
	ViewDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	datasetHandler *DatasetHandler
	chartHandler   *ChartHandler
	viewsHandler   *ViewsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		datasetHandler: NewDatasetHandler(deps),
		chartHandler:   NewChartHandler(deps),
		viewsHandler:   NewViewsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /dataset", MetricsMiddleware(s.datasetHandler.HandleGetDataset, "dataset"))
	mux.HandleFunc("GET /chart.svg", MetricsMiddleware(s.chartHandler.HandleSVG, "chart_svg"))
	mux.HandleFunc("GET /chart.png", MetricsMiddleware(s.chartHandler.HandlePNG, "chart_png"))

	mux.HandleFunc("POST /views", MetricsMiddleware(s.viewsHandler.HandleCreate, "views_create"))
	mux.HandleFunc("GET /views/{id}/chart.svg", MetricsMiddleware(s.viewsHandler.HandleSVG, "views_svg"))
	mux.HandleFunc("GET /views/{id}/tooltip", MetricsMiddleware(s.viewsHandler.HandleTooltip, "views_tooltip"))
	mux.HandleFunc("POST /views/{id}/pointer", MetricsMiddleware(s.viewsHandler.HandlePointer, "views_pointer"))
	mux.HandleFunc("DELETE /views/{id}", MetricsMiddleware(s.viewsHandler.HandleDelete, "views_delete"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
