package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
)

// ChartDependencies renders one-shot charts.
type ChartDependencies interface {
	RenderSVG(ctx context.Context, w io.Writer) error
	RenderPNG(ctx context.Context, w io.Writer) error
}

// ChartHandler serves rendered charts.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleSVG handles GET /chart.svg requests.
func (h *ChartHandler) HandleSVG(w http.ResponseWriter, r *http.Request) {
	render(w, r, "api.chart_svg", "image/svg+xml", h.deps.RenderSVG)
}

// HandlePNG handles GET /chart.png requests.
func (h *ChartHandler) HandlePNG(w http.ResponseWriter, r *http.Request) {
	render(w, r, "api.chart_png", "image/png", h.deps.RenderPNG)
}

// render buffers the output so a failed render still yields a JSON error.
func render(w http.ResponseWriter, r *http.Request, op, contentType string, fn func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(r.Context(), &buf); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
