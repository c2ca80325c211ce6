package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/okian/peloton/internal/domain/interaction"
	"github.com/okian/peloton/internal/domain/types"
)

// maxPointerBody bounds a pointer event request.
const maxPointerBody = 4 << 10

// ViewDependencies defines the interface for live views.
type ViewDependencies interface {
	OpenView(ctx context.Context) (types.ViewSummary, error)
	ViewSVG(ctx context.Context, id string, w io.Writer) error
	Pointer(ctx context.Context, id string, ev interaction.Event) (types.Tooltip, error)
	Tooltip(ctx context.Context, id string) (types.Tooltip, error)
	ReleaseView(ctx context.Context, id string) error
}

// ViewsHandler handles view requests.
type ViewsHandler struct {
	deps ViewDependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps ViewDependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

// HandleCreate handles POST /views requests.
func (h *ViewsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_view"
	sum, err := h.deps.OpenView(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/views/"+sum.ID+"/chart.svg")
	writeJSON(w, http.StatusCreated, sum)
}

// HandleSVG handles GET /views/{id}/chart.svg requests.
func (h *ViewsHandler) HandleSVG(w http.ResponseWriter, r *http.Request) {
	id, ok := viewID(w, r, "api.view_svg")
	if !ok {
		return
	}
	render(w, r, "api.view_svg", "image/svg+xml", func(ctx context.Context, out io.Writer) error {
		return h.deps.ViewSVG(ctx, id, out)
	})
}

// HandleTooltip handles GET /views/{id}/tooltip requests.
func (h *ViewsHandler) HandleTooltip(w http.ResponseWriter, r *http.Request) {
	const op = "api.view_tooltip"
	id, ok := viewID(w, r, op)
	if !ok {
		return
	}
	tip, err := h.deps.Tooltip(r.Context(), id)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

// HandlePointer handles POST /views/{id}/pointer requests.
func (h *ViewsHandler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	const op = "api.view_pointer"
	id, ok := viewID(w, r, op)
	if !ok {
		return
	}
	var req types.PointerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPointerBody)).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := interaction.ParseKind(req.Type)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	tip, err := h.deps.Pointer(r.Context(), id, interaction.Event{Kind: kind, Mark: req.Mark, X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

// HandleDelete handles DELETE /views/{id} requests.
func (h *ViewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_view"
	id, ok := viewID(w, r, op)
	if !ok {
		return
	}
	if err := h.deps.ReleaseView(r.Context(), id); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func viewID(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return "", false
	}
	return id, true
}
