package api

import (
	"context"
	"net/http"

	"github.com/okian/peloton/internal/domain/types"
)

// DatasetDependencies defines the interface for reading the dataset.
type DatasetDependencies interface {
	Records(ctx context.Context) ([]types.Record, error)
}

// DatasetHandler handles dataset requests.
type DatasetHandler struct {
	deps DatasetDependencies
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(deps DatasetDependencies) *DatasetHandler {
	return &DatasetHandler{deps: deps}
}

// HandleGetDataset handles GET /dataset requests.
func (h *DatasetHandler) HandleGetDataset(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dataset"
	records, err := h.deps.Records(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}
