package query

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/de-tools/report-atlas/pkg/handlers"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/services/query"
)

const maxDocumentSize = 32 << 20

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req api.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize)).Decode(&req); err != nil {
		handlers.WriteError(w, r, fmt.Errorf("%w: %w", handlers.ErrBadRequest, err))
		return
	}
	if len(req.Document) == 0 || req.Path == "" {
		handlers.WriteError(w, r, fmt.Errorf("%w: document and path are required", handlers.ErrBadRequest))
		return
	}

	results, err := query.Evaluate(req.Document, req.Path)
	if err != nil {
		handlers.WriteError(w, r, fmt.Errorf("%w: %w", handlers.ErrBadRequest, err))
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, api.QueryResponse{Path: req.Path, Results: results})
}

func (h *Handler) Samples(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusOK, query.SampleSelectors)
}
