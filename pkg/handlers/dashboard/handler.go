package dashboard

import (
	"context"
	"net/http"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/handlers"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	List(ctx context.Context, profile string) ([]store.DashboardListItem, error)
	Bundle(ctx context.Context, profile, id string) (*domain.DashboardBundle, error)
	PNG(ctx context.Context, profile, id string) (*store.File, error)
}

type Handler struct {
	dashboards Service
}

func NewHandler(dashboards Service) *Handler {
	return &Handler{dashboards: dashboards}
}

func (h *Handler) ListDashboards(w http.ResponseWriter, r *http.Request) {
	dashboards, err := h.dashboards.List(r.Context(), chi.URLParam(r, "profile"))
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, adapters.MapDashboardListStoreToApi(dashboards))
}

// GetDashboard returns results and metadata together.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.dashboards.Bundle(r.Context(), chi.URLParam(r, "profile"), chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, adapters.MapDashboardBundleDomainToApi(bundle))
}

func (h *Handler) GetDashboardPNG(w http.ResponseWriter, r *http.Request) {
	file, err := h.dashboards.PNG(r.Context(), chi.URLParam(r, "profile"), chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteFile(w, r, file.Name, file.ContentType, file.Content)
}
