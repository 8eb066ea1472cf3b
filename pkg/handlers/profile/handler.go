package profile

import (
	"context"
	"net/http"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/handlers"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type Lister interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
}

type Handler struct {
	profiles Lister
}

func NewHandler(profiles Lister) *Handler {
	return &Handler{profiles: profiles}
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListProfiles(r.Context())
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	response := make([]api.Profile, 0, len(profiles))
	for _, p := range profiles {
		response = append(response, adapters.MapProfileDomainToApi(p))
	}
	handlers.WriteJSON(w, r, http.StatusOK, response)
}
