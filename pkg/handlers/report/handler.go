package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/handlers"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxDocumentSize = 32 << 20

type Service interface {
	Run(ctx context.Context, profile, id string, opts report.Options) (*domain.ParsedReport, error)
	ParseFile(ctx context.Context, r io.Reader, opts report.Options) (*domain.ParsedReport, error)
	Describe(ctx context.Context, profile, id string) (json.RawMessage, error)
	List(ctx context.Context, profile string) ([]store.ReportListItem, error)
}

type Handler struct {
	reports Service
}

func NewHandler(reports Service) *Handler {
	return &Handler{reports: reports}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	reports, err := h.reports.List(r.Context(), profile)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, adapters.MapReportListStoreToApi(reports))
}

// GetReport runs a report and returns it parsed. An unsupported format or an
// empty fact map is still a 200; the body says so.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile := chi.URLParam(r, "profile")
	id := chi.URLParam(r, "id")

	opts, err := optionsFrom(r)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	parsed, err := h.reports.Run(ctx, profile, id, opts)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	zerolog.Ctx(ctx).Debug().
		Str("report", id).
		Str("status", string(parsed.Result.Status)).
		Msg("report parsed")
	handlers.WriteJSON(w, r, http.StatusOK, adapters.MapParsedReportDomainToApi(parsed))
}

func (h *Handler) DescribeReport(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	id := chi.URLParam(r, "id")

	raw, err := h.reports.Describe(r.Context(), profile, id)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, raw)
}

// ParseReport parses a report document posted as the request body.
func (h *Handler) ParseReport(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFrom(r)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxDocumentSize)
	parsed, err := h.reports.ParseFile(r.Context(), body, opts)
	if err != nil {
		handlers.WriteError(w, r, fmt.Errorf("%w: %w", handlers.ErrBadRequest, err))
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, adapters.MapParsedReportDomainToApi(parsed))
}

func optionsFrom(r *http.Request) (report.Options, error) {
	q := r.URL.Query()

	field, err := domain.ParseCellField(q.Get("field"))
	if err != nil {
		return report.Options{}, fmt.Errorf("%w: %w", handlers.ErrBadRequest, err)
	}
	opts := report.Options{CellField: field}

	for name, dst := range map[string]*bool{"named": &opts.NamedAggregates, "cached": &opts.Cached} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return report.Options{}, fmt.Errorf("%w: %s must be a boolean", handlers.ErrBadRequest, name)
		}
		*dst = b
	}
	return opts, nil
}
