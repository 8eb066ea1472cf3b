package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

// ErrBadRequest marks errors caused by the caller's input.
var ErrBadRequest = errors.New("bad request")

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func WriteFile(w http.ResponseWriter, r *http.Request, name, contentType string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := w.Write(content); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write file response")
	}
}

// WriteError maps service and client errors onto HTTP statuses.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}
	WriteJSON(w, r, status, api.Error{Error: err.Error()})
}

func StatusFor(err error) int {
	var apiErr *client.APIError
	var urlErr *url.Error
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrProfileNotFound), errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, client.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr), errors.As(err, &urlErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
