package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"tapas-route-service/internal/api/dto"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/platform/obs"

	"github.com/rs/zerolog/log"
)

// Non-standard status used when the client went away mid-request.
const statusClientClosedRequest = 499

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// writeDomainError maps solver and catalog errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var nfe *domain.NoFeasibleRouteError
	switch {
	case errors.As(err, &nfe):
		writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error(), Unreachable: nfe.Unreachable})
	case errors.Is(err, domain.ErrEmptyRequest), errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status := statusClientClosedRequest
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		log.Warn().Str("req_id", obs.RequestID(r.Context())).Str("op", op).Err(err).Msg("request cancelled")
		writeError(w, r, status, "request cancelled")
	default:
		log.Error().Str("req_id", obs.RequestID(r.Context())).Str("op", op).Err(err).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
