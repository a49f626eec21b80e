package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Transient gateway
// failures surface as 503 so callers (and the gateway's webhook retrier)
// know to try again; everything terminal gets a 4xx.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case domain.IsPrecondition(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "the resource changed concurrently, retry"})
	case gateway.IsUnavailable(err):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "payment provider is temporarily unavailable"})
	case gateway.IsRejected(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		logger.Error("Unhandled error in HTTP handler", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validationf("invalid request body: %v", err)
	}
	return nil
}
