package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"sales-assistant/internal/ai"
	"sales-assistant/internal/app"
	"sales-assistant/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a ledger error onto its HTTP status and code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	writeError(w, r, err.Error(), code, status)
}

// classifyError returns the HTTP status and machine-readable code for err.
// Destination-bank errors are checked before generic validation.
func classifyError(err error) (int, string) {
	var storage *core.StorageError
	switch {
	case errors.Is(err, core.ErrInvalidDestinationBank):
		return http.StatusUnprocessableEntity, "INVALID_DESTINATION_BANK"
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, core.ErrInconsistentReference):
		return http.StatusConflict, "INCONSISTENT_REFERENCE"
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.As(err, &storage):
		return http.StatusInternalServerError, "STORAGE_ERROR"
	case errors.Is(err, app.ErrAgentDisabled):
		return http.StatusServiceUnavailable, "AI_DISABLED"
	case errors.Is(err, ai.ErrTurnLimit):
		return http.StatusUnprocessableEntity, "AI_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
