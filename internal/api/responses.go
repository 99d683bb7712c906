package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "scribe-ai/core/internal/errors"
)

// ErrorResponse is the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the generic acknowledgement for operations that do
// not return a resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError maps business-layer sentinel errors to HTTP status
// codes and writes a standard JSON error body. The detailed error is
// logged; validation and conflict messages are passed through because
// they are written for the user.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = err.Error()
	case errors.Is(err, app_errors.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = err.Error()
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "internal_error", err)
	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals a payload and writes it with the given status
// code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
