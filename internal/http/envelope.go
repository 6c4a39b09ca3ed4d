// Package http provides the JSON API server and handlers.
//
// Every response uses the same envelope shape so clients can branch on
// success without inspecting status codes first.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/core"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Failed to encode response envelope", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// respondError maps domain errors onto HTTP statuses: validation and
// consistency failures are 400, missing records 404, everything else a
// generic 500 that never leaks internals.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch ve, ok := core.AsValidationError(err); {
	case ok:
		writeJSON(w, http.StatusBadRequest, Envelope{
			Success: false,
			Message: "validation failed",
			Errors:  ve.Fields,
		})
	case errors.Is(err, core.ErrBudgetUnavailable):
		writeJSON(w, http.StatusBadRequest, Envelope{
			Success: false,
			Message: "budget does not exist or is not active",
		})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Envelope{
			Success: false,
			Message: "not found",
		})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, Envelope{
			Success: false,
			Message: "internal error",
		})
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: message})
}
