package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// apiResult is the uniform response envelope. Failures carry a message
// and, for validation failures, a per-field error map.
type apiResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Data    any                 `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, result apiResult) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResult{Success: true, Data: data})
}

// writeErrorLogOnly records a failure that happened after the response
// started, when the status line can no longer change.
func writeErrorLogOnly(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Failed mid-response", "path", r.URL.Path, "error", err)
}

// writeError maps domain errors onto HTTP statuses. Anything untyped is
// treated as an internal failure and its detail stays out of the body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr *core.AuthError
		valErr  *core.ValidationError
		nfErr   *core.NotFoundError
		depErr  *core.DependencyError
	)

	switch {
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, apiResult{Message: "Not authenticated"})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusUnprocessableEntity, apiResult{
			Message: "Validation failed",
			Errors:  valErr.Fields,
		})
	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, apiResult{Message: nfErr.Error()})
	case errors.As(err, &depErr):
		slog.ErrorContext(r.Context(), "Dependency failure", "op", depErr.Op, "error", depErr.Err)
		writeJSON(w, http.StatusBadGateway, apiResult{Message: "A backing service failed. Please try again."})
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResult{Message: "Internal server error"})
	}
}
