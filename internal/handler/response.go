package handler

// RESPONSE HELPERS:
// Every response the API produces goes through writeJSON, and every failure
// goes through writeError, so the whole surface shares one shape.
//
// ERROR ENVELOPE:
//
//	{"message": "question not found with id abc", "error": "not_found"}
//
// message is the human-readable part the SPA shows directly; error is the
// machine-readable kind and is omitted on success responses.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/team-pulse/internal/apperror"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Message string `json:"message"`         // Human-readable description
	Error   string `json:"error,omitempty"` // Machine-readable kind, e.g. "not_found"
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before the first body write — hence the strict
// header → status → body order.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends the envelope.
//
// The service layer returns apperror sentinels; errors.Is walks the wrap
// chain so a service error like fmt.Errorf("creating answer: %w", NotFound)
// still maps to 404. Anything that isn't an AppError is an unexpected
// failure: the response is a deliberately generic 500 — raw error text can
// carry query fragments or file paths and must not reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		kind := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			kind = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			kind = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			kind = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			kind = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			kind = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Message: appErr.Message,
			Error:   kind,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Message: "An internal error occurred",
		Error:   "internal_error",
	})
}
