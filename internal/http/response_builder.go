// Package http provides HTTP server and handler implementations.
//
// This file maps domain errors to status codes and writes JSON bodies so
// every handler answers in the same shape.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errMalformed marks input that could not be decoded at all.
var errMalformed = errors.New("malformed request")

var validationErrors = []error{
	core.ErrInvalidCategoryType,
	core.ErrUnknownEnumVariant,
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrEmptyDescription,
	core.ErrEmptyName,
	core.ErrInvalidColor,
	core.ErrFieldLength,
	core.ErrCategoryTypeMismatch,
}

// statusFor picks the HTTP status and a stable machine-readable code for err.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformed):
		return http.StatusBadRequest, "malformed_request"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrDuplicateCategory):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, core.ErrReadOnly):
		return http.StatusNotImplemented, "read_only"
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity, "validation_failed"
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs server-side failures and hides their detail from clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, applog.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
