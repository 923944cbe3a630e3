package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Default(applog.ComponentHTTP).Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps err onto a status code. label names the record kind for
// not-found messages, e.g. "Subscription".
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, label string, err error) {
	var verr *core.ValidationError
	status, body := http.StatusInternalServerError, errorBody{Detail: "Internal server error"}

	switch {
	case errors.As(err, &verr):
		status, body = http.StatusUnprocessableEntity, errorBody{Detail: "Validation failed", Fields: verr.Fields}
	case errors.Is(err, core.ErrValidation):
		status, body = http.StatusUnprocessableEntity, errorBody{Detail: err.Error()}
	case errors.Is(err, core.ErrNotFound):
		status, body = http.StatusNotFound, errorBody{Detail: label + " not found"}
	case errors.Is(err, core.ErrStoreUnavailable):
		status, body = http.StatusServiceUnavailable, errorBody{Detail: "Store unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		status, body = http.StatusServiceUnavailable, errorBody{Detail: "Request timed out"}
	}

	logger := applog.FromContext(r.Context(), applog.ComponentHTTP)
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	}
	writeJSON(w, status, body)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. On failure it writes a 400
// and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		writeDetail(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	if dec.More() {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body: unexpected data after object")
		return false
	}
	return true
}
