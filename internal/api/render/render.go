// Package render writes JSON responses and apperr-shaped error bodies.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code  apperr.Kind `json:"code"`
	Error string      `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Error maps err to its HTTP status and writes an ErrorBody. Internal errors
// are logged and their detail is not exposed.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	JSON(w, status, ErrorBody{Code: kind, Error: apperr.MessageOf(err)})
}
