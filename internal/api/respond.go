package api

import (
	"mime"
	"net/http"

	"github.com/mmynk/highlowbuffalo/internal/api/render"
	"github.com/mmynk/highlowbuffalo/internal/apperr"
)

var errInvalidForm = apperr.Validation("invalid form body")

func respond(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		render.Error(w, err)
		return
	}
	render.JSON(w, status, v)
}

func respondNoContent(w http.ResponseWriter, err error) {
	if err != nil {
		render.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}
