package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
)

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    apperr.Kind
		message string
	}{
		{"validation", apperr.Validation("high is required"), http.StatusBadRequest, apperr.KindValidation, "high is required"},
		{"not found", apperr.NotFound("reflection not found"), http.StatusNotFound, apperr.KindNotFound, "reflection not found"},
		{"foreign error hides detail", errors.New("disk on fire"), http.StatusInternalServerError, apperr.KindInternal, "operation did not complete, try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}
