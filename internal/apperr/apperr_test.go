package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("create reflection: %w", Validation("high is required"))

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("reflection %s not found", "r1"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestTransportUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport(cause, "request failed")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "request failed", MessageOf(err))
	assert.Equal(t, "operation did not complete, try again", MessageOf(cause))
}

func TestStatusRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindValidation, KindNotFound, KindConflict, KindForbidden, KindUnauthorized} {
		assert.Equal(t, kind, KindFromStatus(HTTPStatus(kind)), kind)
	}
	assert.Equal(t, KindTransport, KindFromStatus(http.StatusInternalServerError))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}
