package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{Validation("bad field"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusConflict},
		{NotFound("missing"), http.StatusNotFound},
		{Auth("bad credentials"), http.StatusUnauthorized},
		{Forbidden("wrong role"), http.StatusForbidden},
		{External(errors.New("boom"), "provider down"), http.StatusBadGateway},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), "kind %s", tc.err.Kind)
		assert.Equal(t, tc.status, StatusOf(tc.err))
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("submit application: %w", Conflict("registration number already registered"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}

func TestUntypedErrorIsInternal(t *testing.T) {
	err := errors.New("plain failure")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestExternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := External(cause, "identity provider unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "identity provider unavailable")
}
