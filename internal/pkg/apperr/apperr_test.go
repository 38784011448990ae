package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	caseMissing := NotFound("case %s not found", "c-1")
	wrapped := fmt.Errorf("load case: %w", caseMissing)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.True(t, errors.Is(wrapped, caseMissing))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, NotFound("quote not found")))
}

func TestStorageKeepsClassifiedErrors(t *testing.T) {
	conflict := Conflict("already assigned")
	assert.Same(t, conflict, Storage("update case", conflict))

	raw := errors.New("connection reset")
	err := Storage("update case", raw)
	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, raw)
	assert.Nil(t, Storage("noop", nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthorization:     http.StatusForbidden,
		KindNotFound:          http.StatusNotFound,
		KindValidation:        http.StatusBadRequest,
		KindConflict:          http.StatusConflict,
		KindInvalidTransition: http.StatusConflict,
		KindExternalService:   http.StatusBadGateway,
		KindStorage:           http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind)
	}
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
