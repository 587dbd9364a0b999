package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsUnwrap(t *testing.T) {
	err := NotFound("Property %d not found", 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Property 4 not found", err.Error())

	wrapped := fmt.Errorf("loading: %w", AlreadyExists("dup"))
	assert.ErrorIs(t, wrapped, ErrAlreadyExists)
	assert.Equal(t, "dup", Message(wrapped, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("db down"), "fallback"))
}

func TestWithCodeCopies(t *testing.T) {
	base := &Error{Kind: ErrUnauthenticated, Message: "nope"}
	coded := WithCode(base, "expired_token")

	assert.Equal(t, "expired_token", Code(coded))
	assert.Empty(t, base.Code)
	assert.ErrorIs(t, coded, ErrUnauthenticated)
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{NotFound("x"), http.StatusNotFound, "not_found"},
		{AlreadyExists("x"), http.StatusConflict, "already_exists"},
		{NotAuthorized("x"), http.StatusForbidden, "forbidden"},
		{InvalidArgument("x"), http.StatusBadRequest, "invalid_argument"},
		{Unauthenticated("x"), http.StatusUnauthorized, "unauthenticated"},
		{WithCode(Unauthenticated("x"), "expired_token"), http.StatusUnauthorized, "expired_token"},
		{WithCode(NotAuthorized("x"), "account_disabled"), http.StatusForbidden, "account_disabled"},
		{errors.New("boom"), http.StatusInternalServerError, "unexpected_error"},
	}

	for _, tc := range cases {
		status, code := HTTPStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
