package apperrors

import (
	"errors"
	"net/http"
)

// HTTPStatus maps err onto a response status and code slug. Errors outside the taxonomy
// are 500 unexpected_error.
func HTTPStatus(err error) (int, string) {
	code := Code(err)
	pick := func(fallback string) string {
		if code != "" {
			return code
		}
		return fallback
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, pick("not_found")
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict, pick("already_exists")
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden, pick("forbidden")
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, pick("invalid_argument")
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, pick("unauthenticated")
	default:
		return http.StatusInternalServerError, "unexpected_error"
	}
}
