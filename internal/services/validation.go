package services

import (
	"errors"
	"fmt"
	"strings"

	"rentbroker/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a request DTO and reports the first offending field
// as an InvalidArgument error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.InvalidArgument("Invalid request")
	}

	fe := verrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return apperrors.InvalidArgument("Invalid %s: failed %s", strings.ToLower(fe.Field()), rule)
}
