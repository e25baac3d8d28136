// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError converts jellydator field errors into an apperrors.ValidationError
// so handlers can return the field list. Any other error is wrapped as ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}

	var internalErr validation.InternalError
	if apperrors.As(err, &internalErr) {
		return apperrors.Wrap(err, "validation failed")
	}

	var fieldErrs validation.Errors
	if apperrors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			if fieldErr != nil {
				fields[field] = fieldErr.Error()
			}
		}
		return apperrors.NewValidationError(fields)
	}

	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// FieldError builds a single-field validation error.
func FieldError(field, message string) error {
	return apperrors.NewValidationError(map[string]string{field: message})
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// UUID validates that a non-empty string parses as a UUID.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)
