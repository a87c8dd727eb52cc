// Package validator wraps the go-playground/validator library to provide
// declarative struct validation with standardized error formatting.
//
// Struct fields are validated via tags (e.g. `validate:"required"`), and
// violations are reported as a multi-error chain rooted at
// ErrValidationFailed. The package initializes itself on import and is safe
// to use directly.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is returned as the first error in a multi-error chain
// when validation fails. It lets callers detect validation failures
// explicitly even when several field errors are reported at once.
var ErrValidationFailed = errors.New("struct validation failed")

// validator is a singleton instance of the go-playground validator,
// initialized automatically on package load.
var validator *gvalidator.Validate

// errStringFormat defines the template used to describe individual validation errors.
//
// Example: "'Address': value '0x' does not meet the requirements for the 'required' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError transforms a raw validator error into a structured,
// human-readable multi-error chain. Non-validation errors pass through
// unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		err := fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		)

		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate checks whether the given struct satisfies its validation tags.
//
// It returns nil when all fields pass. Otherwise it returns a combined error
// including ErrValidationFailed plus one formatted message per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
