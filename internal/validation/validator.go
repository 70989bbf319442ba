package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "donasi/internal/errors"
)

// Validator accumulates field errors for a whole form.
type Validator struct {
	Errors apperrors.ValidationErrors
}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// Err returns the collected errors, or nil.
func (v *Validator) Err() error {
	return v.Errors.OrNil()
}

// AddError records a problem with field.
func (v *Validator) AddError(field, code, message string) {
	v.Errors = append(v.Errors, &apperrors.ValidationError{
		Field:   field,
		Code:    code,
		Message: message,
	})
}

// Add records a domain error against field.
func (v *Validator) Add(field string, d *apperrors.DomainError) {
	v.Errors = append(v.Errors, apperrors.Invalid(field, d))
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field string, d *apperrors.DomainError) {
	if !ok {
		v.Add(field, d)
	}
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "REQUIRED", "must not be empty")
	}
}

// MaxLength checks that value has at most n characters.
func (v *Validator) MaxLength(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.AddError(field, "TOO_LONG", fmt.Sprintf("must not be more than %d characters long", n))
	}
}

// Merge appends err's field errors; any other error is recorded unfielded.
func (v *Validator) Merge(err error) {
	switch e := err.(type) {
	case nil:
	case *apperrors.ValidationError:
		v.Errors = append(v.Errors, e)
	case apperrors.ValidationErrors:
		v.Errors = append(v.Errors, e...)
	default:
		v.AddError("", "INVALID", err.Error())
	}
}
