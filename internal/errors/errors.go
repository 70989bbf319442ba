// Package errors defines the error taxonomy shared by the donasi client:
// validation failures caught before any request, authorization failures
// from the backend, business rejections carrying the backend's message, and
// transport failures.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainError is a coded, user-presentable error.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// ValidationError reports an input rejected on the client side. No request
// is sent when one of these is returned.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	switch t := target.(type) {
	case *DomainError:
		return t.Code == e.Code
	case *ValidationError:
		return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
	}
	return false
}

// Invalid builds a ValidationError for field from a domain error.
func Invalid(field string, d *DomainError) *ValidationError {
	return &ValidationError{Field: field, Code: d.Code, Message: d.Message}
}

// ValidationErrors collects every field problem of a form.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

// Field returns the first error recorded for field, or nil.
func (v ValidationErrors) Field(field string) *ValidationError {
	for _, e := range v {
		if e.Field == field {
			return e
		}
	}
	return nil
}

// OrNil returns nil for an empty collection so callers can return it directly.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AuthError is a 401 or 403 from the backend.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unauthorized (status %d)", e.Status)
	}
	return fmt.Sprintf("unauthorized (status %d): %s", e.Status, e.Message)
}

// Forbidden reports whether the backend answered 403.
func (e *AuthError) Forbidden() bool {
	return e.Status == http.StatusForbidden
}

// BusinessError is any other non-2xx answer. Message is taken from the
// response body.
type BusinessError struct {
	Status  int
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code != "" && t.Code == e.Code
}

// NetworkError wraps transport and decoding failures.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is a 401/403 from the backend.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	var v *ValidationError
	var vs ValidationErrors
	return errors.As(err, &v) || errors.As(err, &vs)
}

// UserMessage converts any error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		vs      ValidationErrors
		v       *ValidationError
		domain  *DomainError
		auth    *AuthError
		biz     *BusinessError
		network *NetworkError
	)
	switch {
	case errors.As(err, &vs):
		return vs.Error()
	case errors.As(err, &v):
		return v.Message
	case errors.As(err, &auth):
		return "Your session has ended. Please sign in again."
	case errors.As(err, &biz):
		if biz.Message != "" {
			return biz.Message
		}
	case errors.As(err, &domain):
		return domain.Message
	case errors.As(err, &network):
		return "Something went wrong. Please try again."
	}
	return "Something went wrong. Please try again."
}
