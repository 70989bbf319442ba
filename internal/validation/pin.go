package validation

import (
	apperrors "donasi/internal/errors"
)

// IsPIN reports whether pin is exactly six ASCII digits.
func IsPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// ValidatePIN returns a field error unless pin is six ASCII digits.
func ValidatePIN(field, pin string) error {
	if !IsPIN(pin) {
		return apperrors.Invalid(field, apperrors.ErrInvalidPIN)
	}
	return nil
}
