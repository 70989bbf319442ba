package validation

import (
	"strconv"
	"strings"

	apperrors "donasi/internal/errors"
)

// ParseAmount parses a whole-Rupiah amount typed by the user. The text must
// be a plain positive integer; separators, signs and decimals are rejected.
func ParseAmount(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "+-") {
		return 0, apperrors.Invalid("amount", apperrors.ErrInvalidAmount)
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, apperrors.Invalid("amount", apperrors.ErrInvalidAmount)
	}
	if err := CheckAmount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// CheckAmount enforces 0 < amount <= MaxAmount.
func CheckAmount(amount int64) error {
	if amount <= 0 || amount > MaxAmount {
		return apperrors.Invalid("amount", apperrors.ErrInvalidAmount)
	}
	return nil
}

// CheckBalance rejects spending more than the known balance.
func CheckBalance(amount, balance int64) error {
	if amount > balance {
		return apperrors.Invalid("amount", apperrors.ErrInsufficientBalance)
	}
	return nil
}
