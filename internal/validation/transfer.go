package validation

import (
	"strings"
	"unicode/utf8"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
)

// CheckMethod requires m to be one of allowed.
func CheckMethod(m models.Method, allowed ...models.Method) error {
	for _, a := range allowed {
		if m == a && m != models.MethodNone {
			return nil
		}
	}
	return apperrors.Invalid("method", apperrors.ErrMethodRequired)
}

// CheckProvider requires a provider that belongs to method m.
func CheckProvider(m models.Method, providerID string) error {
	if _, ok := models.ProviderByID(m, providerID); !ok {
		return apperrors.Invalid("provider", apperrors.ErrProviderRequired)
	}
	return nil
}

// CheckAccount requires a non-blank destination account.
func CheckAccount(account string) error {
	if strings.TrimSpace(account) == "" {
		return apperrors.Invalid("account", apperrors.ErrAccountRequired)
	}
	return nil
}

// WithdrawalInput is everything a withdrawal needs before submission.
type WithdrawalInput struct {
	Amount   int64
	Balance  int64
	Method   models.Method
	Provider string
	Account  string
	PIN      string
}

// ValidateWithdrawalDetails checks the details step and stops at the first
// problem, in the order amount, balance, method, provider, account.
func ValidateWithdrawalDetails(in WithdrawalInput) error {
	if err := CheckAmount(in.Amount); err != nil {
		return err
	}
	if err := CheckBalance(in.Amount, in.Balance); err != nil {
		return err
	}
	if err := CheckMethod(in.Method, models.MethodBank, models.MethodEWallet); err != nil {
		return err
	}
	if err := CheckProvider(in.Method, in.Provider); err != nil {
		return err
	}
	return CheckAccount(in.Account)
}

// ValidateWithdrawal checks the details and then the PIN.
func ValidateWithdrawal(in WithdrawalInput) error {
	if err := ValidateWithdrawalDetails(in); err != nil {
		return err
	}
	return ValidatePIN("pin", in.PIN)
}

// DonationInput is a donation before submission.
type DonationInput struct {
	SenderID    int64
	RecipientID int64
	Amount      int64
	Balance     int64
	Message     string
}

// ValidateDonation checks a donation form and reports every problem found.
func ValidateDonation(in DonationInput) error {
	v := New()
	v.Merge(CheckAmount(in.Amount))
	if v.Valid() {
		v.Merge(CheckBalance(in.Amount, in.Balance))
	}
	checkDonationDetails(v, in)
	return v.Err()
}

// ParseDonation parses amountText into in.Amount and validates the rest of
// the form. A parse failure is reported as the amount error; the balance
// check only runs on a parsed amount.
func ParseDonation(amountText string, in DonationInput) (DonationInput, error) {
	v := New()
	amount, err := ParseAmount(amountText)
	v.Merge(err)
	if err == nil {
		in.Amount = amount
		v.Merge(CheckBalance(amount, in.Balance))
	}
	checkDonationDetails(v, in)
	return in, v.Err()
}

func checkDonationDetails(v *Validator, in DonationInput) {
	v.Check(in.RecipientID != 0, "recipient", apperrors.ErrRecipientRequired)
	v.Check(in.RecipientID == 0 || in.RecipientID != in.SenderID, "recipient", apperrors.ErrSelfDonation)
	v.Check(utf8.RuneCountInString(in.Message) <= MaxDonationMessageLength, "message", apperrors.ErrMessageTooLong)
}

// TopUpInput is a top-up before submission.
type TopUpInput struct {
	Amount   int64
	Method   models.Method
	Provider string
	Card     string
}

// ValidateTopUp checks a top-up. Bank and e-wallet need a provider, card
// needs a payment method reference.
func ValidateTopUp(in TopUpInput) error {
	if err := CheckMethod(in.Method, models.MethodBank, models.MethodEWallet, models.MethodCard); err != nil {
		return err
	}
	if in.Method == models.MethodCard {
		if strings.TrimSpace(in.Card) == "" {
			return apperrors.Invalid("card", apperrors.ErrMethodRequired)
		}
	} else if err := CheckProvider(in.Method, in.Provider); err != nil {
		return err
	}
	return CheckAmount(in.Amount)
}
