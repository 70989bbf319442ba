package wizard

import (
	"context"
	"strings"

	"donasi/internal/models"
	"donasi/internal/services/ledger"
	"donasi/internal/validation"
)

// Withdrawal collects a method, then provider, account and amount, then the
// PIN.
type Withdrawal struct {
	machine
	ledger   Ledger
	balances Balances

	method   models.Method
	provider string
	account  string
	amount   int64
	pin      string
}

func NewWithdrawal(ctx context.Context, l Ledger, balances Balances) *Withdrawal {
	w := &Withdrawal{ledger: l, balances: balances}
	w.init(ctx, KindWithdrawal)
	return w
}

// ChooseMethod accepts bank or e-wallet and moves to the details step.
func (w *Withdrawal) ChooseMethod(method models.Method) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(StepMethod, StepDetails); err != nil {
		return err
	}
	if err := validation.CheckMethod(method, models.MethodBank, models.MethodEWallet); err != nil {
		return err
	}
	w.method = method
	w.step = StepDetails
	return nil
}

// SetDetails validates provider, account and amount against the current
// balance and moves to the PIN step.
func (w *Withdrawal) SetDetails(provider, account, amountText string) error {
	me, err := w.balances.RequireUser()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(StepDetails, StepPIN); err != nil {
		return err
	}

	amount, err := validation.ParseAmount(amountText)
	if err != nil {
		return err
	}
	account = strings.TrimSpace(account)
	if err := validation.ValidateWithdrawalDetails(validation.WithdrawalInput{
		Amount:   amount,
		Balance:  me.Balance,
		Method:   w.method,
		Provider: provider,
		Account:  account,
	}); err != nil {
		return err
	}

	w.provider, w.account, w.amount = provider, account, amount
	w.step = StepPIN
	return nil
}

// Back moves one step back: from the PIN step it forgets the PIN, from the
// details step it forgets provider, account and amount.
func (w *Withdrawal) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepPIN:
		if err := w.checkLocked(StepPIN, StepDetails); err != nil {
			return err
		}
		w.pin = ""
		w.step = StepDetails
	default:
		if err := w.checkLocked(StepDetails, StepMethod); err != nil {
			return err
		}
		w.provider, w.account, w.amount = "", "", 0
		w.step = StepMethod
	}
	return nil
}

// Submit checks the PIN and sends the withdrawal. On failure the wizard
// stays on the PIN step.
func (w *Withdrawal) Submit(pin string) (*ledger.Result, error) {
	if err := validation.ValidatePIN("pin", pin); err != nil {
		return nil, err
	}

	ctx, err := w.beginSubmit(StepPIN)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.pin = pin
	req := ledger.WithdrawRequest{
		Amount:   w.amount,
		Method:   w.method,
		Provider: w.provider,
		Account:  w.account,
		PIN:      pin,
	}
	w.mu.Unlock()

	res, err := w.ledger.Withdraw(ctx, req)
	w.endSubmit(err == nil)
	return res, err
}

// Details returns what the wizard has collected so far, without the PIN.
func (w *Withdrawal) Details() (models.Method, string, string, int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.method, w.provider, w.account, w.amount
}
