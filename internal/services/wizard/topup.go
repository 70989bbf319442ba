package wizard

import (
	"context"
	"strings"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/services/ledger"
	"donasi/internal/validation"
)

// TopUp collects a payment method, then an amount.
type TopUp struct {
	machine
	ledger Ledger

	method   models.Method
	provider string
	card     string
	amount   int64
}

func NewTopUp(ctx context.Context, l Ledger) *TopUp {
	w := &TopUp{ledger: l}
	w.init(ctx, KindTopUp)
	return w
}

// ChooseMethod picks bank or e-wallet with a provider, or card with a payment
// method reference, and moves to the amount step.
func (w *TopUp) ChooseMethod(method models.Method, provider, card string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(StepMethod, StepAmount); err != nil {
		return err
	}
	if err := validation.CheckMethod(method, models.MethodBank, models.MethodEWallet, models.MethodCard); err != nil {
		return err
	}
	if method == models.MethodCard {
		if strings.TrimSpace(card) == "" {
			return apperrors.Invalid("card", apperrors.ErrMethodRequired)
		}
		provider = ""
	} else {
		if err := validation.CheckProvider(method, provider); err != nil {
			return err
		}
		card = ""
	}

	w.method, w.provider, w.card = method, provider, strings.TrimSpace(card)
	w.step = StepAmount
	return nil
}

// Back returns to the method step and forgets the amount.
func (w *TopUp) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(StepAmount, StepMethod); err != nil {
		return err
	}
	w.amount = 0
	w.step = StepMethod
	return nil
}

// Submit parses the amount and sends the top-up. On failure the wizard stays
// on the amount step.
func (w *TopUp) Submit(amountText string) (*ledger.Result, error) {
	amount, err := validation.ParseAmount(amountText)
	if err != nil {
		return nil, err
	}

	ctx, err := w.beginSubmit(StepAmount)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.amount = amount
	req := ledger.TopUpRequest{
		Amount:   amount,
		Method:   w.method,
		Provider: w.provider,
		Card:     w.card,
	}
	w.mu.Unlock()

	res, err := w.ledger.TopUp(ctx, req)
	w.endSubmit(err == nil)
	return res, err
}

// Method returns the chosen method and provider.
func (w *TopUp) Method() (models.Method, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.method, w.provider
}
