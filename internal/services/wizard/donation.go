package wizard

import (
	"context"

	"donasi/internal/services/ledger"
	"donasi/internal/validation"
)

// Donation is a single form: recipient, amount and an optional message.
type Donation struct {
	machine
	ledger   Ledger
	balances Balances
}

func NewDonation(ctx context.Context, l Ledger, balances Balances) *Donation {
	w := &Donation{ledger: l, balances: balances}
	w.init(ctx, KindDonation)
	return w
}

// Validate checks the form against the current balance without sending it.
func (w *Donation) Validate(recipientID int64, amountText, message string) (int64, error) {
	me, err := w.balances.RequireUser()
	if err != nil {
		return 0, err
	}

	in, err := validation.ParseDonation(amountText, validation.DonationInput{
		SenderID:    me.ID,
		RecipientID: recipientID,
		Balance:     me.Balance,
		Message:     message,
	})
	if err != nil {
		return 0, err
	}
	return in.Amount, nil
}

// Submit validates and sends the donation.
func (w *Donation) Submit(recipientID int64, amountText, message string) (*ledger.Result, error) {
	if err := w.ensureOpen(); err != nil {
		return nil, err
	}
	amount, err := w.Validate(recipientID, amountText, message)
	if err != nil {
		return nil, err
	}

	ctx, err := w.beginSubmit(StepDetails)
	if err != nil {
		return nil, err
	}
	res, err := w.ledger.Donate(ctx, ledger.DonateRequest{
		RecipientID: recipientID,
		Amount:      amount,
		Message:     message,
	})
	w.endSubmit(err == nil)
	return res, err
}

func (w *Donation) ensureOpen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checkLocked(StepDetails, StepDone)
}
