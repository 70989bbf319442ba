package ledger

import "donasi/internal/models"

// Operation names used in logs and metrics.
const (
	OpTopUp     = "topup"
	OpWithdraw  = "withdraw"
	OpDonate    = "donate"
	OpReconcile = "reconcile"
)

// TopUpRequest adds Amount to the balance. Bank and e-wallet top-ups name a
// Provider; card top-ups name a Card payment method reference.
type TopUpRequest struct {
	Amount   int64
	Method   models.Method
	Provider string
	Card     string
}

type WithdrawRequest struct {
	Amount   int64
	Method   models.Method
	Provider string
	Account  string
	PIN      string
}

type DonateRequest struct {
	RecipientID int64
	Amount      int64
	Message     string
}

// Result describes a completed balance action.
type Result struct {
	// Balance is the signed-in user's balance after the action.
	Balance int64
	// History is the entry the backend stored, nil when HistoryPending.
	History *models.HistoryEntry
	// HistoryPending is set when the balance changed but the history entry
	// is waiting in the outbox.
	HistoryPending bool
	// PaymentRef is the card processor's reference for card top-ups.
	PaymentRef string
	Donation   *models.Donation
	// Key is the idempotency key the action was sent with.
	Key string
}

type ReconcileReport struct {
	Resubmitted int
	Failed      int
	Remaining   int
}
