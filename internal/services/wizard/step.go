// Package wizard drives the multi-step balance forms: top-up, donation and
// withdrawal. Steps only collect and validate input; the backend is called
// once, from the final step.
package wizard

import (
	"context"

	"donasi/internal/models"
	"donasi/internal/services/ledger"
)

type Step int

const (
	StepClosed Step = iota
	StepMethod
	StepAmount
	StepDetails
	StepPIN
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepClosed:
		return "closed"
	case StepMethod:
		return "method"
	case StepAmount:
		return "amount"
	case StepDetails:
		return "details"
	case StepPIN:
		return "pin"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Kind names a wizard.
type Kind string

const (
	KindTopUp      Kind = "topup"
	KindDonation   Kind = "donation"
	KindWithdrawal Kind = "withdrawal"
)

// transitions lists the steps reachable from each open step. Closing is
// allowed from every open step and is not listed.
var transitions = map[Kind]map[Step][]Step{
	KindTopUp: {
		StepMethod: {StepAmount},
		StepAmount: {StepMethod, StepDone},
	},
	KindDonation: {
		StepDetails: {StepDone},
	},
	KindWithdrawal: {
		StepMethod:  {StepDetails},
		StepDetails: {StepMethod, StepPIN},
		StepPIN:     {StepDetails, StepDone},
	},
}

var firstStep = map[Kind]Step{
	KindTopUp:      StepMethod,
	KindDonation:   StepDetails,
	KindWithdrawal: StepMethod,
}

// Allowed reports whether kind may move from one step to another.
func Allowed(kind Kind, from, to Step) bool {
	if to == StepClosed {
		return from != StepClosed
	}
	for _, s := range transitions[kind][from] {
		if s == to {
			return true
		}
	}
	return false
}

// Ledger submits the finished forms.
type Ledger interface {
	TopUp(ctx context.Context, req ledger.TopUpRequest) (*ledger.Result, error)
	Withdraw(ctx context.Context, req ledger.WithdrawRequest) (*ledger.Result, error)
	Donate(ctx context.Context, req ledger.DonateRequest) (*ledger.Result, error)
}

// Balances supplies the balance that withdrawals and donations are checked
// against before the final step.
type Balances interface {
	RequireUser() (models.User, error)
}
