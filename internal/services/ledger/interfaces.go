package ledger

import (
	"context"
	"time"

	"donasi/internal/api"
	"donasi/internal/models"
)

// Client is the part of the backend API the ledger uses.
type Client interface {
	UpdateBalance(ctx context.Context, userID int64, update api.BalanceUpdate, idempotencyKey string) (*models.User, error)
	CreateHistory(ctx context.Context, entry models.HistoryEntry, idempotencyKey string) (*models.HistoryEntry, error)
	ListHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
	CreateDonation(ctx context.Context, d api.NewDonation, idempotencyKey string) (*models.Donation, error)
}

type Session interface {
	RequireUser() (models.User, error)
	HandleError(err error) error
	SetBalance(balance int64)
	AdjustBalance(delta int64) int64
}

// Recipients receives the optimistic recipient patch after a donation.
type Recipients interface {
	ApplyDonation(ctx context.Context, recipientID, amount int64)
}

type MetricsCollector interface {
	RecordOperationDuration(op string, d time.Duration)
	RecordOperationResult(op, result string)
	RecordBalanceChange(userID, before, after int64)
	RecordError(op, kind string)
}
