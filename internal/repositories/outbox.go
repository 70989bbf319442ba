// Package repositories provides the client's local persistence: the journal
// of history entries that could not be posted after their balance change
// went through, and the Redis cache.
package repositories

import (
	"context"
	"errors"
	"time"

	"donasi/internal/models"
)

var ErrPendingNotFound = errors.New("pending history entry not found")

// PendingHistory is a history entry whose POST failed after the balance
// update succeeded. Key is the idempotency key the entry was first sent
// with; resubmissions reuse it.
type PendingHistory struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	Key           string    `gorm:"uniqueIndex;size:64;not null" json:"key"`
	UserID        int64     `gorm:"index;not null" json:"userId"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Kind          string    `gorm:"size:16;not null" json:"kind"`
	Source        string    `gorm:"size:16;not null" json:"source"`
	TransactionID *string   `gorm:"size:64" json:"transactionId,omitempty"`
	OccurredAt    time.Time `gorm:"not null" json:"occurredAt"`
	LastError     string    `gorm:"type:text" json:"lastError,omitempty"`
	Attempts      int       `gorm:"not null;default:1" json:"attempts"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (PendingHistory) TableName() string {
	return "pending_history"
}

func NewPendingHistory(key string, entry models.HistoryEntry, cause error) PendingHistory {
	p := PendingHistory{
		Key:           key,
		UserID:        entry.UserID,
		Amount:        entry.Amount,
		Kind:          string(entry.Kind),
		Source:        string(entry.Source),
		TransactionID: entry.TransactionID,
		OccurredAt:    entry.Time,
		Attempts:      1,
	}
	if cause != nil {
		p.LastError = cause.Error()
	}
	return p
}

// Entry rebuilds the history entry to resubmit.
func (p PendingHistory) Entry() models.HistoryEntry {
	return models.HistoryEntry{
		UserID:        p.UserID,
		Amount:        p.Amount,
		Kind:          models.HistoryKind(p.Kind),
		Source:        models.HistorySource(p.Source),
		TransactionID: p.TransactionID,
		Time:          p.OccurredAt,
	}
}

// HistoryOutbox journals failed history writes until the user resubmits them.
type HistoryOutbox interface {
	Add(ctx context.Context, p PendingHistory) error
	Pending(ctx context.Context, userID int64) ([]PendingHistory, error)
	MarkAttempt(ctx context.Context, key string, cause error) error
	Resolve(ctx context.Context, key string) error
}
