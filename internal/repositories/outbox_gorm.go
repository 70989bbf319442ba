package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutbox keeps the journal in the pending_history table.
type GormOutbox struct {
	db *gorm.DB
}

func NewGormOutbox(db *gorm.DB) *GormOutbox {
	return &GormOutbox{db: db}
}

// Add inserts p, replacing any earlier entry with the same key.
func (o *GormOutbox) Add(ctx context.Context, p PendingHistory) error {
	err := o.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "kind", "source", "transaction_id", "occurred_at", "last_error", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("insert pending history: %w", err)
	}
	return nil
}

func (o *GormOutbox) Pending(ctx context.Context, userID int64) ([]PendingHistory, error) {
	var out []PendingHistory
	if err := o.pendingQuery(o.db.WithContext(ctx), userID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list pending history: %w", err)
	}
	return out, nil
}

func (o *GormOutbox) pendingQuery(db *gorm.DB, userID int64) *gorm.DB {
	return db.Model(&PendingHistory{}).Where("user_id = ?", userID).Order("occurred_at ASC")
}

func (o *GormOutbox) MarkAttempt(ctx context.Context, key string, cause error) error {
	updates := map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
	}
	if cause != nil {
		updates["last_error"] = cause.Error()
	}

	res := o.db.WithContext(ctx).Model(&PendingHistory{}).Where("key = ?", key).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("mark pending history attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

func (o *GormOutbox) Resolve(ctx context.Context, key string) error {
	res := o.db.WithContext(ctx).Where("key = ?", key).Delete(&PendingHistory{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrPendingNotFound
		}
		return fmt.Errorf("resolve pending history: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}
