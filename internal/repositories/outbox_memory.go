package repositories

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryOutbox struct {
	mu      sync.Mutex
	entries map[string]PendingHistory
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{entries: make(map[string]PendingHistory)}
}

func (o *MemoryOutbox) Add(_ context.Context, p PendingHistory) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	o.entries[p.Key] = p
	return nil
}

func (o *MemoryOutbox) Pending(_ context.Context, userID int64) ([]PendingHistory, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return filterPending(o.entries, userID), nil
}

func (o *MemoryOutbox) MarkAttempt(_ context.Context, key string, cause error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.entries[key]
	if !ok {
		return ErrPendingNotFound
	}
	o.entries[key] = markAttempt(p, cause)
	return nil
}

func (o *MemoryOutbox) Resolve(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[key]; !ok {
		return ErrPendingNotFound
	}
	delete(o.entries, key)
	return nil
}

func filterPending(entries map[string]PendingHistory, userID int64) []PendingHistory {
	out := make([]PendingHistory, 0)
	for _, p := range entries {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}

func markAttempt(p PendingHistory, cause error) PendingHistory {
	p.Attempts++
	p.UpdatedAt = time.Now().UTC()
	if cause != nil {
		p.LastError = cause.Error()
	}
	return p
}
