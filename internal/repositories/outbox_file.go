package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileOutbox keeps the journal as a JSON document, rewritten on every change.
type FileOutbox struct {
	mu   sync.Mutex
	path string
}

func NewFileOutbox(path string) *FileOutbox {
	return &FileOutbox{path: path}
}

func (o *FileOutbox) Add(_ context.Context, p PendingHistory) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.read()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	entries[p.Key] = p
	return o.write(entries)
}

func (o *FileOutbox) Pending(_ context.Context, userID int64) ([]PendingHistory, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.read()
	if err != nil {
		return nil, err
	}
	return filterPending(entries, userID), nil
}

func (o *FileOutbox) MarkAttempt(_ context.Context, key string, cause error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.read()
	if err != nil {
		return err
	}
	p, ok := entries[key]
	if !ok {
		return ErrPendingNotFound
	}
	entries[key] = markAttempt(p, cause)
	return o.write(entries)
}

func (o *FileOutbox) Resolve(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return ErrPendingNotFound
	}
	delete(entries, key)
	return o.write(entries)
}

func (o *FileOutbox) read() (map[string]PendingHistory, error) {
	entries := make(map[string]PendingHistory)

	data, err := os.ReadFile(o.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read outbox: %w", err)
	}

	var list []PendingHistory
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse outbox %s: %w", o.path, err)
	}
	for _, p := range list {
		entries[p.Key] = p
	}
	return entries, nil
}

func (o *FileOutbox) write(entries map[string]PendingHistory) error {
	if len(entries) == 0 {
		if err := os.Remove(o.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove outbox: %w", err)
		}
		return nil
	}

	list := make([]PendingHistory, 0, len(entries))
	for _, p := range entries {
		list = append(list, p)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outbox: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(o.path), 0o700); err != nil {
		return fmt.Errorf("create outbox dir: %w", err)
	}
	tmp := o.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write outbox: %w", err)
	}
	if err := os.Rename(tmp, o.path); err != nil {
		return fmt.Errorf("replace outbox: %w", err)
	}
	return nil
}
