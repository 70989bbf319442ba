package api

import (
	"context"
	"fmt"
	"net/http"

	"donasi/internal/models"
)

// CreateHistory records a ledger entry. It is a separate request from the
// balance update it describes.
func (c *Client) CreateHistory(ctx context.Context, entry models.HistoryEntry, idempotencyKey string) (*models.HistoryEntry, error) {
	var created models.HistoryEntry
	if err := c.makeRequest(ctx, http.MethodPost, "/api/history", entry, &created, withIdempotencyKey(idempotencyKey)); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListHistory(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/api/history/%d", userID), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
