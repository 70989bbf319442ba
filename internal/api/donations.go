package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"donasi/internal/models"
)

// NewDonation is the body of POST /api/transaksi.
type NewDonation struct {
	SenderID    int64  `json:"pengirimId"`
	RecipientID int64  `json:"penerimaId"`
	Amount      int64  `json:"jumlahDonasi"`
	Message     string `json:"pesanDonasi"`
}

// CreateDonation moves Amount from sender to recipient. The backend updates
// both balances and writes both history entries.
func (c *Client) CreateDonation(ctx context.Context, d NewDonation, idempotencyKey string) (*models.Donation, error) {
	var raw json.RawMessage
	if err := c.makeRequest(ctx, http.MethodPost, "/api/transaksi", d, &raw, withIdempotencyKey(idempotencyKey)); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeEnvelope[models.Donation](raw, "transaksi")
}

func (c *Client) ListDonations(ctx context.Context) ([]models.Donation, error) {
	var donations []models.Donation
	if err := c.makeRequest(ctx, http.MethodGet, "/api/transaksi", nil, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

type donationMessage struct {
	Message string `json:"pesanDonasi"`
}

// UpdateDonationMessage replaces the message of a donation. Amount and
// parties cannot change.
func (c *Client) UpdateDonationMessage(ctx context.Context, id int64, message string) (*models.Donation, error) {
	var raw json.RawMessage
	if err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/api/transaksi/%d", id), donationMessage{Message: message}, &raw); err != nil {
		return nil, err
	}
	return decodeEnvelope[models.Donation](raw, "transaksi")
}

type messageResponse struct {
	Message string `json:"message"`
}

// DeleteDonation removes a donation record and returns the backend's
// confirmation text.
func (c *Client) DeleteDonation(ctx context.Context, id int64) (string, error) {
	var resp messageResponse
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/transaksi/%d", id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
