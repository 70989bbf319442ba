package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"donasi/internal/models"
)

// ListUsers returns every user the backend exposes, the caller included.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.makeRequest(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// BalanceUpdate is the body of PUT /api/users/{id}. Balance is the new
// absolute balance, Amount the delta that produced it.
type BalanceUpdate struct {
	Balance    int64  `json:"saldo"`
	Amount     int64  `json:"amount"`
	PIN        string `json:"pin,omitempty"`
	Method     string `json:"method,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Account    string `json:"accountNumber,omitempty"`
	PaymentRef string `json:"paymentRef,omitempty"`
}

// UpdateBalance writes a new balance for userID. The returned user may be nil
// when the backend answers without a body.
func (c *Client) UpdateBalance(ctx context.Context, userID int64, update BalanceUpdate, idempotencyKey string) (*models.User, error) {
	var raw json.RawMessage
	endpoint := "/api/users/" + strconv.FormatInt(userID, 10)
	if err := c.makeRequest(ctx, http.MethodPut, endpoint, update, &raw, withIdempotencyKey(idempotencyKey)); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeEnvelope[models.User](raw, "user")
}

// ProfileUpdate is the multipart body of PUT /api/editProfile/{id}. Empty
// fields are not sent.
type ProfileUpdate struct {
	Name          string
	Avatar        *File
	ClearAvatar   bool
	CurrentPIN    string
	NewPIN        string
	ConfirmNewPIN string
}

// EditProfile submits a profile change and returns the updated user. The
// user is nil when the backend answers without a body.
func (c *Client) EditProfile(ctx context.Context, userID int64, update ProfileUpdate) (*models.User, error) {
	form := newMultipartForm()
	if update.Name != "" {
		form.field("name", update.Name)
	}
	if update.ClearAvatar {
		form.field("clearAvatar", "true")
	} else if err := form.file("avatar", update.Avatar); err != nil {
		return nil, err
	}
	if update.NewPIN != "" {
		form.field("currentPin", update.CurrentPIN)
		form.field("newPin", update.NewPIN)
		form.field("confirmNewPin", update.ConfirmNewPIN)
	}

	var raw json.RawMessage
	endpoint := fmt.Sprintf("/api/editProfile/%d", userID)
	if err := c.sendMultipart(ctx, http.MethodPut, endpoint, form, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeEnvelope[models.User](raw, "user")
}
