// Package payment charges cards for top-ups. Bank and e-wallet top-ups are
// settled by the backend and never pass through here.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	apperrors "donasi/internal/errors"
)

// ChargeRequest is a card charge of Amount whole Rupiah.
type ChargeRequest struct {
	UserID         int64
	Amount         int64
	PaymentMethod  string
	IdempotencyKey string
	Description    string
}

// Charge is a completed card payment.
type Charge struct {
	Reference string
	Status    string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// Unavailable is used when no card processor is configured.
type Unavailable struct{}

func (Unavailable) Charge(context.Context, ChargeRequest) (*Charge, error) {
	return nil, apperrors.ErrGatewayUnavailable
}

type StripeGateway struct {
	api    *client.API
	logger zerolog.Logger
}

// NewStripeGateway returns Unavailable when secretKey is empty.
func NewStripeGateway(secretKey string, backends *stripe.Backends, logger zerolog.Logger) Gateway {
	if secretKey == "" {
		return Unavailable{}
	}
	return &StripeGateway{
		api:    client.New(secretKey, backends),
		logger: logger.With().Str("component", "stripe").Logger(),
	}
}

// Charge creates and confirms a PaymentIntent in IDR. Stripe counts IDR in
// hundredths, so the whole-Rupiah amount is scaled by 100.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if req.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.PaymentMethod == "" {
		return nil, apperrors.Invalid("card", apperrors.ErrMethodRequired)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount * 100),
		Currency:           stripe.String(string(stripe.CurrencyIDR)),
		PaymentMethod:      stripe.String(req.PaymentMethod),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.AddMetadata("user_id", strconv.FormatInt(req.UserID, 10))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			g.logger.Info().Str("code", string(stripeErr.Code)).Msg("card charge declined")
			return nil, &apperrors.BusinessError{
				Status:  stripeErr.HTTPStatusCode,
				Code:    apperrors.ErrPaymentFailed.Code,
				Message: stripeErr.Msg,
			}
		}
		return nil, &apperrors.NetworkError{Op: "stripe charge", Err: err}
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		g.logger.Info().Str("payment_intent", pi.ID).Str("status", string(pi.Status)).Msg("card charge not completed")
		return nil, fmt.Errorf("payment intent %s is %s: %w", pi.ID, pi.Status, apperrors.ErrPaymentFailed)
	}

	g.logger.Info().Str("payment_intent", pi.ID).Int64("amount", req.Amount).Msg("card charged")
	return &Charge{Reference: pi.ID, Status: string(pi.Status)}, nil
}
