package payment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"

	apperrors "donasi/internal/errors"
	"donasi/internal/logger"
)

type fiberTransport struct {
	app *fiber.App
}

// RoundTrip hands fiber a request it can serialise: a buffered body with a
// known length and no server-side RequestURI.
func (t fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	clone.RequestURI = ""

	resp, err := t.app.Test(clone, -1)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

// fakeStripe answers /v1/payment_intents with the given status or error.
func fakeStripe(t *testing.T, status string, declined bool) (*stripe.Backends, *url.Values) {
	t.Helper()
	seen := &url.Values{}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/v1/payment_intents", func(c *fiber.Ctx) error {
		form, err := url.ParseQuery(string(c.Body()))
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		*seen = form
		seen.Set("Idempotency-Key", c.Get("Idempotency-Key"))

		if declined {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": fiber.Map{
					"type":    "card_error",
					"code":    "card_declined",
					"message": "Your card was declined.",
				},
			})
		}
		return c.JSON(fiber.Map{
			"id":       "pi_test_123",
			"object":   "payment_intent",
			"status":   status,
			"currency": "idr",
		})
	})

	httpClient := &http.Client{Transport: fiberTransport{app: app}}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String("http://stripe.test"),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &stripe.Backends{API: backend, Connect: backend, Uploads: backend}, seen
}

func TestNewStripeGateway_WithoutKeyIsUnavailable(t *testing.T) {
	g := NewStripeGateway("", nil, logger.Nop())

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 1000, PaymentMethod: "pm_card_visa"})
	assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
}

func TestStripeGateway_Charge(t *testing.T) {
	backends, seen := fakeStripe(t, "succeeded", false)
	g := NewStripeGateway("sk_test_123", backends, logger.Nop())

	charge, err := g.Charge(context.Background(), ChargeRequest{
		UserID:         7,
		Amount:         50000,
		PaymentMethod:  "pm_card_visa",
		IdempotencyKey: "topup-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_test_123", charge.Reference)
	assert.Equal(t, "5000000", seen.Get("amount"))
	assert.Equal(t, "idr", seen.Get("currency"))
	assert.Equal(t, "true", seen.Get("confirm"))
	assert.Equal(t, "pm_card_visa", seen.Get("payment_method"))
	assert.Equal(t, "7", seen.Get("metadata[user_id]"))
	assert.Equal(t, "topup-1", seen.Get("Idempotency-Key"))
}

func TestStripeGateway_Declined(t *testing.T) {
	backends, _ := fakeStripe(t, "", true)
	g := NewStripeGateway("sk_test_123", backends, logger.Nop())

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 50000, PaymentMethod: "pm_card_chargeDeclined"})

	var biz *apperrors.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "Your card was declined.", biz.Message)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestStripeGateway_RequiresAction(t *testing.T) {
	backends, _ := fakeStripe(t, "requires_action", false)
	g := NewStripeGateway("sk_test_123", backends, logger.Nop())

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 50000, PaymentMethod: "pm_card_threeDSecure2Required"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestStripeGateway_ValidatesBeforeCalling(t *testing.T) {
	g := NewStripeGateway("sk_test_123", nil, logger.Nop())

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 0, PaymentMethod: "pm_card_visa"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = g.Charge(context.Background(), ChargeRequest{Amount: 10})
	assert.ErrorIs(t, err, apperrors.ErrMethodRequired)
}
