package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"donasi/internal/api"
	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/repositories"
	"donasi/internal/services/payment"
	"donasi/internal/validation"
)

type Service struct {
	client     Client
	session    Session
	outbox     repositories.HistoryOutbox
	gateway    payment.Gateway
	recipients Recipients
	metrics    MetricsCollector
	logger     zerolog.Logger
	now        func() time.Time
	newKey     func() string
}

// NewService wires the ledger. A nil outbox keeps pending history in memory,
// a nil gateway rejects card top-ups and nil recipients skips the directory
// patch after a donation.
func NewService(
	client Client,
	session Session,
	outbox repositories.HistoryOutbox,
	gateway payment.Gateway,
	recipients Recipients,
	metrics MetricsCollector,
	logger zerolog.Logger,
) *Service {
	if client == nil {
		panic("client is required")
	}
	if session == nil {
		panic("session is required")
	}
	if outbox == nil {
		outbox = repositories.NewMemoryOutbox()
	}
	if gateway == nil {
		gateway = payment.Unavailable{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &Service{
		client:     client,
		session:    session,
		outbox:     outbox,
		gateway:    gateway,
		recipients: recipients,
		metrics:    metrics,
		logger:     logger.With().Str("component", "ledger").Logger(),
		now:        time.Now,
		newKey:     uuid.NewString,
	}
}

// TopUp adds money to the balance. Card top-ups are charged first; nothing
// is written to the backend when the charge fails.
func (s *Service) TopUp(ctx context.Context, req TopUpRequest) (*Result, error) {
	defer s.track(OpTopUp, s.now())

	me, err := s.session.RequireUser()
	if err != nil {
		return nil, s.fail(OpTopUp, err)
	}
	if err := validation.ValidateTopUp(validation.TopUpInput{
		Amount:   req.Amount,
		Method:   req.Method,
		Provider: req.Provider,
		Card:     req.Card,
	}); err != nil {
		return nil, s.fail(OpTopUp, err)
	}

	key := s.newKey()
	update := api.BalanceUpdate{
		Method:   string(req.Method),
		Provider: req.Provider,
	}

	if req.Method == models.MethodCard {
		charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
			UserID:         me.ID,
			Amount:         req.Amount,
			PaymentMethod:  req.Card,
			IdempotencyKey: key,
			Description:    "donasi top-up",
		})
		if err != nil {
			return nil, s.fail(OpTopUp, err)
		}
		update.PaymentRef = charge.Reference
	}

	res, err := s.move(ctx, OpTopUp, key, me, movement{
		amount: req.Amount,
		kind:   models.KindIncome,
		source: models.SourceTopUp,
		update: update,
	})
	if err != nil {
		return nil, err
	}
	res.PaymentRef = update.PaymentRef
	return res, nil
}

// Withdraw moves money out of the balance. Validation runs against the
// locally known balance before anything is sent.
func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*Result, error) {
	defer s.track(OpWithdraw, s.now())

	me, err := s.session.RequireUser()
	if err != nil {
		return nil, s.fail(OpWithdraw, err)
	}
	if err := validation.ValidateWithdrawal(validation.WithdrawalInput{
		Amount:   req.Amount,
		Balance:  me.Balance,
		Method:   req.Method,
		Provider: req.Provider,
		Account:  req.Account,
		PIN:      req.PIN,
	}); err != nil {
		return nil, s.fail(OpWithdraw, err)
	}

	return s.move(ctx, OpWithdraw, s.newKey(), me, movement{
		amount: -req.Amount,
		kind:   models.KindExpense,
		source: models.SourceWithdrawal,
		update: api.BalanceUpdate{
			PIN:      req.PIN,
			Method:   string(req.Method),
			Provider: req.Provider,
			Account:  req.Account,
		},
	})
}

// Donate sends Amount to another user. The backend records the history of
// both sides.
func (s *Service) Donate(ctx context.Context, req DonateRequest) (*Result, error) {
	defer s.track(OpDonate, s.now())

	me, err := s.session.RequireUser()
	if err != nil {
		return nil, s.fail(OpDonate, err)
	}
	if err := validation.ValidateDonation(validation.DonationInput{
		SenderID:    me.ID,
		RecipientID: req.RecipientID,
		Amount:      req.Amount,
		Balance:     me.Balance,
		Message:     req.Message,
	}); err != nil {
		return nil, s.fail(OpDonate, err)
	}

	key := s.newKey()
	donation, err := s.client.CreateDonation(ctx, api.NewDonation{
		SenderID:    me.ID,
		RecipientID: req.RecipientID,
		Amount:      req.Amount,
		Message:     req.Message,
	}, key)
	if err != nil {
		return nil, s.fail(OpDonate, s.session.HandleError(err))
	}

	balance := s.session.AdjustBalance(-req.Amount)
	if s.recipients != nil {
		s.recipients.ApplyDonation(ctx, req.RecipientID, req.Amount)
	}

	s.metrics.RecordBalanceChange(me.ID, me.Balance, balance)
	s.metrics.RecordOperationResult(OpDonate, "completed")
	s.logger.Info().
		Str("key", key).
		Int64("user_id", me.ID).
		Int64("recipient_id", req.RecipientID).
		Int64("amount", req.Amount).
		Msg("donation sent")

	return &Result{Balance: balance, Donation: donation, Key: key}, nil
}

// ListHistory returns the signed-in user's history as stored by the backend.
func (s *Service) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}
	entries, err := s.client.ListHistory(ctx, me.ID)
	if err != nil {
		return nil, s.session.HandleError(err)
	}
	return entries, nil
}

// PendingHistory lists the signed-in user's journaled entries, oldest first.
func (s *Service) PendingHistory(ctx context.Context) ([]repositories.PendingHistory, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}
	return s.outbox.Pending(ctx, me.ID)
}

// ReconcileHistory re-posts every journaled entry once. An auth failure stops
// the run; other failures are recorded on the entry and the run continues.
func (s *Service) ReconcileHistory(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	pending, err := s.PendingHistory(ctx)
	if err != nil {
		return report, err
	}

	for i, p := range pending {
		if _, err := s.client.CreateHistory(ctx, p.Entry(), p.Key); err != nil {
			if apperrors.IsAuth(err) {
				report.Remaining = len(pending) - i
				return report, s.session.HandleError(err)
			}
			if markErr := s.outbox.MarkAttempt(ctx, p.Key, err); markErr != nil {
				s.logger.Warn().Err(markErr).Str("key", p.Key).Msg("could not record attempt")
			}
			s.logger.Warn().Err(err).Str("key", p.Key).Msg("history resubmission failed")
			s.metrics.RecordError(OpReconcile, errorKind(err))
			report.Failed++
			report.Remaining++
			continue
		}

		if err := s.outbox.Resolve(ctx, p.Key); err != nil && !errors.Is(err, repositories.ErrPendingNotFound) {
			s.logger.Warn().Err(err).Str("key", p.Key).Msg("could not resolve pending entry")
		}
		report.Resubmitted++
	}

	s.logger.Info().
		Int("resubmitted", report.Resubmitted).
		Int("failed", report.Failed).
		Msg("history reconciled")
	return report, nil
}

type movement struct {
	amount int64
	kind   models.HistoryKind
	source models.HistorySource
	update api.BalanceUpdate
}

// move writes the new balance, then the history entry.
func (s *Service) move(ctx context.Context, op, key string, me models.User, m movement) (*Result, error) {
	update := m.update
	update.Balance = me.Balance + m.amount
	update.Amount = abs(m.amount)

	user, err := s.client.UpdateBalance(ctx, me.ID, update, key)
	if err != nil {
		return nil, s.fail(op, s.session.HandleError(err))
	}

	balance := update.Balance
	if user != nil {
		balance = user.Balance
	}
	s.session.SetBalance(balance)
	s.metrics.RecordBalanceChange(me.ID, me.Balance, balance)

	res := &Result{Balance: balance, Key: key}
	entry := models.HistoryEntry{
		UserID: me.ID,
		Amount: abs(m.amount),
		Kind:   m.kind,
		Source: m.source,
		Time:   s.now().UTC(),
	}

	stored, err := s.client.CreateHistory(ctx, entry, key)
	if err != nil {
		s.session.HandleError(err)
		s.logger.Error().Err(err).
			Str("key", key).
			Str("op", op).
			Int64("user_id", me.ID).
			Msg("balance updated but history entry failed, journaling it")
		s.metrics.RecordError(op, "history")

		if addErr := s.outbox.Add(ctx, repositories.NewPendingHistory(key, entry, err)); addErr != nil {
			s.logger.Error().Err(addErr).Str("key", key).Msg("could not journal history entry")
		}
		res.HistoryPending = true
		s.metrics.RecordOperationResult(op, "history_pending")
		return res, nil
	}

	res.History = stored
	s.metrics.RecordOperationResult(op, "completed")
	s.logger.Info().
		Str("key", key).
		Str("op", op).
		Int64("user_id", me.ID).
		Int64("amount", m.amount).
		Int64("balance", balance).
		Msg("balance action completed")
	return res, nil
}

func (s *Service) track(op string, start time.Time) {
	s.metrics.RecordOperationDuration(op, s.now().Sub(start))
}

func (s *Service) fail(op string, err error) error {
	s.metrics.RecordError(op, errorKind(err))
	s.metrics.RecordOperationResult(op, "failed")
	return err
}

func errorKind(err error) string {
	var (
		authErr     *apperrors.AuthError
		businessErr *apperrors.BusinessError
		networkErr  *apperrors.NetworkError
	)
	switch {
	case apperrors.IsValidation(err):
		return "validation"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &businessErr):
		return "business"
	case errors.As(err, &networkErr):
		return "network"
	default:
		return "unknown"
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
