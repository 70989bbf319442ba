// Package donation lists the donations a user sent or received and lets the
// sender edit the message or delete the record. Ownership is checked locally
// before any request; the backend checks it again.
package donation

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/validation"
)

type Client interface {
	ListDonations(ctx context.Context) ([]models.Donation, error)
	UpdateDonationMessage(ctx context.Context, id int64, message string) (*models.Donation, error)
	DeleteDonation(ctx context.Context, id int64) (string, error)
}

type Session interface {
	RequireUser() (models.User, error)
	HandleError(err error) error
}

type Service struct {
	client  Client
	session Session
	logger  zerolog.Logger

	mu    sync.Mutex
	known map[int64]models.Donation
}

func NewService(client Client, session Session, logger zerolog.Logger) *Service {
	return &Service{
		client:  client,
		session: session,
		logger:  logger.With().Str("component", "donation").Logger(),
		known:   make(map[int64]models.Donation),
	}
}

// List returns the donations the signed-in user sent or received, newest
// first as the backend orders them.
func (s *Service) List(ctx context.Context) ([]models.Donation, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}

	all, err := s.client.ListDonations(ctx)
	if err != nil {
		return nil, s.session.HandleError(err)
	}

	mine := make([]models.Donation, 0, len(all))
	known := make(map[int64]models.Donation, len(all))
	for _, d := range all {
		if d.Involves(me.ID) {
			mine = append(mine, d)
			known[d.ID] = d
		}
	}

	s.mu.Lock()
	s.known = known
	s.mu.Unlock()
	return mine, nil
}

// EditMessage replaces the message of a donation the user sent.
func (s *Service) EditMessage(ctx context.Context, id int64, message string) (*models.Donation, error) {
	if utf8.RuneCountInString(message) > validation.MaxDonationMessageLength {
		return nil, apperrors.Invalid("message", apperrors.ErrMessageTooLong)
	}
	if _, err := s.owned(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.client.UpdateDonationMessage(ctx, id, message)
	if err != nil {
		return nil, s.mapError(id, err)
	}

	s.mu.Lock()
	s.known[id] = *updated
	s.mu.Unlock()

	s.logger.Info().Int64("donation_id", id).Msg("donation message updated")
	return updated, nil
}

// Delete removes a donation the user sent and returns the backend's
// confirmation.
func (s *Service) Delete(ctx context.Context, id int64) (string, error) {
	if _, err := s.owned(ctx, id); err != nil {
		return "", err
	}

	msg, err := s.client.DeleteDonation(ctx, id)
	if err != nil {
		return "", s.mapError(id, err)
	}

	s.forget(id)
	s.logger.Info().Int64("donation_id", id).Msg("donation deleted")
	return msg, nil
}

// owned finds id among the user's donations, listing them first when it is
// not known yet, and checks that the user sent it.
func (s *Service) owned(ctx context.Context, id int64) (models.Donation, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return models.Donation{}, err
	}

	s.mu.Lock()
	d, ok := s.known[id]
	s.mu.Unlock()

	if !ok {
		if _, err := s.List(ctx); err != nil {
			return models.Donation{}, err
		}
		s.mu.Lock()
		d, ok = s.known[id]
		s.mu.Unlock()
	}

	if !ok {
		return models.Donation{}, apperrors.ErrDonationNotFound
	}
	if !d.SentBy(me.ID) {
		return models.Donation{}, apperrors.ErrNotSender
	}
	return d, nil
}

func (s *Service) mapError(id int64, err error) error {
	var bizErr *apperrors.BusinessError
	if errors.As(err, &bizErr) && bizErr.Status == http.StatusNotFound {
		s.forget(id)
		return &apperrors.BusinessError{
			Status:  bizErr.Status,
			Code:    apperrors.ErrDonationNotFound.Code,
			Message: bizErr.Message,
		}
	}
	return s.session.HandleError(err)
}

func (s *Service) forget(id int64) {
	s.mu.Lock()
	delete(s.known, id)
	s.mu.Unlock()
}
