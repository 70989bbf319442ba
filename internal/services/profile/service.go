// Package profile edits the signed-in user's name, avatar and PIN.
package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"donasi/internal/api"
	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/session"
	"donasi/internal/validation"
)

type Client interface {
	EditProfile(ctx context.Context, userID int64, update api.ProfileUpdate) (*models.User, error)
}

type Session interface {
	RequireUser() (models.User, error)
	UpdateUser(user models.User)
	Refresh(ctx context.Context) session.State
	HandleError(err error) error
}

type Service struct {
	client  Client
	session Session
	logger  zerolog.Logger
}

func NewService(client Client, session Session, logger zerolog.Logger) *Service {
	return &Service{
		client:  client,
		session: session,
		logger:  logger.With().Str("component", "profile").Logger(),
	}
}

// Validate checks the form without sending it.
func (s *Service) Validate(form validation.ProfileForm) error {
	if form.Empty() {
		return apperrors.ErrNothingToUpdate
	}
	return validation.ValidateProfile(form)
}

// Submit sends the edit as one multipart request and replaces the session
// user with the one the backend returns.
//
// A 403 means the access token expired while the form was open: the session
// is refreshed and ErrSessionExpired asks the user to submit again.
func (s *Service) Submit(ctx context.Context, form validation.ProfileForm) (*models.User, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(form); err != nil {
		return nil, err
	}

	update := api.ProfileUpdate{
		ClearAvatar:   form.ClearAvatar,
		CurrentPIN:    form.CurrentPIN,
		NewPIN:        form.NewPIN,
		ConfirmNewPIN: form.ConfirmNewPIN,
	}
	if form.Name != nil {
		update.Name = strings.TrimSpace(*form.Name)
	}
	if form.Avatar != nil {
		update.Avatar = &api.File{
			Filename:    form.Avatar.Filename,
			ContentType: form.Avatar.ContentType,
			Data:        form.Avatar.Data,
		}
	}

	user, err := s.client.EditProfile(ctx, me.ID, update)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	if user == nil {
		// Accepted without a body: keep what we know changed. A new avatar's
		// URL is only learnt on the next refresh.
		patched := me
		if form.Name != nil {
			patched.Name = update.Name
		}
		if update.ClearAvatar {
			patched.Avatar = ""
		}
		user = &patched
	}

	s.session.UpdateUser(*user)
	s.logger.Info().
		Int64("user_id", user.ID).
		Bool("pin_changed", update.NewPIN != "").
		Bool("avatar_changed", update.Avatar != nil || update.ClearAvatar).
		Msg("profile updated")
	return user, nil
}

func (s *Service) mapError(ctx context.Context, err error) error {
	var authErr *apperrors.AuthError
	if errors.As(err, &authErr) {
		if authErr.Forbidden() {
			state := s.session.Refresh(ctx)
			s.logger.Info().Str("state", state.String()).Msg("profile edit rejected, session refreshed")
			return apperrors.ErrSessionExpired
		}
		return s.session.HandleError(err)
	}

	var bizErr *apperrors.BusinessError
	if errors.As(err, &bizErr) && bizErr.Status == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(bizErr.Message), "incorrect current pin") {
		return &apperrors.BusinessError{
			Status:  bizErr.Status,
			Code:    apperrors.ErrIncorrectPIN.Code,
			Message: apperrors.ErrIncorrectPIN.Message,
		}
	}
	return err
}
