// Package account registers new users.
package account

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"donasi/internal/api"
	"donasi/internal/models"
	"donasi/internal/validation"
)

type Client interface {
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, error)
}

type Service struct {
	client Client
	logger zerolog.Logger
}

func NewService(client Client, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger.With().Str("component", "account").Logger(),
	}
}

// Register validates the sign-up form and creates the account. The caller
// signs in separately.
func (s *Service) Register(ctx context.Context, form validation.RegisterForm) (*models.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.ValidateRegister(form); err != nil {
		return nil, err
	}

	req := api.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	}
	if form.Avatar != nil {
		req.Avatar = &api.File{
			Filename:    form.Avatar.Filename,
			ContentType: form.Avatar.ContentType,
			Data:        form.Avatar.Data,
		}
	}

	user, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{Name: form.Name, Email: form.Email}
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("account registered")
	return user, nil
}
