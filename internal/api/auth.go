package api

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
)

// RefreshCookieName is the HTTP-only cookie the backend uses for the refresh
// token.
const RefreshCookieName = "refreshToken"

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
	Message     string       `json:"message,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token. The backend also sets the
// refresh cookie, which the client's jar keeps.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, &resp, anonymous()); err != nil {
		return nil, err
	}
	if err := resp.validate("login"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken asks for a new access token using the refresh cookie.
func (c *Client) RefreshToken(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/api/refreshToken", nil, &resp, anonymous()); err != nil {
		return nil, err
	}
	if err := resp.validate("refresh"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout asks the backend to revoke the refresh token and clear its cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.makeRequest(ctx, http.MethodPost, "/api/logout", nil, nil, anonymous())
}

// RegisterRequest is the multipart body of POST /api/register.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Avatar   *File
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	form := newMultipartForm()
	form.field("name", req.Name)
	form.field("email", req.Email)
	form.field("password", req.Password)
	if err := form.file("avatar", req.Avatar); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.sendMultipart(ctx, http.MethodPost, "/api/register", form, &raw, anonymous()); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeEnvelope[models.User](raw, "user")
}

func (r *AuthResponse) validate(op string) error {
	if r.AccessToken == "" || r.User == nil {
		return &apperrors.NetworkError{Op: op, Err: errMalformedAuth}
	}
	return nil
}
