// Package session owns the signed-in identity: the current user, the
// short-lived access token and the loading flag. It refreshes the token
// through the backend's cookie endpoint and persists that cookie between
// runs. Services receive a *Manager explicitly; there is no global session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"donasi/internal/api"
	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/validation"
)

// State is where the manager is in its lifecycle.
type State int

const (
	// StateUnknown means a refresh is in flight or none has run yet.
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// AuthClient is the part of the backend client the manager drives.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	RefreshToken(ctx context.Context) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
	ClearCookies()
}

// Session is a point-in-time copy of the manager's state.
type Session struct {
	UserID            int64
	DisplayName       string
	Email             string
	AvatarRef         string
	Balance           int64
	Credential        string
	CredentialLoading bool
	ExpiresAt         time.Time
	State             State
}

type Manager struct {
	mu sync.RWMutex

	client AuthClient
	store  Store
	logger zerolog.Logger

	state      State
	loading    bool
	credential string
	expiresAt  time.Time
	user       *models.User

	// generation changes on every login, logout and invalidation so that a
	// slow refresh cannot overwrite a newer state.
	generation uint64
}

func NewManager(client AuthClient, store Store, logger zerolog.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{
		client:  client,
		store:   store,
		logger:  logger.With().Str("component", "session").Logger(),
		state:   StateUnknown,
		loading: true,
	}
}

// Start restores the persisted refresh cookie and runs the initial refresh.
func (m *Manager) Start(ctx context.Context) State {
	if err := m.Restore(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("could not restore saved session")
	}
	return m.Refresh(ctx)
}

// Restore loads the persisted cookies into the client. A missing or
// unreadable record is not fatal: the next refresh simply fails.
func (m *Manager) Restore(ctx context.Context) error {
	data, err := m.store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	m.client.SetCookies(rec.httpCookies())
	return nil
}

// Login stores the credential and user together.
func (m *Manager) Login(credential string, user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.setLocked(credential, user)
}

// SignIn validates the form, authenticates against the backend and starts a
// session. No request is sent when validation fails.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	if err := validation.ValidateLogin(validation.LoginForm{Email: email, Password: password}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
		return nil, err
	}

	m.Login(resp.AccessToken, *resp.User)
	m.persist(ctx)

	m.logger.Info().Int64("user_id", resp.User.ID).Msg("signed in")
	user := *resp.User
	return &user, nil
}

// Logout tells the backend to revoke the refresh token, then clears local
// state whatever the backend answered.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}

	m.clear(ctx, true)
	m.logger.Info().Msg("signed out")
}

// Refresh exchanges the refresh cookie for a new access token. It never
// fails: any error leaves the manager anonymous. The loading flag is always
// cleared on return.
func (m *Manager) Refresh(ctx context.Context) State {
	m.mu.Lock()
	m.loading = true
	m.state = StateUnknown
	gen := m.generation
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		if m.state == StateUnknown {
			m.state = StateAnonymous
		}
		m.mu.Unlock()
	}()

	resp, err := m.client.RefreshToken(ctx)

	m.mu.Lock()
	stale := gen != m.generation
	if !stale && err == nil {
		m.setLocked(resp.AccessToken, *resp.User)
	}
	m.mu.Unlock()
	if stale {
		m.logger.Debug().Msg("discarding refresh result, session changed meanwhile")
		return m.State()
	}

	if err == nil {
		m.persist(ctx)
		m.logger.Debug().Int64("user_id", resp.User.ID).Msg("session refreshed")
		return StateAuthenticated
	}

	var netErr *apperrors.NetworkError
	if errors.As(err, &netErr) {
		// The backend was unreachable; the saved cookie may still be good.
		m.logger.Warn().Err(err).Msg("refresh failed, backend unreachable")
		m.clear(ctx, false)
	} else {
		m.logger.Info().Err(err).Msg("refresh rejected")
		m.clear(ctx, true)
	}
	return StateAnonymous
}

// Invalidate drops the in-memory session after the backend rejected the
// credential.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.resetLocked()
}

// HandleError invalidates the session when err is a 401/403 and returns err
// unchanged.
func (m *Manager) HandleError(err error) error {
	if apperrors.IsAuth(err) {
		m.logger.Info().Err(err).Msg("credential rejected, clearing session")
		m.Invalidate()
	}
	return err
}

// AccessToken returns the current credential, or "" when signed out.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// ExpiresAt reports when the access token expires, read from its exp claim
// without verifying the signature. Zero when unknown.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiresAt
}

// User returns a copy of the signed-in user.
func (m *Manager) User() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// RequireUser is User for callers that must be signed in.
func (m *Manager) RequireUser() (models.User, error) {
	user, ok := m.User()
	if !ok || m.AccessToken() == "" {
		return models.User{}, apperrors.ErrNotAuthenticated
	}
	return user, nil
}

func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Session{
		Credential:        m.credential,
		CredentialLoading: m.loading,
		ExpiresAt:         m.expiresAt,
		State:             m.state,
	}
	if m.user != nil {
		s.UserID = m.user.ID
		s.DisplayName = m.user.Name
		s.Email = m.user.Email
		s.AvatarRef = m.user.Avatar
		s.Balance = m.user.Balance
	}
	return s
}

// SetBalance patches the local balance after a successful action.
func (m *Manager) SetBalance(balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user != nil {
		m.user.Balance = balance
	}
}

// AdjustBalance adds delta to the local balance and returns the result.
func (m *Manager) AdjustBalance(delta int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return 0
	}
	m.user.Balance += delta
	return m.user.Balance
}

// UpdateUser replaces the local profile, e.g. after a profile edit. It is
// ignored for a different user id.
func (m *Manager) UpdateUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user != nil && m.user.ID == user.ID {
		u := user
		m.user = &u
	}
}

func (m *Manager) setLocked(credential string, user models.User) {
	u := user
	m.user = &u
	m.credential = credential
	m.expiresAt = tokenExpiry(credential)
	m.state = StateAuthenticated
	m.loading = false
}

func (m *Manager) resetLocked() {
	m.user = nil
	m.credential = ""
	m.expiresAt = time.Time{}
	m.state = StateAnonymous
	m.loading = false
}

// clear resets local state. With forget set the refresh cookie is dropped
// from the client and from the store as well.
func (m *Manager) clear(ctx context.Context, forget bool) {
	m.mu.Lock()
	m.generation++
	m.resetLocked()
	m.mu.Unlock()

	if !forget {
		return
	}
	m.client.ClearCookies()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("could not clear saved session")
	}
}

func (m *Manager) persist(ctx context.Context) {
	rec := newRecord(m.client.Cookies())
	if len(rec.Cookies) == 0 {
		return
	}

	data, err := json.Marshal(rec)
	if err != nil {
		m.logger.Warn().Err(err).Msg("could not encode session")
		return
	}
	if err := m.store.Save(ctx, data); err != nil {
		m.logger.Warn().Err(err).Msg("could not save session")
	}
}

func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	var claims models.AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
