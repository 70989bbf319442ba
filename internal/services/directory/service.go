// Package directory keeps the list of other users a donation can go to.
// Balances shown here are patched optimistically after a donation and
// carry the unconfirmed delta in Pending until Reconcile refetches them.
package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/repositories/cache"
)

type Client interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

type Session interface {
	RequireUser() (models.User, error)
	HandleError(err error) error
}

// Entry is a recipient as shown to the user.
type Entry struct {
	models.User
	Pending int64 `json:"pending,omitempty"`
}

// Confirmed is the last balance the server reported.
func (e Entry) Confirmed() int64 {
	return e.Balance - e.Pending
}

type Service struct {
	client  Client
	session Session
	cache   cache.Cache
	ttl     time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	ownerID int64
	entries []Entry
}

// NewService builds the directory. A nil cache keeps entries in process only.
func NewService(client Client, session Session, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Service {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Service{
		client:  client,
		session: session,
		cache:   c,
		ttl:     ttl,
		logger:  logger.With().Str("component", "directory").Logger(),
	}
}

// List returns every user except the signed-in one, from cache when
// possible.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.ownerID == me.ID && s.entries != nil {
		out := copyEntries(s.entries)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	var cached []Entry
	found, err := s.cache.Get(ctx, cacheKey(me.ID), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Msg("directory cache read failed")
	}
	if found {
		s.store(ctx, me.ID, cached, false)
		return copyEntries(cached), nil
	}

	return s.Reconcile(ctx)
}

// Reconcile refetches the users from the backend, replacing every
// optimistic balance with the server's value.
func (s *Service) Reconcile(ctx context.Context) ([]Entry, error) {
	me, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}

	users, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, s.session.HandleError(err)
	}

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		if u.ID == me.ID {
			continue
		}
		entries = append(entries, Entry{User: u})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	s.store(ctx, me.ID, entries, true)
	return copyEntries(entries), nil
}

// Lookup finds a recipient by id.
func (s *Service) Lookup(ctx context.Context, id int64) (Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, apperrors.ErrRecipientNotFound
}

// ApplyDonation adds amount to the recipient's shown balance.
func (s *Service) ApplyDonation(ctx context.Context, recipientID, amount int64) {
	s.mu.Lock()
	var snapshot []Entry
	owner := s.ownerID
	for i := range s.entries {
		if s.entries[i].ID == recipientID {
			s.entries[i].Balance += amount
			s.entries[i].Pending += amount
			snapshot = copyEntries(s.entries)
			break
		}
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.writeCache(ctx, owner, snapshot)
	}
}

// Invalidate drops the cached list.
func (s *Service) Invalidate(ctx context.Context) {
	s.mu.Lock()
	owner := s.ownerID
	s.entries = nil
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, cacheKey(owner)); err != nil {
		s.logger.Warn().Err(err).Msg("directory cache delete failed")
	}
}

func (s *Service) store(ctx context.Context, owner int64, entries []Entry, persist bool) {
	s.mu.Lock()
	s.ownerID = owner
	s.entries = copyEntries(entries)
	s.mu.Unlock()

	if persist {
		s.writeCache(ctx, owner, entries)
	}
}

func (s *Service) writeCache(ctx context.Context, owner int64, entries []Entry) {
	if err := s.cache.SetWithTTL(ctx, cacheKey(owner), entries, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("directory cache write failed")
	}
}

func cacheKey(owner int64) string {
	return cache.GenerateKey("directory", "owner", owner)
}

func copyEntries(in []Entry) []Entry {
	return append([]Entry(nil), in...)
}
