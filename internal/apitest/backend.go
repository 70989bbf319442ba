// Package apitest runs an in-memory donation backend on fiber and exposes it
// as an http.RoundTripper, so clients can be exercised without a network.
package apitest

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"donasi/internal/models"
)

// BaseURL is the address clients should be configured with.
const BaseURL = "http://donasi.test"

type account struct {
	user         models.User
	passwordHash []byte
	pinHash      []byte
}

// Call is one request seen by the backend.
type Call struct {
	Method  string
	Path    string
	Header  http.Header
	Body    []byte
	Dropped bool
}

type failure struct {
	status  int
	message string
}

type Backend struct {
	mu sync.Mutex

	app       *fiber.App
	secret    []byte
	accessTTL time.Duration

	accounts      map[int64]*account
	history       []models.HistoryEntry
	donations     []models.Donation
	refreshTokens map[string]int64

	nextUserID     int64
	nextHistoryID  int64
	nextDonationID int64

	failures map[string][]failure
	silent   map[string]int
	calls    []Call
}

type Option func(*Backend)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.accessTTL = ttl
	}
}

func New(opts ...Option) *Backend {
	b := &Backend{
		secret:        []byte("apitest-secret"),
		accessTTL:     15 * time.Minute,
		accounts:      make(map[int64]*account),
		refreshTokens: make(map[string]int64),
		failures:      make(map[string][]failure),
		silent:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	b.setupRoutes()
	return b
}

// App exposes the fiber app for tests that drive it directly.
func (b *Backend) App() *fiber.App {
	return b.app
}

// AddUser creates an account. An empty pin leaves the account without a PIN.
func (b *Backend) AddUser(name, email, password, pin string, balance int64) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.newAccount(name, email, password)
	acc.user.Balance = balance
	if pin != "" {
		acc.pinHash = mustHash(pin)
	}
	return acc.user
}

func (b *Backend) newAccount(name, email, password string) *account {
	b.nextUserID++
	acc := &account{
		user:         models.User{ID: b.nextUserID, Name: name, Email: email},
		passwordHash: mustHash(password),
	}
	b.accounts[acc.user.ID] = acc
	return acc
}

// User returns the stored profile of id.
func (b *Backend) User(id int64) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

func (b *Backend) Balance(id int64) int64 {
	u, _ := b.User(id)
	return u.Balance
}

// SetBalance changes a balance behind the client's back.
func (b *Backend) SetBalance(id int64, balance int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if acc, ok := b.accounts[id]; ok {
		acc.user.Balance = balance
	}
}

// PINMatches reports whether pin is the stored PIN of id.
func (b *Backend) PINMatches(id int64, pin string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	return ok && acc.pinHash != nil && bcrypt.CompareHashAndPassword(acc.pinHash, []byte(pin)) == nil
}

// History returns the entries recorded for userID.
func (b *Backend) History(userID int64) []models.HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.historyOf(userID)
}

func (b *Backend) historyOf(userID int64) []models.HistoryEntry {
	out := make([]models.HistoryEntry, 0)
	for _, h := range b.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out
}

func (b *Backend) Donations() []models.Donation {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]models.Donation(nil), b.donations...)
}

// AddDonation records a donation without moving balances.
func (b *Backend) AddDonation(senderID, recipientID, amount int64, message string) models.Donation {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextDonationID++
	d := models.Donation{
		ID:          b.nextDonationID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Amount:      amount,
		Message:     message,
		Time:        time.Now().UTC(),
	}
	b.donations = append(b.donations, d)
	return d
}

// FailNext makes the next request to method and path answer with status and
// message instead of being handled. A zero status drops the connection.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, message: message})
}

// SilenceNext lets the next request to method and path succeed but drops
// the response body, as some backend versions answer with an empty 200.
func (b *Backend) SilenceNext(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.silent[method+" "+path]++
}

func (b *Backend) takeSilence(method, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := method + " " + path
	if b.silent[key] == 0 {
		return false
	}
	b.silent[key]--
	return true
}

// FailNetwork makes the next request to method and path fail in transport.
func (b *Backend) FailNetwork(method, path string) {
	b.FailNext(method, path, 0, "")
}

func (b *Backend) takeFailure(method, path string) (failure, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := method + " " + path
	queue := b.failures[key]
	if len(queue) == 0 {
		return failure{}, false
	}
	f := queue[0]
	if len(queue) == 1 {
		delete(b.failures, key)
	} else {
		b.failures[key] = queue[1:]
	}
	return f, true
}

// ExpireRefreshTokens revokes every refresh token, as a server restart or
// logout-everywhere would.
func (b *Backend) ExpireRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refreshTokens = make(map[string]int64)
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Call(nil), b.calls...)
}

// CallCount counts requests to method and path.
func (b *Backend) CallCount(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// LastCall returns the most recent request to method and path.
func (b *Backend) LastCall(method, path string) (Call, bool) {
	calls := b.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == path {
			return calls[i], true
		}
	}
	return Call{}, false
}

func (b *Backend) record(c Call) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, c)
}

func mustHash(secret string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		panic("apitest: hash secret: " + err.Error())
	}
	return hash
}
