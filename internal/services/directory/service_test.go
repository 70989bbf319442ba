package directory

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donasi/internal/api"
	"donasi/internal/apitest"
	apperrors "donasi/internal/errors"
	"donasi/internal/logger"
	"donasi/internal/models"
	"donasi/internal/repositories/cache"
	"donasi/internal/session"
)

type fixture struct {
	backend *apitest.Backend
	session *session.Manager
	cache   *cache.MemoryCache
	service *Service
	ani     models.User
	budi    models.User
	citra   models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "123456", 100000)
	citra := backend.AddUser("Citra", "citra@example.com", "rahasia", "123456", 5000)
	budi := backend.AddUser("Budi", "budi@example.com", "rahasia", "123456", 20000)

	client, err := api.NewClient(api.Config{BaseURL: apitest.BaseURL}, logger.Nop(), api.WithTransport(backend.Transport()))
	require.NoError(t, err)
	manager := session.NewManager(client, nil, logger.Nop())
	client.SetTokenSource(manager)
	manager.Login(backend.AccessToken(ani.ID), ani)

	c := cache.NewMemoryCache()
	return &fixture{
		backend: backend,
		session: manager,
		cache:   c,
		service: NewService(client, manager, c, time.Minute, logger.Nop()),
		ani:     ani,
		budi:    budi,
		citra:   citra,
	}
}

func TestList_ExcludesSelfAndSortsByName(t *testing.T) {
	f := newFixture(t)

	entries, err := f.service.List(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "Budi", entries[0].Name)
	assert.Equal(t, "Citra", entries[1].Name)
	for _, e := range entries {
		assert.NotEqual(t, f.ani.ID, e.ID)
		assert.Zero(t, e.Pending)
	}
}

func TestList_ServedFromMemoryAfterFirstFetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx)
	require.NoError(t, err)
	_, err = f.service.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.backend.CallCount(http.MethodGet, "/api/users"))
}

func TestList_UsesSharedCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx)
	require.NoError(t, err)

	other := NewService(nil, f.session, f.cache, time.Minute, logger.Nop())
	entries, err := other.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, f.backend.CallCount(http.MethodGet, "/api/users"))
}

func TestList_RequiresSession(t *testing.T) {
	f := newFixture(t)
	f.session.Invalidate()

	_, err := f.service.List(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestApplyDonation_PatchesThenReconcileRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx)
	require.NoError(t, err)

	f.service.ApplyDonation(ctx, f.budi.ID, 30000)

	budi, err := f.service.Lookup(ctx, f.budi.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), budi.Balance)
	assert.Equal(t, int64(30000), budi.Pending)
	assert.Equal(t, int64(20000), budi.Confirmed())

	f.backend.SetBalance(f.budi.ID, 50000)
	entries, err := f.service.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(50000), entries[0].Balance)
	assert.Zero(t, entries[0].Pending)
}

func TestApplyDonation_UnknownRecipientIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx)
	require.NoError(t, err)

	f.service.ApplyDonation(ctx, 999, 1000)

	entries, err := f.service.List(ctx)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Zero(t, e.Pending)
	}
}

func TestLookup_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Lookup(context.Background(), f.ani.ID)
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx)
	require.NoError(t, err)
	f.service.Invalidate(ctx)
	_, err = f.service.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, f.backend.CallCount(http.MethodGet, "/api/users"))
}

func TestReconcile_AuthFailureClearsSession(t *testing.T) {
	f := newFixture(t)
	f.backend.FailNext(http.MethodGet, "/api/users", http.StatusForbidden, "Invalid token")

	_, err := f.service.Reconcile(context.Background())
	assert.True(t, apperrors.IsAuth(err))
	assert.Equal(t, session.StateAnonymous, f.session.State())
}
