package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donasi/internal/apitest"
	apperrors "donasi/internal/errors"
	"donasi/internal/logger"
	"donasi/internal/models"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, backend *apitest.Backend) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: apitest.BaseURL}, logger.Nop(), WithTransport(backend.Transport()))
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "/api"}, logger.Nop())
	assert.Error(t, err)
}

func TestLogin_StoresRefreshCookie(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "123456", 100000)
	c := newTestClient(t, backend)

	resp, err := c.Login(context.Background(), "ani@example.com", "rahasia")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, ani.ID, resp.User.ID)
	assert.Equal(t, int64(100000), resp.User.Balance)

	var names []string
	for _, ck := range c.Cookies() {
		names = append(names, ck.Name)
	}
	assert.Contains(t, names, RefreshCookieName)
}

func TestLogin_WrongPasswordIsBusinessError(t *testing.T) {
	backend := apitest.New()
	backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)

	_, err := c.Login(context.Background(), "ani@example.com", "salah")

	var biz *apperrors.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, http.StatusBadRequest, biz.Status)
	assert.Equal(t, "Invalid email or password", biz.Message)
}

func TestRefreshToken_UsesCookieAndLogoutClearsIt(t *testing.T) {
	backend := apitest.New()
	backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)
	ctx := context.Background()

	_, err := c.Login(ctx, "ani@example.com", "rahasia")
	require.NoError(t, err)

	refreshed, err := c.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ani", refreshed.User.Name)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Cookies())

	_, err = c.RefreshToken(ctx)
	assert.True(t, apperrors.IsAuth(err))
}

func TestRefreshToken_RestoredCookie(t *testing.T) {
	backend := apitest.New()
	backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	ctx := context.Background()

	first := newTestClient(t, backend)
	_, err := first.Login(ctx, "ani@example.com", "rahasia")
	require.NoError(t, err)

	second := newTestClient(t, backend)
	second.SetCookies(first.Cookies())

	resp, err := second.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ani@example.com", resp.User.Email)

	second.ClearCookies()
	assert.Empty(t, second.Cookies())
}

func TestRequests_CarryBearerAndRequestID(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)
	token := backend.AccessToken(ani.ID)
	c.SetTokenSource(staticToken(token))

	_, err := c.ListUsers(context.Background())
	require.NoError(t, err)

	call, ok := backend.LastCall(http.MethodGet, "/api/users")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+token, call.Header.Get("Authorization"))
	_, err = uuid.Parse(call.Header.Get(HeaderRequestID))
	assert.NoError(t, err)
}

func TestListUsers_WithoutTokenIsAuthError(t *testing.T) {
	backend := apitest.New()
	c := newTestClient(t, backend)

	_, err := c.ListUsers(context.Background())

	var auth *apperrors.AuthError
	require.True(t, errors.As(err, &auth))
	assert.Equal(t, http.StatusUnauthorized, auth.Status)
}

func TestExpiredToken_IsForbidden(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.ExpiredAccessToken(ani.ID)))

	_, err := c.ListHistory(context.Background(), ani.ID)

	var auth *apperrors.AuthError
	require.True(t, errors.As(err, &auth))
	assert.True(t, auth.Forbidden())
}

func TestUpdateBalance_SendsIdempotencyKey(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "123456", 10000)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))

	user, err := c.UpdateBalance(context.Background(), ani.ID, BalanceUpdate{Balance: 60000, Amount: 50000}, "key-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(60000), user.Balance)
	assert.Equal(t, int64(60000), backend.Balance(ani.ID))

	call, _ := backend.LastCall(http.MethodPut, "/api/users/1")
	assert.Equal(t, "key-1", call.Header.Get(HeaderIdempotencyKey))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(call.Body, &body))
	assert.Equal(t, float64(60000), body["saldo"])
	assert.Equal(t, float64(50000), body["amount"])
	assert.NotContains(t, body, "pin")
}

func TestUpdateBalance_WrongPIN(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "123456", 10000)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))

	_, err := c.UpdateBalance(context.Background(), ani.ID, BalanceUpdate{Balance: 5000, Amount: 5000, PIN: "000000"}, "")

	var biz *apperrors.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "Incorrect PIN", biz.Message)
	assert.Equal(t, int64(10000), backend.Balance(ani.ID))
}

func TestNetworkFailure(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))
	backend.FailNetwork(http.MethodGet, "/api/users")

	_, err := c.ListUsers(context.Background())

	var netErr *apperrors.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, apitest.ErrConnectionDropped)
}

func TestHistory_CreateAndList(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))
	ctx := context.Background()

	created, err := c.CreateHistory(ctx, models.HistoryEntry{
		UserID: ani.ID,
		Amount: 50000,
		Kind:   models.KindIncome,
		Source: models.SourceTopUp,
	}, "")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	entries, err := c.ListHistory(ctx, ani.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SourceTopUp, entries[0].Source)
}

func TestDonations_Lifecycle(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "", 100000)
	budi := backend.AddUser("Budi", "budi@example.com", "rahasia", "", 0)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))
	ctx := context.Background()

	d, err := c.CreateDonation(ctx, NewDonation{SenderID: ani.ID, RecipientID: budi.ID, Amount: 30000, Message: "semangat"}, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), d.Amount)
	assert.Equal(t, int64(70000), backend.Balance(ani.ID))
	assert.Equal(t, int64(30000), backend.Balance(budi.ID))

	list, err := c.ListDonations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Recipient)
	assert.Equal(t, "Budi", list[0].Recipient.Name)

	updated, err := c.UpdateDonationMessage(ctx, d.ID, "tetap semangat")
	require.NoError(t, err)
	assert.Equal(t, "tetap semangat", updated.Message)

	msg, err := c.DeleteDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.Empty(t, backend.Donations())
}

func TestRegister_Multipart(t *testing.T) {
	backend := apitest.New()
	c := newTestClient(t, backend)

	user, err := c.Register(context.Background(), RegisterRequest{
		Name:     "Citra",
		Email:    "citra@example.com",
		Password: "rahasia",
		Avatar:   &File{Filename: "me.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")},
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Citra", user.Name)
	assert.NotEmpty(t, user.Avatar)

	_, err = c.Register(context.Background(), RegisterRequest{Name: "Citra", Email: "citra@example.com", Password: "rahasia"})
	var biz *apperrors.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, http.StatusConflict, biz.Status)
	assert.Equal(t, "Email already registered", biz.Message)
}

func TestEditProfile(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "123456", 0)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))
	ctx := context.Background()

	_, err := c.EditProfile(ctx, ani.ID, ProfileUpdate{CurrentPIN: "000000", NewPIN: "654321", ConfirmNewPIN: "654321"})
	var biz *apperrors.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "Incorrect current PIN", biz.Message)

	user, err := c.EditProfile(ctx, ani.ID, ProfileUpdate{Name: "Ani S", CurrentPIN: "123456", NewPIN: "654321", ConfirmNewPIN: "654321"})
	require.NoError(t, err)
	assert.Equal(t, "Ani S", user.Name)
	assert.True(t, backend.PINMatches(ani.ID, "654321"))
}

func TestEditProfile_EmptyBodyIsAccepted(t *testing.T) {
	backend := apitest.New()
	ani := backend.AddUser("Ani", "ani@example.com", "rahasia", "123456", 0)
	c := newTestClient(t, backend)
	c.SetTokenSource(staticToken(backend.AccessToken(ani.ID)))
	backend.SilenceNext(http.MethodPut, "/api/editProfile/"+strconv.FormatInt(ani.ID, 10))

	user, err := c.EditProfile(context.Background(), ani.ID, ProfileUpdate{Name: "Ani S"})
	require.NoError(t, err)
	assert.Nil(t, user)

	stored, _ := backend.User(ani.ID)
	assert.Equal(t, "Ani S", stored.Name)
}

func TestDecodeEnvelope(t *testing.T) {
	wrapped, err := decodeEnvelope[models.User](json.RawMessage(`{"message":"ok","user":{"id":3,"name":"Ani"}}`), "user")
	require.NoError(t, err)
	assert.Equal(t, int64(3), wrapped.ID)

	bare, err := decodeEnvelope[models.User](json.RawMessage(`{"id":4,"name":"Budi"}`), "user")
	require.NoError(t, err)
	assert.Equal(t, "Budi", bare.Name)
}

func TestDecodeError(t *testing.T) {
	err := decodeError(http.StatusBadRequest, []byte(`{"message":"Saldo tidak mencukupi"}`))
	assert.Equal(t, "Saldo tidak mencukupi", err.Error())

	err = decodeError(http.StatusInternalServerError, []byte(`not json`))
	assert.Equal(t, "Internal Server Error", err.Error())

	err = decodeError(http.StatusForbidden, []byte(`{"error":"expired"}`))
	assert.True(t, apperrors.IsAuth(err))
}
