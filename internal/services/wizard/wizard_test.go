package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/services/ledger"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) result(args mock.Arguments) (*ledger.Result, error) {
	if r := args.Get(0); r != nil {
		return r.(*ledger.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) TopUp(ctx context.Context, req ledger.TopUpRequest) (*ledger.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockLedger) Withdraw(ctx context.Context, req ledger.WithdrawRequest) (*ledger.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockLedger) Donate(ctx context.Context, req ledger.DonateRequest) (*ledger.Result, error) {
	return m.result(m.Called(ctx, req))
}

type fixedUser struct {
	user models.User
	err  error
}

func (f fixedUser) RequireUser() (models.User, error) {
	return f.user, f.err
}

var ani = fixedUser{user: models.User{ID: 1, Name: "Ani", Balance: 100000}}

func TestAllowed(t *testing.T) {
	tests := []struct {
		kind     Kind
		from, to Step
		want     bool
	}{
		{KindTopUp, StepMethod, StepAmount, true},
		{KindTopUp, StepMethod, StepDone, false},
		{KindTopUp, StepAmount, StepDone, true},
		{KindTopUp, StepAmount, StepMethod, true},
		{KindDonation, StepDetails, StepDone, true},
		{KindDonation, StepDetails, StepMethod, false},
		{KindWithdrawal, StepMethod, StepDetails, true},
		{KindWithdrawal, StepDetails, StepDone, false},
		{KindWithdrawal, StepDetails, StepPIN, true},
		{KindWithdrawal, StepPIN, StepDetails, true},
		{KindWithdrawal, StepPIN, StepDone, true},
		{KindWithdrawal, StepPIN, StepClosed, true},
		{KindWithdrawal, StepClosed, StepClosed, false},
		{KindWithdrawal, StepDone, StepMethod, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+" "+tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.kind, tt.from, tt.to))
		})
	}
}

func TestTopUp_HappyPath(t *testing.T) {
	l := new(MockLedger)
	want := ledger.TopUpRequest{Amount: 50000, Method: models.MethodBank, Provider: "bca"}
	l.On("TopUp", mock.Anything, want).Return(&ledger.Result{Balance: 150000}, nil).Once()

	w := NewTopUp(context.Background(), l)
	assert.Equal(t, StepMethod, w.Step())

	require.NoError(t, w.ChooseMethod(models.MethodBank, "bca", ""))
	assert.Equal(t, StepAmount, w.Step())

	res, err := w.Submit("50000")
	require.NoError(t, err)
	assert.Equal(t, int64(150000), res.Balance)
	assert.Equal(t, StepDone, w.Step())
	l.AssertExpectations(t)

	_, err = w.Submit("50000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestTopUp_CardDropsProvider(t *testing.T) {
	l := new(MockLedger)
	want := ledger.TopUpRequest{Amount: 20000, Method: models.MethodCard, Card: "pm_card_visa"}
	l.On("TopUp", mock.Anything, want).Return(&ledger.Result{}, nil).Once()

	w := NewTopUp(context.Background(), l)
	require.NoError(t, w.ChooseMethod(models.MethodCard, "bca", " pm_card_visa "))
	_, err := w.Submit("20000")
	require.NoError(t, err)
	l.AssertExpectations(t)
}

func TestTopUp_MethodValidation(t *testing.T) {
	w := NewTopUp(context.Background(), new(MockLedger))

	assert.ErrorIs(t, w.ChooseMethod(models.MethodNone, "", ""), apperrors.ErrMethodRequired)
	assert.ErrorIs(t, w.ChooseMethod(models.MethodBank, "", ""), apperrors.ErrProviderRequired)
	assert.ErrorIs(t, w.ChooseMethod(models.MethodEWallet, "bca", ""), apperrors.ErrProviderRequired)
	assert.ErrorIs(t, w.ChooseMethod(models.MethodCard, "", ""), apperrors.ErrMethodRequired)
	assert.Equal(t, StepMethod, w.Step())
}

func TestTopUp_SubmitBeforeMethod(t *testing.T) {
	l := new(MockLedger)
	w := NewTopUp(context.Background(), l)

	_, err := w.Submit("1000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	l.AssertNotCalled(t, "TopUp", mock.Anything, mock.Anything)
}

func TestTopUp_BadAmountStaysOnStep(t *testing.T) {
	l := new(MockLedger)
	w := NewTopUp(context.Background(), l)
	require.NoError(t, w.ChooseMethod(models.MethodEWallet, "dana", ""))

	for _, text := range []string{"", "0", "-5", "12.5", "1.000", "abc"} {
		_, err := w.Submit(text)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount, text)
	}
	assert.Equal(t, StepAmount, w.Step())
	l.AssertNotCalled(t, "TopUp", mock.Anything, mock.Anything)
}

func TestTopUp_FailureStaysOnAmount(t *testing.T) {
	l := new(MockLedger)
	l.On("TopUp", mock.Anything, mock.Anything).Return(nil, &apperrors.NetworkError{Op: "PUT /api/users/1", Err: errors.New("boom")}).Once()

	w := NewTopUp(context.Background(), l)
	require.NoError(t, w.ChooseMethod(models.MethodBank, "bni", ""))
	_, err := w.Submit("1000")

	assert.Error(t, err)
	assert.Equal(t, StepAmount, w.Step())
}

func TestTopUp_Back(t *testing.T) {
	w := NewTopUp(context.Background(), new(MockLedger))

	assert.ErrorIs(t, w.Back(), apperrors.ErrInvalidTransition)

	require.NoError(t, w.ChooseMethod(models.MethodBank, "bca", ""))
	require.NoError(t, w.Back())
	assert.Equal(t, StepMethod, w.Step())

	method, provider := w.Method()
	assert.Equal(t, models.MethodBank, method)
	assert.Equal(t, "bca", provider)
}

func TestWithdrawal_HappyPath(t *testing.T) {
	l := new(MockLedger)
	want := ledger.WithdrawRequest{
		Amount:   40000,
		Method:   models.MethodBank,
		Provider: "mandiri",
		Account:  "1234567890",
		PIN:      "123456",
	}
	l.On("Withdraw", mock.Anything, want).Return(&ledger.Result{Balance: 60000}, nil).Once()

	w := NewWithdrawal(context.Background(), l, ani)
	require.NoError(t, w.ChooseMethod(models.MethodBank))
	assert.Equal(t, StepDetails, w.Step())
	require.NoError(t, w.SetDetails("mandiri", " 1234567890 ", "40000"))
	assert.Equal(t, StepPIN, w.Step())

	res, err := w.Submit("123456")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), res.Balance)
	assert.Equal(t, StepDone, w.Step())
	l.AssertExpectations(t)
}

func TestWithdrawal_CardNotAllowed(t *testing.T) {
	w := NewWithdrawal(context.Background(), new(MockLedger), ani)

	assert.ErrorIs(t, w.ChooseMethod(models.MethodCard), apperrors.ErrMethodRequired)
	assert.Equal(t, StepMethod, w.Step())
}

func TestWithdrawal_DetailsValidation(t *testing.T) {
	poor := fixedUser{user: models.User{ID: 1, Balance: 5000}}

	tests := []struct {
		name                      string
		provider, account, amount string
		want                      error
	}{
		{"over balance", "bca", "123", "10000", apperrors.ErrInsufficientBalance},
		{"bad amount", "bca", "123", "ten", apperrors.ErrInvalidAmount},
		{"provider of other method", "ovo", "123", "1000", apperrors.ErrProviderRequired},
		{"no account", "bca", "  ", "1000", apperrors.ErrAccountRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := new(MockLedger)
			w := NewWithdrawal(context.Background(), l, poor)
			require.NoError(t, w.ChooseMethod(models.MethodBank))

			err := w.SetDetails(tt.provider, tt.account, tt.amount)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, StepDetails, w.Step())
			l.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything)
		})
	}
}

func TestWithdrawal_BadPIN(t *testing.T) {
	l := new(MockLedger)
	w := NewWithdrawal(context.Background(), l, ani)
	require.NoError(t, w.ChooseMethod(models.MethodEWallet))
	require.NoError(t, w.SetDetails("gopay", "0812", "1000"))

	for _, pin := range []string{"", "12345", "1234567", "12a456", "١٢٣٤٥٦"} {
		_, err := w.Submit(pin)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPIN, pin)
	}
	assert.Equal(t, StepPIN, w.Step())
	l.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything)
}

func TestWithdrawal_BackClearsFields(t *testing.T) {
	w := NewWithdrawal(context.Background(), new(MockLedger), ani)
	require.NoError(t, w.ChooseMethod(models.MethodBank))
	require.NoError(t, w.SetDetails("bca", "123", "1000"))

	require.NoError(t, w.Back())
	assert.Equal(t, StepDetails, w.Step())
	method, provider, account, amount := w.Details()
	assert.Equal(t, models.MethodBank, method)
	assert.Equal(t, "bca", provider)
	assert.Equal(t, "123", account)
	assert.Equal(t, int64(1000), amount)

	require.NoError(t, w.Back())
	assert.Equal(t, StepMethod, w.Step())
	method, provider, account, amount = w.Details()
	assert.Equal(t, models.MethodBank, method)
	assert.Empty(t, provider)
	assert.Empty(t, account)
	assert.Zero(t, amount)

	assert.ErrorIs(t, w.Back(), apperrors.ErrInvalidTransition)
}

func TestClose_FromAnyStep(t *testing.T) {
	w := NewWithdrawal(context.Background(), new(MockLedger), ani)
	require.NoError(t, w.ChooseMethod(models.MethodBank))

	w.Close()
	assert.Equal(t, StepClosed, w.Step())
	assert.ErrorIs(t, w.SetDetails("bca", "123", "1000"), apperrors.ErrWizardClosed)
	assert.ErrorIs(t, w.Back(), apperrors.ErrWizardClosed)

	d := NewDonation(context.Background(), new(MockLedger), ani)
	d.Close()
	_, err := d.Submit(2, "1000", "")
	assert.ErrorIs(t, err, apperrors.ErrWizardClosed)
}

func TestSubmit_RejectsSecondWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	l := new(MockLedger)
	l.On("TopUp", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&ledger.Result{}, nil).Once()

	w := NewTopUp(context.Background(), l)
	require.NoError(t, w.ChooseMethod(models.MethodBank, "bca", ""))

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit("1000")
		done <- err
	}()
	<-started

	_, err := w.Submit("1000")
	assert.ErrorIs(t, err, apperrors.ErrSubmitInProgress)
	assert.ErrorIs(t, w.Back(), apperrors.ErrSubmitInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StepDone, w.Step())
	l.AssertNumberOfCalls(t, "TopUp", 1)
}

func TestClose_CancelsInFlightSubmit(t *testing.T) {
	started := make(chan struct{})
	l := new(MockLedger)
	l.On("Donate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled).Once()

	w := NewDonation(context.Background(), l, ani)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(2, "1000", "")
		done <- err
	}()
	<-started

	w.Close()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, StepClosed, w.Step())
}

func TestDonation_Validation(t *testing.T) {
	l := new(MockLedger)
	w := NewDonation(context.Background(), l, ani)

	_, err := w.Submit(2, "100001", "")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	_, err = w.Submit(1, "1000", "")
	assert.ErrorIs(t, err, apperrors.ErrSelfDonation)

	_, err = w.Submit(2, "1000", strings.Repeat("a", 101))
	assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)

	_, err = w.Submit(0, "x", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, err, apperrors.ErrRecipientRequired)

	_, err = w.Validate(2, "10.000", "")
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "amount", errs[0].Field)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	assert.Equal(t, StepDetails, w.Step())
	l.AssertNotCalled(t, "Donate", mock.Anything, mock.Anything)
}

func TestDonation_Success(t *testing.T) {
	l := new(MockLedger)
	want := ledger.DonateRequest{RecipientID: 2, Amount: 30000, Message: strings.Repeat("é", 100)}
	l.On("Donate", mock.Anything, want).Return(&ledger.Result{Balance: 70000}, nil).Once()

	w := NewDonation(context.Background(), l, ani)
	res, err := w.Submit(2, "30000", want.Message)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), res.Balance)
	assert.Equal(t, StepDone, w.Step())
}

func TestDonation_RequiresSession(t *testing.T) {
	w := NewDonation(context.Background(), new(MockLedger), fixedUser{err: apperrors.ErrNotAuthenticated})

	_, err := w.Submit(2, "1000", "")
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}
