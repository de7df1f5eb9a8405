package service

import (
	"context"
	"errors"
	"testing"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsPendingKYC(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.dir.SetStatus(userID, domain.KYCPending)

	_, err := env.orders.Create(context.Background(), CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
	})
	require.ErrorIs(t, err, models.ErrKYCRequired)

	// KYC is the only failed check, so exactly one error accumulates
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 1)
}

func TestCreateAccumulatesAllFailures(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New() // unknown user: kyc not-submitted

	_, err := env.orders.Create(context.Background(), CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionSell,
		Symbol:    "USDT",
		Amount:    decimal.RequireFromString("1"), // below the 10 USDT minimum
		Network:   "Tron (TRC-20)",                // only an inactive wallet there
		// bank details missing entirely
	})
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 4)
	assert.ErrorIs(t, err, models.ErrKYCRequired)
	assert.ErrorIs(t, err, models.ErrAmountOutOfRange)
	assert.ErrorIs(t, err, models.ErrNoSettlementMethod)
	assert.ErrorIs(t, err, models.ErrMissingBankDetails)
}

func TestDisabledDirectionAccumulatesWithOtherFailures(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.dir.SetStatus(userID, domain.KYCPending)

	// SOL sells are paused in the seed; a live-rate order still reports the
	// disabled direction together with the KYC failure.
	_, err := env.orders.Create(context.Background(), CreateOrderRequest{
		UserID:      userID,
		Direction:   domain.DirectionSell,
		Symbol:      "SOL",
		Amount:      decimal.RequireFromString("5"),
		Network:     "Solana",
		BankDetails: sellBankDetails(),
	})
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.ErrorIs(t, err, models.ErrDirectionDisabled)
	assert.ErrorIs(t, err, models.ErrKYCRequired)
}

func TestSellOnNetworkWithoutActiveWallet(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()

	_, err := env.orders.Create(context.Background(), CreateOrderRequest{
		UserID:      userID,
		Direction:   domain.DirectionSell,
		Symbol:      "USDT",
		Amount:      decimal.RequireFromString("100"),
		Network:     "Tron (TRC-20)",
		BankDetails: sellBankDetails(),
	})
	require.ErrorIs(t, err, models.ErrNoSettlementMethod)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 1)
}

func TestAmountBoundariesAreInclusive(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	cases := []struct {
		name   string
		amount string
		ok     bool
	}{
		{name: "at_min", amount: "0.001", ok: true},
		{name: "at_max", amount: "10", ok: true},
		{name: "below_min", amount: "0.0009", ok: false},
		{name: "above_max", amount: "10.00000001", ok: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.orders.Create(ctx, CreateOrderRequest{
				UserID:    userID,
				Direction: domain.DirectionBuy,
				Symbol:    "BTC",
				Amount:    decimal.RequireFromString(tc.amount),
			})
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, models.ErrAmountOutOfRange)
		})
	}
}

func TestRangeLimitsApplyToConvertedFiatAmounts(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()

	// 500 NGN buys ~0.0000046 BTC, far below the 0.001 BTC minimum
	_, err := env.orders.Create(context.Background(), CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("500"),
		Unit:      domain.UnitFiat,
	})
	require.ErrorIs(t, err, models.ErrAmountOutOfRange)
}

func TestBuyRequiresActiveBankAccount(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	accounts, err := env.catalog.ListBankAccounts(ctx)
	require.NoError(t, err)
	for _, a := range accounts {
		a := a
		a.IsActive = false
		require.NoError(t, env.catalog.UpsertBankAccount(ctx, &a))
	}

	_, err = env.orders.Create(ctx, CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
	})
	require.ErrorIs(t, err, models.ErrNoSettlementMethod)
}

func TestValidationErrorsUnwrap(t *testing.T) {
	errs := models.ValidationErrors{models.ErrKYCRequired, models.ErrAmountOutOfRange}
	assert.True(t, errors.Is(errs, models.ErrKYCRequired))
	assert.True(t, errors.Is(errs, models.ErrAmountOutOfRange))
	assert.False(t, errors.Is(errs, models.ErrNoSettlementMethod))
}
