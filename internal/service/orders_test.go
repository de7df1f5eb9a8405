package service

import (
	"context"
	"testing"
	"time"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBuyOrder(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()

	order := env.buyBTC(t, userID)

	assert.Equal(t, domain.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, "BTC", order.Symbol)
	assert.True(t, order.CryptoAmount.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, order.FiatAmountNGN.Equal(decimal.RequireFromString("1085000")))
	assert.True(t, order.UnitPriceNGN.Equal(decimal.RequireFromString("108500000")))
	// 1% fee on the fiat leg
	assert.True(t, order.FeeNGN.Equal(decimal.RequireFromString("10850")))

	// buy orders snapshot the first active bank account
	require.NotNil(t, order.BankAccount)
	assert.Equal(t, "GTBank", order.BankAccount.BankName)
	assert.Nil(t, order.Wallet)
}

func TestCreateSellOrderSnapshotsWallet(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()

	order, err := env.orders.Create(context.Background(), CreateOrderRequest{
		UserID:      userID,
		Direction:   domain.DirectionSell,
		Symbol:      "USDT",
		Amount:      decimal.RequireFromString("250"),
		Network:     "Ethereum (ERC-20)",
		BankDetails: sellBankDetails(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusAwaitingCrypto, order.Status)
	require.NotNil(t, order.Wallet)
	assert.Equal(t, "0x8Ba1f109551bD432803012645Ac136ddd64DBA72", order.Wallet.Address)
	require.NotNil(t, order.BankDetails)
	assert.Nil(t, order.BankAccount)
}

func TestCreateWithQuoteFreezesPrice(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	quote, err := env.quotes.Issue(ctx, "BTC", domain.DirectionBuy)
	require.NoError(t, err)

	// admin doubles the price after the quote was shown
	coins, err := env.store.ListCoins(ctx)
	require.NoError(t, err)
	for i := range coins {
		if coins[i].Symbol == "BTC" {
			c := coins[i]
			c.PriceNGN = decimal.RequireFromString("217000000")
			require.NoError(t, env.catalog.UpsertCoin(ctx, &c))
		}
	}

	order, err := env.orders.Create(ctx, CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
		QuoteID:   quote.ID,
	})
	require.NoError(t, err)
	assert.True(t, order.UnitPriceNGN.Equal(decimal.RequireFromString("108500000")))
	assert.Equal(t, quote.ID, order.QuoteID)
}

func TestCreateWithExpiredQuote(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	quote, err := env.quotes.Issue(ctx, "BTC", domain.DirectionBuy)
	require.NoError(t, err)

	env.advance(61 * time.Second)

	_, err = env.orders.Create(ctx, CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
		QuoteID:   quote.ID,
	})
	require.ErrorIs(t, err, models.ErrQuoteExpired)
}

func TestAttachProofMovesToUnderReview(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	order := env.buyBTC(t, userID)

	env.advance(5 * time.Minute)
	updated, err := env.orders.AttachProof(context.Background(), order.ID, userID,
		"receipt.png", []byte("png-bytes"), "TRF/2025/0001")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusUnderReview, updated.Status)
	require.NotNil(t, updated.Proof)
	assert.Equal(t, "TRF/2025/0001", updated.Proof.Reference)
	assert.True(t, env.files.Has(updated.Proof.FileRef))
	assert.True(t, updated.UpdatedAt.After(order.UpdatedAt))
}

func TestAttachProofRequiresFileAndReference(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.AttachProof(ctx, order.ID, userID, "receipt.png", []byte("png-bytes"), "")
	require.ErrorIs(t, err, models.ErrIncompleteProof)

	_, err = env.orders.AttachProof(ctx, order.ID, userID, "", nil, "TRF/2025/0002")
	require.ErrorIs(t, err, models.ErrIncompleteProof)

	// both failures left the order untouched
	got, err := env.orders.Get(ctx, order.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, got.Status)
	assert.Nil(t, got.Proof)
}

func TestAttachProofTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.AttachProof(ctx, order.ID, userID, "receipt.png", []byte("png"), "TRF/1")
	require.NoError(t, err)

	// already under review
	_, err = env.orders.AttachProof(ctx, order.ID, userID, "receipt2.png", []byte("png"), "TRF/2")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestResolveCompleted(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.AttachProof(ctx, order.ID, userID, "receipt.png", []byte("png"), "TRF/1")
	require.NoError(t, err)

	env.advance(10 * time.Minute)
	resolved, err := env.orders.Resolve(ctx, order.ID, domain.OutcomeCompleted, "verified against bank feed", "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, resolved.Status)
	require.NotNil(t, resolved.CompletedAt)
	assert.False(t, resolved.CompletedAt.Before(resolved.CreatedAt))
	assert.Equal(t, "verified against bank feed", resolved.AdminNotes)
}

func TestResolveFailedRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.AttachProof(ctx, order.ID, userID, "receipt.png", []byte("png"), "TRF/1")
	require.NoError(t, err)

	_, err = env.orders.Resolve(ctx, order.ID, domain.OutcomeFailed, "", "")
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	resolved, err := env.orders.Resolve(ctx, order.ID, domain.OutcomeFailed, "", "amount mismatch")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, resolved.Status)
	assert.Equal(t, "amount mismatch", resolved.FailureReason)
	assert.Nil(t, resolved.CompletedAt)
}

func TestResolveDirectlyFromAwaiting(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()

	// admins may resolve without waiting for proof
	order := env.buyBTC(t, userID)
	resolved, err := env.orders.Resolve(context.Background(), order.ID, domain.OutcomeCompleted, "settled out of band", "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, resolved.Status)
}

func TestResolveTerminalOrderFails(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.Resolve(ctx, order.ID, domain.OutcomeCompleted, "", "")
	require.NoError(t, err)

	_, err = env.orders.Resolve(ctx, order.ID, domain.OutcomeFailed, "", "changed my mind")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestCancelIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	first, err := env.orders.Cancel(ctx, order.ID, userID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, first.Status)
	assert.Equal(t, "changed my mind", first.CancelReason)

	// second cancel is a no-op success and keeps the original reason
	second, err := env.orders.Cancel(ctx, order.ID, userID, "again")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, second.Status)
	assert.Equal(t, "changed my mind", second.CancelReason)
}

func TestCancelCompletedOrderFails(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.Resolve(ctx, order.ID, domain.OutcomeCompleted, "", "")
	require.NoError(t, err)

	_, err = env.orders.Cancel(ctx, order.ID, userID, "too late")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestCancelUnderReview(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.AttachProof(ctx, order.ID, userID, "receipt.png", []byte("png"), "TRF/1")
	require.NoError(t, err)

	cancelled, err := env.orders.Cancel(ctx, order.ID, userID, "support request")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
}

func TestGetEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.approvedUser()
	stranger := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, owner)

	_, err := env.orders.Get(ctx, order.ID, stranger)
	require.ErrorIs(t, err, models.ErrOrderNotFound)

	// uuid.Nil reads as admin
	got, err := env.orders.Get(ctx, order.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestExpireStale(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	stale := env.buyBTC(t, userID)
	env.advance(25 * time.Hour)
	fresh := env.buyBTC(t, userID)

	expired, err := env.orders.ExpireStale(ctx, 24*time.Hour, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := env.orders.Get(ctx, stale.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, "expired", got.CancelReason)

	got, err = env.orders.Get(ctx, fresh.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, got.Status)
}

func TestExpireStaleSkipsUnderReview(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)
	_, err := env.orders.AttachProof(ctx, order.ID, userID, "receipt.png", []byte("png"), "TRF/1")
	require.NoError(t, err)

	env.advance(48 * time.Hour)
	expired, err := env.orders.ExpireStale(ctx, 24*time.Hour, 50)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestCreateRejectsUnknownDirectionAndUnit(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	_, err := env.orders.Create(ctx, CreateOrderRequest{
		UserID:    userID,
		Direction: "swap",
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
	})
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = env.orders.Create(ctx, CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
		Unit:      "shares",
	})
	require.ErrorIs(t, err, models.ErrInvalidRequest)
}
