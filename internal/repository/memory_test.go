package repository

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

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, Seed(context.Background(), store))
	return store
}

func TestUpsertCoinPreservesIdentity(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	coins, err := store.ListCoins(ctx)
	require.NoError(t, err)
	var btc models.Coin
	for _, c := range coins {
		if c.Symbol == "BTC" {
			btc = c
		}
	}
	require.NotEqual(t, uuid.Nil, btc.ID)

	update := models.Coin{Symbol: "btc", Name: "Bitcoin", Status: domain.CoinStatusActive,
		PriceNGN: decimal.RequireFromString("110000000")}
	require.NoError(t, store.UpsertCoin(ctx, &update))

	// symbol match is case-insensitive and the original id and created_at survive
	assert.Equal(t, btc.ID, update.ID)
	assert.Equal(t, btc.CreatedAt, update.CreatedAt)

	coins, err = store.ListCoins(ctx)
	require.NoError(t, err)
	assert.Len(t, coins, 6)
}

func TestListCoinsKeepsInsertionOrder(t *testing.T) {
	store := seededStore(t)

	coins, err := store.ListCoins(context.Background())
	require.NoError(t, err)
	symbols := make([]string, len(coins))
	for i, c := range coins {
		symbols[i] = c.Symbol
	}
	assert.Equal(t, []string{"BTC", "ETH", "USDT", "BNB", "SOL", "DOGE"}, symbols)
}

func TestWalletSeqOrdering(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	wallets, err := store.ListWalletsBySymbol(ctx, "usdt")
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "Ethereum (ERC-20)", wallets[0].Network)
	assert.Equal(t, "Tron (TRC-20)", wallets[1].Network)
	assert.Less(t, wallets[0].Seq, wallets[1].Seq)

	// updating an existing wallet keeps its sequence slot
	updated := wallets[0]
	updated.IsActive = false
	require.NoError(t, store.UpsertWallet(ctx, &updated))

	wallets, err = store.ListWalletsBySymbol(ctx, "USDT")
	require.NoError(t, err)
	assert.Equal(t, updated.Seq, wallets[0].Seq)
	assert.False(t, wallets[0].IsActive)
}

func TestDeleteWallet(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	wallets, err := store.ListWalletsBySymbol(ctx, "BTC")
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	require.NoError(t, store.DeleteWallet(ctx, wallets[0].ID))
	require.ErrorIs(t, store.DeleteWallet(ctx, wallets[0].ID), models.ErrNotFound)

	wallets, err = store.ListWalletsBySymbol(ctx, "BTC")
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestDeleteAssetUnknownSymbol(t *testing.T) {
	store := seededStore(t)
	err := store.DeleteAsset(context.Background(), "XRP")
	require.ErrorIs(t, err, models.ErrAssetNotFound)
}

func insertOrder(t *testing.T, store *MemoryStore, userID uuid.UUID, symbol, status string, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		UserID:    userID,
		Symbol:    symbol,
		Direction: domain.DirectionBuy,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, store.Insert(context.Background(), &order))
	return order
}

func TestListOrdersNewestFirstWithFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	alice := uuid.New()
	bob := uuid.New()
	oldest := insertOrder(t, store, alice, "BTC", domain.OrderStatusAwaitingPayment, base)
	middle := insertOrder(t, store, bob, "ETH", domain.OrderStatusCompleted, base.Add(time.Minute))
	newest := insertOrder(t, store, alice, "btc", domain.OrderStatusCancelled, base.Add(2*time.Minute))

	all, err := store.List(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID)
	assert.Equal(t, middle.ID, all[1].ID)
	assert.Equal(t, oldest.ID, all[2].ID)

	mine, err := store.List(ctx, OrderFilter{UserID: &alice})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// symbol filter ignores case
	btc, err := store.List(ctx, OrderFilter{Symbol: "BTC"})
	require.NoError(t, err)
	assert.Len(t, btc, 2)

	done, err := store.List(ctx, OrderFilter{Status: domain.OrderStatusCompleted})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, middle.ID, done[0].ID)
}

func TestCountOpenBySymbol(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	insertOrder(t, store, userID, "BTC", domain.OrderStatusAwaitingPayment, base)
	insertOrder(t, store, userID, "btc", domain.OrderStatusUnderReview, base)
	insertOrder(t, store, userID, "BTC", domain.OrderStatusCompleted, base)
	insertOrder(t, store, userID, "ETH", domain.OrderStatusAwaitingCrypto, base)

	count, err := store.CountOpenBySymbol(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListAwaitingBefore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	stale1 := insertOrder(t, store, userID, "BTC", domain.OrderStatusAwaitingPayment, base.Add(-48*time.Hour))
	stale2 := insertOrder(t, store, userID, "ETH", domain.OrderStatusAwaitingCrypto, base.Add(-30*time.Hour))
	// legacy rows still carry the pending status
	stale3 := insertOrder(t, store, userID, "USDT", domain.OrderStatusPending, base.Add(-25*time.Hour))
	insertOrder(t, store, userID, "BTC", domain.OrderStatusAwaitingPayment, base.Add(-time.Hour))
	insertOrder(t, store, userID, "BTC", domain.OrderStatusUnderReview, base.Add(-48*time.Hour))

	cutoff := base.Add(-24 * time.Hour)
	out, err := store.ListAwaitingBefore(ctx, cutoff, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	// oldest first
	assert.Equal(t, stale1.ID, out[0].ID)
	assert.Equal(t, stale2.ID, out[1].ID)
	assert.Equal(t, stale3.ID, out[2].ID)

	limited, err := store.ListAwaitingBefore(ctx, cutoff, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, stale1.ID, limited[0].ID)
}

func TestUpdateUnknownOrder(t *testing.T) {
	store := NewMemoryStore()
	order := models.Order{ID: uuid.New()}
	require.ErrorIs(t, store.Update(context.Background(), &order), models.ErrOrderNotFound)

	_, err := store.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, models.ErrOrderNotFound)
}
