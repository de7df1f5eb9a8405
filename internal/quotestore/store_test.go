package quotestore

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

func TestMemoryStoreTTL(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return current })
	ctx := context.Background()

	quote := &models.Quote{
		ID:           uuid.New(),
		Symbol:       "BTC",
		Direction:    domain.DirectionBuy,
		UnitPriceNGN: decimal.RequireFromString("108500000"),
		CreatedAt:    current,
		ExpiresAt:    current.Add(60 * time.Second),
	}
	require.NoError(t, store.Put(ctx, quote, 60*time.Second))

	got, err := store.Get(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.Symbol, got.Symbol)
	assert.True(t, got.UnitPriceNGN.Equal(quote.UnitPriceNGN))

	// still live exactly at the deadline
	current = current.Add(60 * time.Second)
	_, err = store.Get(ctx, quote.ID)
	require.NoError(t, err)

	current = current.Add(time.Second)
	_, err = store.Get(ctx, quote.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// expired entries are dropped, a later Get stays not-found
	_, err = store.Get(ctx, quote.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesOnRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	quote := &models.Quote{ID: uuid.New(), Symbol: "ETH"}
	require.NoError(t, store.Put(ctx, quote, time.Minute))

	first, err := store.Get(ctx, quote.ID)
	require.NoError(t, err)
	first.Symbol = "mutated"

	second, err := store.Get(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "ETH", second.Symbol)
}
