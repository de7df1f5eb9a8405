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

func TestQuoteIssueAndRedeem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	quote, err := env.quotes.Issue(ctx, "ETH", domain.DirectionBuy)
	require.NoError(t, err)
	assert.Equal(t, "ETH", quote.Symbol)
	assert.True(t, quote.UnitPriceNGN.Equal(decimal.RequireFromString("5665000")))
	assert.Equal(t, 60*time.Second, quote.ExpiresAt.Sub(quote.CreatedAt))

	redeemed, err := env.quotes.Redeem(ctx, quote.ID, "eth", domain.DirectionBuy)
	require.NoError(t, err)
	assert.True(t, redeemed.UnitPriceNGN.Equal(quote.UnitPriceNGN))
}

func TestQuoteRedeemAfterTTL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	quote, err := env.quotes.Issue(ctx, "ETH", domain.DirectionBuy)
	require.NoError(t, err)

	env.advance(59 * time.Second)
	_, err = env.quotes.Redeem(ctx, quote.ID, "ETH", domain.DirectionBuy)
	require.NoError(t, err)

	env.advance(2 * time.Second)
	_, err = env.quotes.Redeem(ctx, quote.ID, "ETH", domain.DirectionBuy)
	require.ErrorIs(t, err, models.ErrQuoteExpired)
}

func TestQuoteRedeemMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	quote, err := env.quotes.Issue(ctx, "ETH", domain.DirectionBuy)
	require.NoError(t, err)

	_, err = env.quotes.Redeem(ctx, quote.ID, "BTC", domain.DirectionBuy)
	require.ErrorIs(t, err, models.ErrQuoteExpired)

	_, err = env.quotes.Redeem(ctx, quote.ID, "ETH", domain.DirectionSell)
	require.ErrorIs(t, err, models.ErrQuoteExpired)
}

func TestQuoteRedeemUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.quotes.Redeem(context.Background(), uuid.New(), "BTC", domain.DirectionBuy)
	require.ErrorIs(t, err, models.ErrQuoteExpired)
}

func TestQuoteIssueRespectsCatalogRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.quotes.Issue(ctx, "DOGE", domain.DirectionBuy)
	require.ErrorIs(t, err, models.ErrAssetNotFound)

	_, err = env.quotes.Issue(ctx, "SOL", domain.DirectionSell)
	require.ErrorIs(t, err, models.ErrDirectionDisabled)
}
