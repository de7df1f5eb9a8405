package service

import (
	"context"
	"testing"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveAssetsExcludesInactive(t *testing.T) {
	env := newTestEnv(t)

	assets, err := env.catalog.ListActiveAssets(context.Background())
	require.NoError(t, err)

	symbols := make(map[string]string, len(assets))
	for _, a := range assets {
		symbols[a.Symbol] = a.Kind
	}
	assert.Contains(t, symbols, "BTC")
	assert.Contains(t, symbols, "PEPE")
	assert.Equal(t, domain.KindCustomToken, symbols["PEPE"])
	// DOGE (inactive coin) and SHIB (inactive token) never surface
	assert.NotContains(t, symbols, "DOGE")
	assert.NotContains(t, symbols, "SHIB")
}

func TestGetAssetIncludesInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asset, err := env.catalog.GetAsset(ctx, "DOGE")
	require.NoError(t, err)
	assert.Equal(t, "DOGE", asset.Symbol)

	_, err = env.catalog.GetActiveAsset(ctx, "DOGE")
	require.ErrorIs(t, err, models.ErrAssetNotFound)
}

func TestDeleteAssetBlockedByOpenOrders(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	order := env.buyBTC(t, userID)

	err := env.catalog.DeleteAsset(ctx, "BTC")
	require.ErrorIs(t, err, models.ErrConflict)

	// once the order is terminal the delete goes through
	_, err = env.orders.Cancel(ctx, order.ID, userID, "")
	require.NoError(t, err)
	require.NoError(t, env.catalog.DeleteAsset(ctx, "BTC"))

	_, err = env.catalog.GetAsset(ctx, "BTC")
	require.ErrorIs(t, err, models.ErrAssetNotFound)
}

func TestUpsertCoinValidatesRange(t *testing.T) {
	env := newTestEnv(t)

	err := env.catalog.UpsertCoin(context.Background(), &models.Coin{
		Symbol:    "LTC",
		Name:      "Litecoin",
		Status:    domain.CoinStatusActive,
		MinAmount: decimal.RequireFromString("10"),
		MaxAmount: decimal.RequireFromString("1"),
	})
	require.ErrorIs(t, err, models.ErrAmountOutOfRange)
}

func TestUpsertRejectsMissingSymbol(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.catalog.UpsertCoin(ctx, &models.Coin{Name: "Nameless"})
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	err = env.catalog.UpsertToken(ctx, &models.CustomToken{Name: "Nameless"})
	require.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestListActiveBankAccounts(t *testing.T) {
	env := newTestEnv(t)

	accounts, err := env.catalog.ListActiveBankAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	for _, a := range accounts {
		assert.True(t, a.IsActive)
	}
	// seed order is preserved, GTBank first
	assert.Equal(t, "GTBank", accounts[0].BankName)
}

func TestCoinEnablementDefaults(t *testing.T) {
	coin := models.Coin{Symbol: "BTC", Status: domain.CoinStatusActive}
	asset := coin.Normalize()

	// nil flags default to enabled
	assert.True(t, asset.BuyEnabled)
	assert.True(t, asset.SellEnabled)

	off := false
	coin.SellEnabled = &off
	asset = coin.Normalize()
	assert.True(t, asset.BuyEnabled)
	assert.False(t, asset.SellEnabled)
}
