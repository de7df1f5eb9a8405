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

func TestComputeStats(t *testing.T) {
	orders := []models.Order{
		{Status: domain.OrderStatusAwaitingPayment, FiatAmountNGN: decimal.NewFromInt(1000), FeeNGN: decimal.NewFromInt(10)},
		{Status: domain.OrderStatusUnderReview, FiatAmountNGN: decimal.NewFromInt(2000), FeeNGN: decimal.NewFromInt(20)},
		{Status: domain.OrderStatusPending, FiatAmountNGN: decimal.NewFromInt(500), FeeNGN: decimal.NewFromInt(5)},
		{Status: domain.OrderStatusCompleted, FiatAmountNGN: decimal.NewFromInt(4000), FeeNGN: decimal.NewFromInt(40)},
		{Status: domain.OrderStatusFailed, FiatAmountNGN: decimal.NewFromInt(300), FeeNGN: decimal.NewFromInt(3)},
		{Status: domain.OrderStatusCancelled, FiatAmountNGN: decimal.NewFromInt(700), FeeNGN: decimal.NewFromInt(7)},
	}

	stats := ComputeStats(orders, 3)

	assert.Equal(t, 6, stats.TotalOrders)
	assert.Equal(t, 3, stats.ActiveTransactions) // awaiting + pending + under_review
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.FailedOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.Equal(t, 3, stats.PendingKYC)

	// volume and revenue sum over every order regardless of status
	assert.True(t, stats.TotalVolumeNGN.Equal(decimal.NewFromInt(8500)))
	assert.True(t, stats.TotalRevenueNGN.Equal(decimal.NewFromInt(85)))

	assert.Equal(t, 1, stats.ByStatus[domain.OrderStatusPending])
	assert.Equal(t, 1, stats.ByStatus[domain.OrderStatusCompleted])
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, 0)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalVolumeNGN.IsZero())
	assert.True(t, stats.TotalRevenueNGN.IsZero())
	assert.NotNil(t, stats.ByStatus)
}

func TestStatsServiceTracksLifecycle(t *testing.T) {
	env := newTestEnv(t)
	userID := env.approvedUser()
	ctx := context.Background()

	first := env.buyBTC(t, userID)
	second := env.buyBTC(t, userID)

	stats, err := env.stats.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 2, stats.ActiveTransactions)

	_, err = env.orders.Resolve(ctx, first.ID, domain.OutcomeCompleted, "", "")
	require.NoError(t, err)
	_, err = env.orders.Cancel(ctx, second.ID, userID, "")
	require.NoError(t, err)

	stats, err = env.stats.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Zero(t, stats.ActiveTransactions)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	// cancelled volume still counts
	assert.True(t, stats.TotalVolumeNGN.Equal(decimal.RequireFromString("2170000")))
}
