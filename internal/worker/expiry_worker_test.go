package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/damilare/otc-exchange/internal/directory"
	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/filestore"
	"github.com/damilare/otc-exchange/internal/quotestore"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/damilare/otc-exchange/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newOrderService(t *testing.T, clock *testClock) (*service.OrderService, *repository.MemoryStore, uuid.UUID) {
	t.Helper()

	store := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(context.Background(), store))

	dir := directory.NewMockDirectory()
	userID := uuid.New()
	dir.SetStatus(userID, domain.KYCApproved)

	catalog := service.NewCatalogService(store, store)
	pricing := service.NewPricingService(catalog, nil)
	quotes := service.NewQuoteService(pricing, quotestore.NewMemoryStore().WithClock(clock.Now), time.Minute, clock.Now)
	wallets := service.NewWalletResolver(store)
	validator := service.NewValidator(catalog, wallets, dir)
	orders := service.NewOrderService(store, catalog, pricing, quotes, validator,
		filestore.NewMockStore(), decimal.NewFromInt(1), clock.Now)
	return orders, store, userID
}

func TestExpiryWorkerSweepOnce(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	orders, store, userID := newOrderService(t, clock)
	ctx := context.Background()

	stale, err := orders.Create(ctx, service.CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	fresh, err := orders.Create(ctx, service.CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "ETH",
		Amount:    decimal.RequireFromString("0.5"),
	})
	require.NoError(t, err)

	worker := NewExpiryWorker(orders).
		WithPollInterval(time.Minute).
		WithMaxAge(24 * time.Hour).
		WithBatchSize(10)

	expired, err := worker.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := store.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, "expired", got.CancelReason)

	got, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, got.Status)
}

func TestExpiryWorkerSweepOnceEmpty(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	orders, _, _ := newOrderService(t, clock)

	worker := NewExpiryWorker(orders)
	expired, err := worker.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestExpiryWorkerStartStop(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	orders, _, _ := newOrderService(t, clock)

	worker := NewExpiryWorker(orders).WithPollInterval(10 * time.Millisecond)
	stop := worker.Run(context.Background())

	time.Sleep(50 * time.Millisecond)
	stop()
}

func TestExpiryWorkerString(t *testing.T) {
	clock := &testClock{now: time.Now()}
	orders, _, _ := newOrderService(t, clock)

	worker := NewExpiryWorker(orders).WithMaxAge(time.Hour).WithBatchSize(5)
	assert.Contains(t, worker.String(), "batch=5")
}
