package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/damilare/otc-exchange/internal/directory"
	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/filestore"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/quotestore"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv wires the full service stack over the in-memory store with the
// seeded demo catalog and a controllable clock.
type testEnv struct {
	store   *repository.MemoryStore
	dir     *directory.MockDirectory
	files   *filestore.MockStore
	catalog *CatalogService
	pricing *PricingService
	quotes  *QuoteService
	wallets *WalletResolver
	orders  *OrderService
	stats   *StatsService

	mu  sync.Mutex
	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: repository.NewMemoryStore(),
		dir:   directory.NewMockDirectory(),
		files: filestore.NewMockStore(),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repository.Seed(context.Background(), env.store))

	clock := env.clock
	quoteStore := quotestore.NewMemoryStore().WithClock(clock)

	env.catalog = NewCatalogService(env.store, env.store)
	env.pricing = NewPricingService(env.catalog, nil)
	env.quotes = NewQuoteService(env.pricing, quoteStore, 60*time.Second, clock)
	env.wallets = NewWalletResolver(env.store)
	validator := NewValidator(env.catalog, env.wallets, env.dir)
	env.orders = NewOrderService(env.store, env.catalog, env.pricing, env.quotes, validator,
		env.files, decimal.NewFromInt(1), clock)
	env.stats = NewStatsService(env.store, env.dir)
	return env
}

func (e *testEnv) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

func (e *testEnv) approvedUser() uuid.UUID {
	id := uuid.New()
	e.dir.SetStatus(id, domain.KYCApproved)
	return id
}

func (e *testEnv) buyBTC(t *testing.T, userID uuid.UUID) *models.Order {
	t.Helper()
	order, err := e.orders.Create(context.Background(), CreateOrderRequest{
		UserID:    userID,
		Direction: domain.DirectionBuy,
		Symbol:    "BTC",
		Amount:    decimal.RequireFromString("0.01"),
		Unit:      domain.UnitCrypto,
	})
	require.NoError(t, err)
	return order
}

func sellBankDetails() *models.BankDetails {
	return &models.BankDetails{
		BankName:      "GTBank",
		AccountName:   "Ada Obi",
		AccountNumber: "0011223344",
	}
}
