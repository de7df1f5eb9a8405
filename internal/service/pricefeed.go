package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AssetPrice is one entry of a published price snapshot.
type AssetPrice struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	PriceNGN     decimal.Decimal `json:"price_ngn"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	Change24hPct decimal.Decimal `json:"change_24h_pct"`
	AsOf         time.Time       `json:"as_of"`
}

// PriceFeed fans catalog price snapshots out to websocket subscribers.
// Slow subscribers miss ticks instead of blocking the publisher.
type PriceFeed struct {
	catalog *CatalogService
	now     func() time.Time

	mu     sync.Mutex
	subs   map[int]chan []AssetPrice
	nextID int
}

func NewPriceFeed(catalog *CatalogService, now func() time.Time) *PriceFeed {
	if now == nil {
		now = time.Now
	}
	return &PriceFeed{
		catalog: catalog,
		now:     now,
		subs:    make(map[int]chan []AssetPrice),
	}
}

// Snapshot reads the current prices of every active asset.
func (f *PriceFeed) Snapshot(ctx context.Context) ([]AssetPrice, error) {
	assets, err := f.catalog.ListActiveAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot prices: %w", err)
	}

	asOf := f.now()
	prices := make([]AssetPrice, 0, len(assets))
	for _, a := range assets {
		prices = append(prices, AssetPrice{
			Symbol:       a.Symbol,
			Name:         a.Name,
			PriceNGN:     a.PriceNGN,
			PriceUSD:     a.PriceUSD,
			Change24hPct: a.Change24hPct,
			AsOf:         asOf,
		})
	}
	return prices, nil
}

// Subscribe registers a consumer. The returned cancel func must be called
// or the subscription leaks.
func (f *PriceFeed) Subscribe() (<-chan []AssetPrice, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan []AssetPrice, 1)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish takes a fresh snapshot and pushes it to every subscriber.
func (f *PriceFeed) Publish(ctx context.Context) error {
	prices, err := f.Snapshot(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- prices:
		default:
			// subscriber still draining the previous tick
		}
	}
	zap.L().Debug("prices published",
		zap.Int("assets", len(prices)),
		zap.Int("subscribers", len(f.subs)),
	)
	return nil
}
