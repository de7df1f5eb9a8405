package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/quotestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQuoteTTL is how long an issued quote stays redeemable.
const DefaultQuoteTTL = 60 * time.Second

// QuoteService issues short-lived quote tokens and redeems them at order
// creation. The token freezes the unit price between the moment the user
// saw it and the moment they commit.
type QuoteService struct {
	pricing *PricingService
	store   quotestore.Store
	ttl     time.Duration
	now     func() time.Time
}

func NewQuoteService(pricing *PricingService, store quotestore.Store, ttl time.Duration, now func() time.Time) *QuoteService {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	if now == nil {
		now = time.Now
	}
	return &QuoteService{pricing: pricing, store: store, ttl: ttl, now: now}
}

// Issue resolves the current price for (symbol, direction) and stores a
// token the client must present within the TTL.
func (s *QuoteService) Issue(ctx context.Context, symbol, direction string) (*models.Quote, error) {
	pq, err := s.pricing.Quote(ctx, symbol, direction)
	if err != nil {
		return nil, err
	}

	issued := s.now()
	quote := &models.Quote{
		ID:           uuid.New(),
		Symbol:       pq.Symbol,
		Direction:    pq.Direction,
		UnitPriceNGN: pq.UnitPriceNGN,
		MarginPct:    pq.MarginPct,
		CreatedAt:    issued,
		ExpiresAt:    issued.Add(s.ttl),
	}
	if err := s.store.Put(ctx, quote, s.ttl); err != nil {
		return nil, fmt.Errorf("store quote %s: %w", quote.ID, err)
	}
	zap.L().Debug("quote issued",
		zap.String("quote_id", quote.ID.String()),
		zap.String("symbol", quote.Symbol),
		zap.String("direction", quote.Direction),
		zap.String("unit_price_ngn", quote.UnitPriceNGN.String()),
	)
	return quote, nil
}

// Redeem validates a token against the order being created. Expired or
// missing tokens and symbol/direction mismatches all come back as
// ErrQuoteExpired: the client remedy is identical, fetch a fresh quote.
func (s *QuoteService) Redeem(ctx context.Context, id uuid.UUID, symbol, direction string) (*models.Quote, error) {
	quote, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, quotestore.ErrNotFound) {
			return nil, fmt.Errorf("quote %s: %w", id, models.ErrQuoteExpired)
		}
		return nil, fmt.Errorf("load quote %s: %w", id, err)
	}
	if s.now().After(quote.ExpiresAt) {
		return nil, fmt.Errorf("quote %s: %w", id, models.ErrQuoteExpired)
	}
	if !strings.EqualFold(quote.Symbol, symbol) || quote.Direction != direction {
		return nil, fmt.Errorf("quote %s does not match order: %w", id, models.ErrQuoteExpired)
	}
	return quote, nil
}
