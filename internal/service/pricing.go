package service

import (
	"context"
	"fmt"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/shopspring/decimal"
)

// MarginPolicy decides how a listing's margin combines with its stored NGN
// price. The legacy catalog embedded margin-adjusted prices directly while
// still tracking margin percentages, so the policy is configurable rather
// than hard-coded.
type MarginPolicy func(basePriceNGN, marginPct decimal.Decimal, direction string) decimal.Decimal

// MarginEmbedded treats the stored price as already final; the margin is
// advisory metadata surfaced to the UI.
func MarginEmbedded(basePriceNGN, _ decimal.Decimal, _ string) decimal.Decimal {
	return basePriceNGN
}

// MarginApplied treats the stored price as the unmarginned reference and
// applies the margin: add on buy, subtract on sell.
func MarginApplied(basePriceNGN, marginPct decimal.Decimal, direction string) decimal.Decimal {
	adj := domain.ApplyPercent(basePriceNGN, marginPct)
	if direction == domain.DirectionSell {
		return basePriceNGN.Sub(adj)
	}
	return basePriceNGN.Add(adj)
}

// PriceQuote is a margin-resolved unit price for one asset and direction.
type PriceQuote struct {
	Symbol       string          `json:"symbol"`
	Direction    string          `json:"direction"`
	UnitPriceNGN decimal.Decimal `json:"unit_price_ngn"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
}

// PricingService computes quotes from catalog entries.
type PricingService struct {
	catalog *CatalogService
	policy  MarginPolicy
}

// NewPricingService builds a resolver. A nil policy defaults to
// MarginEmbedded, matching the legacy catalog data.
func NewPricingService(catalog *CatalogService, policy MarginPolicy) *PricingService {
	if policy == nil {
		policy = MarginEmbedded
	}
	return &PricingService{catalog: catalog, policy: policy}
}

// Quote resolves the unit price for (symbol, direction). The asset must be
// active and enabled for the direction.
func (s *PricingService) Quote(ctx context.Context, symbol, direction string) (*PriceQuote, error) {
	asset, err := s.catalog.GetActiveAsset(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !asset.EnabledFor(direction) {
		return nil, fmt.Errorf("%s %s: %w", direction, asset.Symbol, models.ErrDirectionDisabled)
	}

	unitPrice, margin := s.resolve(asset, direction)
	return &PriceQuote{
		Symbol:       asset.Symbol,
		Direction:    direction,
		UnitPriceNGN: unitPrice,
		MarginPct:    margin,
	}, nil
}

// resolve applies the margin policy to an already-loaded asset. It does not
// gate on direction enablement; order validation owns that check.
func (s *PricingService) resolve(asset *models.Asset, direction string) (unitPrice, marginPct decimal.Decimal) {
	margin := asset.MarginFor(direction)
	return domain.RoundFiat(s.policy(asset.PriceNGN, margin, direction)), margin
}

// Convert translates an amount between asset units and naira at the given
// unit price: crypto -> fiat multiplies, fiat -> crypto divides.
func Convert(amount decimal.Decimal, fromUnit string, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("amount must be positive: %w", models.ErrInvalidAmount)
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("unit price must be positive: %w", models.ErrInvalidAmount)
	}

	if fromUnit == domain.UnitFiat {
		return domain.RoundCrypto(amount.DivRound(unitPrice, domain.CryptoScale)), nil
	}
	return domain.RoundFiat(amount.Mul(unitPrice)), nil
}
