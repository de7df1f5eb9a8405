package models

import (
	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/shopspring/decimal"
)

// Asset is the normalized catalog view shared by the price resolver and
// validator. Coins and custom tokens collapse into this one shape; the
// Kind tag replaces the legacy structural field probing.
type Asset struct {
	Kind          string          `json:"kind"` // "coin" or "custom_token"
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Network       string          `json:"network"`
	BuyEnabled    bool            `json:"buy_enabled"`
	SellEnabled   bool            `json:"sell_enabled"`
	BuyMarginPct  decimal.Decimal `json:"buy_margin_pct"`
	SellMarginPct decimal.Decimal `json:"sell_margin_pct"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	PriceUSD      decimal.Decimal `json:"price_usd"`
	PriceNGN      decimal.Decimal `json:"price_ngn"`
	Change24hPct  decimal.Decimal `json:"change_24h_pct"`
}

// Active reports whether the underlying record is live in the catalog.
func (c Coin) Active() bool {
	return c.Status == domain.CoinStatusActive
}

// Normalize converts a coin to the shared asset view. A missing enablement
// flag defaults to true: the legacy coin type had no way to disable trading
// without one.
func (c Coin) Normalize() Asset {
	enabled := func(flag *bool) bool {
		if flag == nil {
			return true
		}
		return *flag
	}
	return Asset{
		Kind:          domain.KindCoin,
		Symbol:        c.Symbol,
		Name:          c.Name,
		Network:       c.Network,
		BuyEnabled:    enabled(c.BuyEnabled),
		SellEnabled:   enabled(c.SellEnabled),
		BuyMarginPct:  c.BuyMarginPct,
		SellMarginPct: c.SellMarginPct,
		MinAmount:     c.MinAmount,
		MaxAmount:     c.MaxAmount,
		PriceUSD:      c.PriceUSD,
		PriceNGN:      c.PriceNGN,
		Change24hPct:  c.Change24hPct,
	}
}

// Normalize converts a custom token to the shared asset view.
func (t CustomToken) Normalize() Asset {
	return Asset{
		Kind:          domain.KindCustomToken,
		Symbol:        t.Symbol,
		Name:          t.Name,
		Network:       t.Network,
		BuyEnabled:    t.BuyEnabled,
		SellEnabled:   t.SellEnabled,
		BuyMarginPct:  t.BuyMarginPct,
		SellMarginPct: t.SellMarginPct,
		MinAmount:     t.MinAmount,
		MaxAmount:     t.MaxAmount,
		PriceUSD:      t.PriceUSD,
		PriceNGN:      t.PriceNGN,
		Change24hPct:  t.Change24hPct,
	}
}

// EnabledFor reports whether trading is enabled for the given direction.
func (a Asset) EnabledFor(direction string) bool {
	if direction == domain.DirectionSell {
		return a.SellEnabled
	}
	return a.BuyEnabled
}

// MarginFor returns the margin percentage for the given direction.
func (a Asset) MarginFor(direction string) decimal.Decimal {
	if direction == domain.DirectionSell {
		return a.SellMarginPct
	}
	return a.BuyMarginPct
}
