package domain

import "github.com/shopspring/decimal"

// Rounding scales. Crypto amounts keep 8 decimal places (satoshi-level),
// naira amounts keep 2.
const (
	CryptoScale = 8
	FiatScale   = 2
)

// RoundCrypto rounds an asset-unit amount to CryptoScale places.
func RoundCrypto(d decimal.Decimal) decimal.Decimal {
	return d.Round(CryptoScale)
}

// RoundFiat rounds a naira amount to FiatScale places.
func RoundFiat(d decimal.Decimal) decimal.Decimal {
	return d.Round(FiatScale)
}

// ApplyPercent returns amount * pct/100.
func ApplyPercent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(decimal.NewFromInt(100))
}
