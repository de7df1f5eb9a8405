package repository

import (
	"context"
	"fmt"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad seed decimal %q: %v", s, err))
	}
	return d
}

func boolPtr(v bool) *bool { return &v }

// Seed loads the development catalog: the coins the desk lists by default,
// the settlement bank accounts, and per-network receiving wallets. Used by
// the in-memory store at startup and by tests.
func Seed(ctx context.Context, catalog Catalog) error {
	coins := []models.Coin{
		{
			Symbol: "BTC", Name: "Bitcoin", Network: "Bitcoin",
			Status:       domain.CoinStatusActive,
			BuyMarginPct: dec("2.5"), SellMarginPct: dec("2"),
			MinAmount: dec("0.001"), MaxAmount: dec("10"),
			PriceUSD: dec("67450"), PriceNGN: dec("108500000"),
			Change24hPct: dec("1.8"),
		},
		{
			Symbol: "ETH", Name: "Ethereum", Network: "Ethereum (ERC-20)",
			Status:       domain.CoinStatusActive,
			BuyMarginPct: dec("2.5"), SellMarginPct: dec("2"),
			MinAmount: dec("0.01"), MaxAmount: dec("200"),
			PriceUSD: dec("3520"), PriceNGN: dec("5665000"),
			Change24hPct: dec("-0.6"),
		},
		{
			Symbol: "USDT", Name: "Tether", Network: "Ethereum (ERC-20)",
			Status:       domain.CoinStatusActive,
			BuyMarginPct: dec("1.5"), SellMarginPct: dec("1"),
			MinAmount: dec("10"), MaxAmount: dec("500000"),
			PriceUSD: dec("1"), PriceNGN: dec("1610"),
			Change24hPct: dec("0.02"),
		},
		{
			Symbol: "BNB", Name: "BNB", Network: "BNB Smart Chain (BEP-20)",
			Status:       domain.CoinStatusActive,
			BuyMarginPct: dec("3"), SellMarginPct: dec("2.5"),
			MinAmount: dec("0.05"), MaxAmount: dec("1000"),
			PriceUSD: dec("595"), PriceNGN: dec("957000"),
			Change24hPct: dec("0.9"),
		},
		{
			Symbol: "SOL", Name: "Solana", Network: "Solana",
			Status:      domain.CoinStatusActive,
			BuyEnabled:  boolPtr(true),
			SellEnabled: boolPtr(false), // sell side paused pending liquidity
			BuyMarginPct: dec("3"), SellMarginPct: dec("2.5"),
			MinAmount: dec("0.1"), MaxAmount: dec("5000"),
			PriceUSD: dec("152"), PriceNGN: dec("244600"),
			Change24hPct: dec("4.1"),
		},
		{
			Symbol: "DOGE", Name: "Dogecoin", Network: "Dogecoin",
			Status:       domain.CoinStatusInactive,
			BuyMarginPct: dec("4"), SellMarginPct: dec("3"),
			MinAmount: dec("100"), MaxAmount: dec("2000000"),
			PriceUSD: dec("0.12"), PriceNGN: dec("193"),
			Change24hPct: dec("-2.3"),
		},
	}
	for i := range coins {
		if err := catalog.UpsertCoin(ctx, &coins[i]); err != nil {
			return fmt.Errorf("seed coin %s: %w", coins[i].Symbol, err)
		}
	}

	tokens := []models.CustomToken{
		{
			Symbol: "PEPE", Name: "Pepe", Network: "Ethereum (ERC-20)",
			ContractAddress: "0x6982508145454ce325ddbe47a25d4ec3d2311933",
			Decimals:        18,
			IsActive:        true, BuyEnabled: true, SellEnabled: true,
			BuyMarginPct: dec("5"), SellMarginPct: dec("4"),
			MinAmount: dec("100000"), MaxAmount: dec("10000000000"),
			PriceUSD: dec("0.0000112"), PriceNGN: dec("0.018"),
			Change24hPct: dec("7.5"),
		},
		{
			Symbol: "SHIB", Name: "Shiba Inu", Network: "Ethereum (ERC-20)",
			ContractAddress: "0x95ad61b0a150d79219dcf64e1e6cc01f0b64c4ce",
			Decimals:        18,
			IsActive:        false, BuyEnabled: true, SellEnabled: true,
			BuyMarginPct: dec("5"), SellMarginPct: dec("4"),
			MinAmount: dec("100000"), MaxAmount: dec("5000000000"),
			PriceUSD: dec("0.0000175"), PriceNGN: dec("0.028"),
			Change24hPct: dec("-1.1"),
		},
	}
	for i := range tokens {
		if err := catalog.UpsertToken(ctx, &tokens[i]); err != nil {
			return fmt.Errorf("seed token %s: %w", tokens[i].Symbol, err)
		}
	}

	banks := []models.BankAccount{
		{BankName: "GTBank", AccountName: "Apex OTC Ltd", AccountNumber: "0123456789", IsActive: true},
		{BankName: "Access Bank", AccountName: "Apex OTC Ltd", AccountNumber: "0987654321", IsActive: true},
		{BankName: "Zenith Bank", AccountName: "Apex OTC Ltd", AccountNumber: "1122334455", IsActive: false},
	}
	for i := range banks {
		if err := catalog.UpsertBankAccount(ctx, &banks[i]); err != nil {
			return fmt.Errorf("seed bank account %s: %w", banks[i].BankName, err)
		}
	}

	wallets := []models.WalletAddress{
		{Symbol: "BTC", Network: "Bitcoin", Address: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", IsActive: true},
		{Symbol: "ETH", Network: "Ethereum (ERC-20)", Address: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", IsActive: true},
		{Symbol: "USDT", Network: "Ethereum (ERC-20)", Address: "0x8Ba1f109551bD432803012645Ac136ddd64DBA72", IsActive: true},
		{Symbol: "USDT", Network: "Tron (TRC-20)", Address: "TQrY8bkbpXvPf2qFzCJWqPYZZn3EuV6ply", IsActive: false},
		{Symbol: "BNB", Network: "BNB Smart Chain (BEP-20)", Address: "0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db", IsActive: true},
		{Symbol: "SOL", Network: "Solana", Address: "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d", IsActive: true},
	}
	for i := range wallets {
		if err := catalog.UpsertWallet(ctx, &wallets[i]); err != nil {
			return fmt.Errorf("seed wallet %s/%s: %w", wallets[i].Symbol, wallets[i].Network, err)
		}
	}

	return nil
}
