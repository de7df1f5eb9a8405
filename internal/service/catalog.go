package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/repository"
	"github.com/google/uuid"
)

// CatalogService owns the lifecycles of assets, bank accounts and wallet
// addresses. Admin mutations are serialized per symbol so concurrent edits
// to the same listing cannot interleave.
type CatalogService struct {
	catalog repository.Catalog
	orders  repository.Orders
	locks   *keyedMutex
}

func NewCatalogService(catalog repository.Catalog, orders repository.Orders) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		orders:  orders,
		locks:   newKeyedMutex(),
	}
}

func symbolKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// UpsertCoin creates or updates a coin listing.
func (s *CatalogService) UpsertCoin(ctx context.Context, coin *models.Coin) error {
	if coin.Symbol == "" {
		return fmt.Errorf("coin symbol is required: %w", models.ErrInvalidRequest)
	}
	if coin.MinAmount.GreaterThan(coin.MaxAmount) {
		return fmt.Errorf("min amount exceeds max amount: %w", models.ErrAmountOutOfRange)
	}
	unlock := s.locks.Lock(symbolKey(coin.Symbol))
	defer unlock()
	return s.catalog.UpsertCoin(ctx, coin)
}

// UpsertToken creates or updates a custom token listing.
func (s *CatalogService) UpsertToken(ctx context.Context, token *models.CustomToken) error {
	if token.Symbol == "" {
		return fmt.Errorf("token symbol is required: %w", models.ErrInvalidRequest)
	}
	if token.MinAmount.GreaterThan(token.MaxAmount) {
		return fmt.Errorf("min amount exceeds max amount: %w", models.ErrAmountOutOfRange)
	}
	unlock := s.locks.Lock(symbolKey(token.Symbol))
	defer unlock()
	return s.catalog.UpsertToken(ctx, token)
}

// DeleteAsset removes a listing. Deletion is rejected with ErrConflict
// while any non-terminal order references the symbol; admins must wait for
// terminal state or force-cancel first.
func (s *CatalogService) DeleteAsset(ctx context.Context, symbol string) error {
	unlock := s.locks.Lock(symbolKey(symbol))
	defer unlock()

	open, err := s.orders.CountOpenBySymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("count open orders for %s: %w", symbol, err)
	}
	if open > 0 {
		return fmt.Errorf("%d in-flight order(s) reference %s: %w", open, symbol, models.ErrConflict)
	}
	return s.catalog.DeleteAsset(ctx, symbol)
}

// GetAsset returns the normalized view for a symbol, active or not.
func (s *CatalogService) GetAsset(ctx context.Context, symbol string) (*models.Asset, error) {
	assets, err := s.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if strings.EqualFold(assets[i].Symbol, symbol) {
			return &assets[i], nil
		}
	}
	return nil, models.ErrAssetNotFound
}

// GetActiveAsset returns the normalized view for a symbol if its record is
// live in the catalog.
func (s *CatalogService) GetActiveAsset(ctx context.Context, symbol string) (*models.Asset, error) {
	assets, err := s.ListActiveAssets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if strings.EqualFold(assets[i].Symbol, symbol) {
			return &assets[i], nil
		}
	}
	return nil, models.ErrAssetNotFound
}

// ListAssets returns every listing normalized, coins first.
func (s *CatalogService) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return s.listAssets(ctx, false)
}

// ListActiveAssets returns the union of active coins and active custom
// tokens. Inactive records are excluded regardless of their buy/sell flags.
func (s *CatalogService) ListActiveAssets(ctx context.Context) ([]models.Asset, error) {
	return s.listAssets(ctx, true)
}

func (s *CatalogService) listAssets(ctx context.Context, activeOnly bool) ([]models.Asset, error) {
	coins, err := s.catalog.ListCoins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coins: %w", err)
	}
	tokens, err := s.catalog.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	out := make([]models.Asset, 0, len(coins)+len(tokens))
	for _, c := range coins {
		if activeOnly && !c.Active() {
			continue
		}
		out = append(out, c.Normalize())
	}
	for _, t := range tokens {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t.Normalize())
	}
	return out, nil
}

// UpsertBankAccount creates or updates a settlement bank account.
func (s *CatalogService) UpsertBankAccount(ctx context.Context, account *models.BankAccount) error {
	if account.BankName == "" || account.AccountName == "" || account.AccountNumber == "" {
		return fmt.Errorf("bank account fields are required: %w", models.ErrMissingBankDetails)
	}
	return s.catalog.UpsertBankAccount(ctx, account)
}

// DeleteBankAccount removes a bank account.
func (s *CatalogService) DeleteBankAccount(ctx context.Context, id uuid.UUID) error {
	return s.catalog.DeleteBankAccount(ctx, id)
}

// GetBankAccount returns a bank account by id.
func (s *CatalogService) GetBankAccount(ctx context.Context, id uuid.UUID) (*models.BankAccount, error) {
	return s.catalog.GetBankAccount(ctx, id)
}

// ListActiveBankAccounts returns the accounts offered to buyers.
func (s *CatalogService) ListActiveBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	accounts, err := s.catalog.ListBankAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	out := accounts[:0:0]
	for _, a := range accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListBankAccounts returns all accounts, admin view.
func (s *CatalogService) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	return s.catalog.ListBankAccounts(ctx)
}

// UpsertWallet creates or updates a receiving wallet address.
func (s *CatalogService) UpsertWallet(ctx context.Context, wallet *models.WalletAddress) error {
	if wallet.Symbol == "" || wallet.Address == "" {
		return fmt.Errorf("wallet symbol and address are required: %w", models.ErrNoSettlementMethod)
	}
	wallet.Symbol = symbolKey(wallet.Symbol)
	return s.catalog.UpsertWallet(ctx, wallet)
}

// DeleteWallet removes a wallet address.
func (s *CatalogService) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	return s.catalog.DeleteWallet(ctx, id)
}

// ListWallets returns every wallet row, admin view.
func (s *CatalogService) ListWallets(ctx context.Context) ([]models.WalletAddress, error) {
	return s.catalog.ListWallets(ctx)
}
