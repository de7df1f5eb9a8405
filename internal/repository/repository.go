package repository

import (
	"context"
	"time"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
)

// Catalog is the data access contract for admin-owned reference data:
// coins, custom tokens, bank accounts and wallet addresses.
type Catalog interface {
	UpsertCoin(ctx context.Context, coin *models.Coin) error
	UpsertToken(ctx context.Context, token *models.CustomToken) error
	DeleteAsset(ctx context.Context, symbol string) error
	ListCoins(ctx context.Context) ([]models.Coin, error)
	ListTokens(ctx context.Context) ([]models.CustomToken, error)

	UpsertBankAccount(ctx context.Context, account *models.BankAccount) error
	DeleteBankAccount(ctx context.Context, id uuid.UUID) error
	GetBankAccount(ctx context.Context, id uuid.UUID) (*models.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]models.BankAccount, error)

	UpsertWallet(ctx context.Context, wallet *models.WalletAddress) error
	DeleteWallet(ctx context.Context, id uuid.UUID) error
	// ListWalletsBySymbol returns wallet rows for a symbol in insertion
	// order, active and inactive alike.
	ListWalletsBySymbol(ctx context.Context, symbol string) ([]models.WalletAddress, error)
	ListWallets(ctx context.Context) ([]models.WalletAddress, error)
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status string
	Symbol string
}

// Orders is the data access contract for the order state machine. Status
// mutations go through the service layer; the store only persists.
type Orders interface {
	Insert(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// CountOpenBySymbol counts non-terminal orders referencing a symbol,
	// used to block catalog deletes.
	CountOpenBySymbol(ctx context.Context, symbol string) (int, error)
	// ListAwaitingBefore returns awaiting orders created before the cutoff,
	// oldest first, for the expiry sweeper.
	ListAwaitingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}
