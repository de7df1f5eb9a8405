package service

import (
	"context"
	"fmt"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/damilare/otc-exchange/internal/repository"
)

// WalletResolver picks the receiving wallet for sell orders. Matching is
// exact and case sensitive on the network label because labels are admin
// curated, not user input.
type WalletResolver struct {
	catalog repository.Catalog
}

func NewWalletResolver(catalog repository.Catalog) *WalletResolver {
	return &WalletResolver{catalog: catalog}
}

// NetworksFor returns the distinct network labels that have at least one
// active wallet for the symbol, in first-appearance order.
func (r *WalletResolver) NetworksFor(ctx context.Context, symbol string) ([]string, error) {
	wallets, err := r.catalog.ListWalletsBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("list wallets for %s: %w", symbol, err)
	}

	seen := make(map[string]bool)
	var networks []string
	for _, w := range wallets {
		if !w.IsActive || seen[w.Network] {
			continue
		}
		seen[w.Network] = true
		networks = append(networks, w.Network)
	}
	return networks, nil
}

// Resolve returns the wallet a seller must send to. With a network it is
// the first active wallet matching that exact label; without one it is the
// first active wallet for the symbol. A nil wallet with a nil error means
// settlement is unavailable for that combination.
func (r *WalletResolver) Resolve(ctx context.Context, symbol, network string) (*models.WalletAddress, error) {
	wallets, err := r.catalog.ListWalletsBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("list wallets for %s: %w", symbol, err)
	}

	for i := range wallets {
		w := &wallets[i]
		if !w.IsActive {
			continue
		}
		if network == "" || w.Network == network {
			return w, nil
		}
	}
	return nil, nil
}
