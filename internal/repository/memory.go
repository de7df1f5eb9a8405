package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is the in-process implementation of Catalog and Orders. It
// backs the service when no DATABASE_URL is configured and every test.
// Wallet rows keep their insertion sequence so (symbol, network) lookups
// stay deterministic.
type MemoryStore struct {
	mu       sync.RWMutex
	coins    map[string]models.Coin        // keyed by symbol
	tokens   map[string]models.CustomToken // keyed by symbol
	banks    map[uuid.UUID]models.BankAccount
	wallets  []models.WalletAddress
	orders   map[uuid.UUID]models.Order
	seq      int64
	bankSeq  map[uuid.UUID]int64
	coinSeq  map[string]int64
	tokenSeq map[string]int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		coins:    make(map[string]models.Coin),
		tokens:   make(map[string]models.CustomToken),
		banks:    make(map[uuid.UUID]models.BankAccount),
		orders:   make(map[uuid.UUID]models.Order),
		bankSeq:  make(map[uuid.UUID]int64),
		coinSeq:  make(map[string]int64),
		tokenSeq: make(map[string]int64),
	}
}

func (s *MemoryStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

// --- Catalog ---

func (s *MemoryStore) UpsertCoin(_ context.Context, coin *models.Coin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(coin.Symbol)
	now := time.Now().UTC()
	if existing, ok := s.coins[key]; ok {
		coin.ID = existing.ID
		coin.CreatedAt = existing.CreatedAt
	} else {
		if coin.ID == uuid.Nil {
			coin.ID = uuid.New()
		}
		coin.CreatedAt = now
		s.coinSeq[key] = s.nextSeq()
	}
	coin.UpdatedAt = now
	s.coins[key] = *coin
	return nil
}

func (s *MemoryStore) UpsertToken(_ context.Context, token *models.CustomToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(token.Symbol)
	now := time.Now().UTC()
	if existing, ok := s.tokens[key]; ok {
		token.ID = existing.ID
		token.CreatedAt = existing.CreatedAt
	} else {
		if token.ID == uuid.Nil {
			token.ID = uuid.New()
		}
		token.CreatedAt = now
		s.tokenSeq[key] = s.nextSeq()
	}
	token.UpdatedAt = now
	s.tokens[key] = *token
	return nil
}

func (s *MemoryStore) DeleteAsset(_ context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(symbol)
	if _, ok := s.coins[key]; ok {
		delete(s.coins, key)
		delete(s.coinSeq, key)
		return nil
	}
	if _, ok := s.tokens[key]; ok {
		delete(s.tokens, key)
		delete(s.tokenSeq, key)
		return nil
	}
	return models.ErrAssetNotFound
}

func (s *MemoryStore) ListCoins(_ context.Context) ([]models.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Coin, 0, len(s.coins))
	for _, c := range s.coins {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.coinSeq[strings.ToUpper(out[i].Symbol)] < s.coinSeq[strings.ToUpper(out[j].Symbol)]
	})
	return out, nil
}

func (s *MemoryStore) ListTokens(_ context.Context) ([]models.CustomToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CustomToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.tokenSeq[strings.ToUpper(out[i].Symbol)] < s.tokenSeq[strings.ToUpper(out[j].Symbol)]
	})
	return out, nil
}

func (s *MemoryStore) UpsertBankAccount(_ context.Context, account *models.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.banks[account.ID]; ok {
		account.CreatedAt = existing.CreatedAt
	} else {
		if account.ID == uuid.Nil {
			account.ID = uuid.New()
		}
		account.CreatedAt = time.Now().UTC()
		s.bankSeq[account.ID] = s.nextSeq()
	}
	s.banks[account.ID] = *account
	return nil
}

func (s *MemoryStore) DeleteBankAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.banks, id)
	delete(s.bankSeq, id)
	return nil
}

func (s *MemoryStore) GetBankAccount(_ context.Context, id uuid.UUID) (*models.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.banks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &account, nil
}

func (s *MemoryStore) ListBankAccounts(_ context.Context) ([]models.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BankAccount, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.bankSeq[out[i].ID] < s.bankSeq[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) UpsertWallet(_ context.Context, wallet *models.WalletAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallets {
		if s.wallets[i].ID == wallet.ID {
			wallet.CreatedAt = s.wallets[i].CreatedAt
			wallet.Seq = s.wallets[i].Seq
			s.wallets[i] = *wallet
			return nil
		}
	}
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	wallet.CreatedAt = time.Now().UTC()
	wallet.Seq = s.nextSeq()
	s.wallets = append(s.wallets, *wallet)
	return nil
}

func (s *MemoryStore) DeleteWallet(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallets {
		if s.wallets[i].ID == id {
			s.wallets = append(s.wallets[:i], s.wallets[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *MemoryStore) ListWalletsBySymbol(_ context.Context, symbol string) ([]models.WalletAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.WalletAddress
	for _, w := range s.wallets {
		if strings.EqualFold(w.Symbol, symbol) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListWallets(_ context.Context) ([]models.WalletAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WalletAddress, len(s.wallets))
	copy(out, s.wallets)
	return out, nil
}

// --- Orders ---

func (s *MemoryStore) Insert(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return &order, nil
}

func (s *MemoryStore) Update(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return models.ErrOrderNotFound
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, o := range s.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Symbol != "" && !strings.EqualFold(o.Symbol, filter.Symbol) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CountOpenBySymbol(_ context.Context, symbol string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, o := range s.orders {
		if strings.EqualFold(o.Symbol, symbol) && !domain.IsTerminal(o.Status) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListAwaitingBefore(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, o := range s.orders {
		if domain.IsAwaiting(o.Status) && o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
