package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore implements Catalog and Orders on top of a pgx pool. One
// table per entity; numeric columns are scanned as text and parsed into
// decimals.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps a pgx connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// --- Catalog ---

func (s *PostgresStore) UpsertCoin(ctx context.Context, coin *models.Coin) error {
	if coin.ID == uuid.Nil {
		coin.ID = uuid.New()
	}
	query := `
		INSERT INTO coins (id, symbol, name, network, status, buy_enabled, sell_enabled,
			buy_margin_pct, sell_margin_pct, min_amount, max_amount, price_usd, price_ngn,
			change_24h_pct, created_at, updated_at)
		VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name, network = EXCLUDED.network, status = EXCLUDED.status,
			buy_enabled = EXCLUDED.buy_enabled, sell_enabled = EXCLUDED.sell_enabled,
			buy_margin_pct = EXCLUDED.buy_margin_pct, sell_margin_pct = EXCLUDED.sell_margin_pct,
			min_amount = EXCLUDED.min_amount, max_amount = EXCLUDED.max_amount,
			price_usd = EXCLUDED.price_usd, price_ngn = EXCLUDED.price_ngn,
			change_24h_pct = EXCLUDED.change_24h_pct, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		coin.ID, coin.Symbol, coin.Name, coin.Network, coin.Status,
		coin.BuyEnabled, coin.SellEnabled,
		coin.BuyMarginPct, coin.SellMarginPct, coin.MinAmount, coin.MaxAmount,
		coin.PriceUSD, coin.PriceNGN, coin.Change24hPct,
	).Scan(&coin.ID, &coin.CreatedAt, &coin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert coin: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertToken(ctx context.Context, token *models.CustomToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	query := `
		INSERT INTO custom_tokens (id, symbol, name, network, contract_address, decimals,
			is_active, buy_enabled, sell_enabled, buy_margin_pct, sell_margin_pct,
			min_amount, max_amount, price_usd, price_ngn, change_24h_pct, created_at, updated_at)
		VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name, network = EXCLUDED.network,
			contract_address = EXCLUDED.contract_address, decimals = EXCLUDED.decimals,
			is_active = EXCLUDED.is_active, buy_enabled = EXCLUDED.buy_enabled,
			sell_enabled = EXCLUDED.sell_enabled, buy_margin_pct = EXCLUDED.buy_margin_pct,
			sell_margin_pct = EXCLUDED.sell_margin_pct, min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount, price_usd = EXCLUDED.price_usd,
			price_ngn = EXCLUDED.price_ngn, change_24h_pct = EXCLUDED.change_24h_pct,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		token.ID, token.Symbol, token.Name, token.Network, token.ContractAddress, token.Decimals,
		token.IsActive, token.BuyEnabled, token.SellEnabled,
		token.BuyMarginPct, token.SellMarginPct, token.MinAmount, token.MaxAmount,
		token.PriceUSD, token.PriceNGN, token.Change24hPct,
	).Scan(&token.ID, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAsset(ctx context.Context, symbol string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM coins WHERE symbol = UPPER($1)`, symbol)
	if err != nil {
		return fmt.Errorf("delete coin: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	tag, err = s.db.Exec(ctx, `DELETE FROM custom_tokens WHERE symbol = UPPER($1)`, symbol)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAssetNotFound
	}
	return nil
}

func (s *PostgresStore) ListCoins(ctx context.Context) ([]models.Coin, error) {
	query := `
		SELECT id, symbol, name, network, status, buy_enabled, sell_enabled,
			buy_margin_pct::text, sell_margin_pct::text, min_amount::text, max_amount::text,
			price_usd::text, price_ngn::text, change_24h_pct::text, created_at, updated_at
		FROM coins ORDER BY created_at, symbol`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coins: %w", err)
	}
	defer rows.Close()

	var out []models.Coin
	for rows.Next() {
		var c models.Coin
		var buyMargin, sellMargin, minAmt, maxAmt, priceUSD, priceNGN, change string
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name, &c.Network, &c.Status,
			&c.BuyEnabled, &c.SellEnabled, &buyMargin, &sellMargin, &minAmt, &maxAmt,
			&priceUSD, &priceNGN, &change, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan coin: %w", err)
		}
		c.BuyMarginPct = scanDecimal(buyMargin)
		c.SellMarginPct = scanDecimal(sellMargin)
		c.MinAmount = scanDecimal(minAmt)
		c.MaxAmount = scanDecimal(maxAmt)
		c.PriceUSD = scanDecimal(priceUSD)
		c.PriceNGN = scanDecimal(priceNGN)
		c.Change24hPct = scanDecimal(change)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTokens(ctx context.Context) ([]models.CustomToken, error) {
	query := `
		SELECT id, symbol, name, network, contract_address, decimals, is_active,
			buy_enabled, sell_enabled, buy_margin_pct::text, sell_margin_pct::text,
			min_amount::text, max_amount::text, price_usd::text, price_ngn::text,
			change_24h_pct::text, created_at, updated_at
		FROM custom_tokens ORDER BY created_at, symbol`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var out []models.CustomToken
	for rows.Next() {
		var t models.CustomToken
		var buyMargin, sellMargin, minAmt, maxAmt, priceUSD, priceNGN, change string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Name, &t.Network, &t.ContractAddress,
			&t.Decimals, &t.IsActive, &t.BuyEnabled, &t.SellEnabled,
			&buyMargin, &sellMargin, &minAmt, &maxAmt, &priceUSD, &priceNGN, &change,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		t.BuyMarginPct = scanDecimal(buyMargin)
		t.SellMarginPct = scanDecimal(sellMargin)
		t.MinAmount = scanDecimal(minAmt)
		t.MaxAmount = scanDecimal(maxAmt)
		t.PriceUSD = scanDecimal(priceUSD)
		t.PriceNGN = scanDecimal(priceNGN)
		t.Change24hPct = scanDecimal(change)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertBankAccount(ctx context.Context, account *models.BankAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO bank_accounts (id, bank_name, account_name, account_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			bank_name = EXCLUDED.bank_name, account_name = EXCLUDED.account_name,
			account_number = EXCLUDED.account_number, is_active = EXCLUDED.is_active
		RETURNING created_at`
	err := s.db.QueryRow(ctx, query,
		account.ID, account.BankName, account.AccountName, account.AccountNumber, account.IsActive,
	).Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert bank account: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBankAccount(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetBankAccount(ctx context.Context, id uuid.UUID) (*models.BankAccount, error) {
	account := &models.BankAccount{}
	query := `SELECT id, bank_name, account_name, account_number, is_active, created_at FROM bank_accounts WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.BankName, &account.AccountName, &account.AccountNumber,
		&account.IsActive, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get bank account: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	query := `SELECT id, bank_name, account_name, account_number, is_active, created_at FROM bank_accounts ORDER BY created_at`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	var out []models.BankAccount
	for rows.Next() {
		var b models.BankAccount
		if err := rows.Scan(&b.ID, &b.BankName, &b.AccountName, &b.AccountNumber, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertWallet(ctx context.Context, wallet *models.WalletAddress) error {
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	query := `
		INSERT INTO wallet_addresses (id, symbol, network, address, is_active, created_at)
		VALUES ($1, UPPER($2), $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol, network = EXCLUDED.network,
			address = EXCLUDED.address, is_active = EXCLUDED.is_active
		RETURNING seq, created_at`
	err := s.db.QueryRow(ctx, query,
		wallet.ID, wallet.Symbol, wallet.Network, wallet.Address, wallet.IsActive,
	).Scan(&wallet.Seq, &wallet.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM wallet_addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListWalletsBySymbol(ctx context.Context, symbol string) ([]models.WalletAddress, error) {
	query := `SELECT id, symbol, network, address, is_active, created_at, seq FROM wallet_addresses WHERE symbol = UPPER($1) ORDER BY seq`
	rows, err := s.db.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("list wallets by symbol: %w", err)
	}
	defer rows.Close()
	return scanWallets(rows)
}

func (s *PostgresStore) ListWallets(ctx context.Context) ([]models.WalletAddress, error) {
	query := `SELECT id, symbol, network, address, is_active, created_at, seq FROM wallet_addresses ORDER BY seq`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()
	return scanWallets(rows)
}

func scanWallets(rows pgx.Rows) ([]models.WalletAddress, error) {
	var out []models.WalletAddress
	for rows.Next() {
		var w models.WalletAddress
		if err := rows.Scan(&w.ID, &w.Symbol, &w.Network, &w.Address, &w.IsActive, &w.CreatedAt, &w.Seq); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// --- Orders ---

// orderSnapshot is the JSONB payload holding the settlement snapshot and
// proof alongside the relational columns.
type orderSnapshot struct {
	BankAccount *models.BankAccount   `json:"bank_account,omitempty"`
	Wallet      *models.WalletAddress `json:"wallet,omitempty"`
	BankDetails *models.BankDetails   `json:"bank_details,omitempty"`
	Proof       *models.Proof         `json:"proof,omitempty"`
}

func (s *PostgresStore) Insert(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	snapshot, err := json.Marshal(orderSnapshot{
		BankAccount: order.BankAccount,
		Wallet:      order.Wallet,
		BankDetails: order.BankDetails,
		Proof:       order.Proof,
	})
	if err != nil {
		return fmt.Errorf("encode order snapshot: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, direction, symbol, requested_amount, requested_unit,
			crypto_amount, fiat_amount_ngn, unit_price_ngn, margin_pct, fee_ngn, status,
			network, snapshot, admin_notes, failure_reason, cancel_reason, quote_id,
			created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, UPPER($4), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = s.db.Exec(ctx, query,
		order.ID, order.UserID, order.Direction, order.Symbol,
		order.RequestedAmount, order.RequestedUnit, order.CryptoAmount, order.FiatAmountNGN,
		order.UnitPriceNGN, order.MarginPct, order.FeeNGN, order.Status,
		order.Network, snapshot, order.AdminNotes, order.FailureReason, order.CancelReason,
		order.QuoteID, order.CreatedAt, order.UpdatedAt, order.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRow(ctx, selectOrders+` WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *PostgresStore) Update(ctx context.Context, order *models.Order) error {
	snapshot, err := json.Marshal(orderSnapshot{
		BankAccount: order.BankAccount,
		Wallet:      order.Wallet,
		BankDetails: order.BankDetails,
		Proof:       order.Proof,
	})
	if err != nil {
		return fmt.Errorf("encode order snapshot: %w", err)
	}

	query := `
		UPDATE orders SET status = $2, snapshot = $3, admin_notes = $4, failure_reason = $5,
			cancel_reason = $6, updated_at = $7, completed_at = $8
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, query,
		order.ID, order.Status, snapshot, order.AdminNotes, order.FailureReason,
		order.CancelReason, order.UpdatedAt, order.CompletedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

const selectOrders = `
	SELECT id, user_id, direction, symbol, requested_amount::text, requested_unit,
		crypto_amount::text, fiat_amount_ngn::text, unit_price_ngn::text, margin_pct::text,
		fee_ngn::text, status, network, snapshot, admin_notes, failure_reason, cancel_reason,
		quote_id, created_at, updated_at, completed_at
	FROM orders`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var requested, crypto, fiat, price, margin, fee string
	var snapshot []byte
	if err := row.Scan(&o.ID, &o.UserID, &o.Direction, &o.Symbol, &requested, &o.RequestedUnit,
		&crypto, &fiat, &price, &margin, &fee, &o.Status, &o.Network, &snapshot,
		&o.AdminNotes, &o.FailureReason, &o.CancelReason, &o.QuoteID,
		&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
		return nil, err
	}
	o.RequestedAmount = scanDecimal(requested)
	o.CryptoAmount = scanDecimal(crypto)
	o.FiatAmountNGN = scanDecimal(fiat)
	o.UnitPriceNGN = scanDecimal(price)
	o.MarginPct = scanDecimal(margin)
	o.FeeNGN = scanDecimal(fee)

	var snap orderSnapshot
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &snap); err != nil {
			return nil, fmt.Errorf("decode order snapshot: %w", err)
		}
	}
	o.BankAccount = snap.BankAccount
	o.Wallet = snap.Wallet
	o.BankDetails = snap.BankDetails
	o.Proof = snap.Proof
	return &o, nil
}

func (s *PostgresStore) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := selectOrders + ` WHERE ($1::uuid IS NULL OR user_id = $1)
		AND ($2 = '' OR status = $2)
		AND ($3 = '' OR symbol = UPPER($3))
		ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, filter.UserID, filter.Status, filter.Symbol)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *order)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountOpenBySymbol(ctx context.Context, symbol string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE symbol = UPPER($1) AND status NOT IN ($2, $3, $4)`
	err := s.db.QueryRow(ctx, query, symbol,
		domain.OrderStatusCompleted, domain.OrderStatusFailed, domain.OrderStatusCancelled,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open orders: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListAwaitingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	query := selectOrders + ` WHERE status IN ($1, $2, $3) AND created_at < $4 ORDER BY created_at LIMIT $5`
	rows, err := s.db.Query(ctx, query,
		domain.OrderStatusAwaitingPayment, domain.OrderStatusAwaitingCrypto, domain.OrderStatusPending,
		cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list awaiting orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *order)
	}
	return out, rows.Err()
}
