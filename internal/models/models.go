package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coin is a built-in listed asset. BuyEnabled/SellEnabled are pointers
// because the legacy catalog did not record them for every coin; a nil
// flag means trading is enabled. Normalization makes that default explicit.
type Coin struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Network       string          `json:"network"`
	Status        string          `json:"status"` // "active" or "inactive"
	BuyEnabled    *bool           `json:"buy_enabled,omitempty"`
	SellEnabled   *bool           `json:"sell_enabled,omitempty"`
	BuyMarginPct  decimal.Decimal `json:"buy_margin_pct"`
	SellMarginPct decimal.Decimal `json:"sell_margin_pct"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	PriceUSD      decimal.Decimal `json:"price_usd"`
	PriceNGN      decimal.Decimal `json:"price_ngn"`
	Change24hPct  decimal.Decimal `json:"change_24h_pct"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomToken is an admin-added asset with an on-chain contract.
type CustomToken struct {
	ID              uuid.UUID       `json:"id"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	Network         string          `json:"network"`
	ContractAddress string          `json:"contract_address"`
	Decimals        int             `json:"decimals"`
	IsActive        bool            `json:"is_active"`
	BuyEnabled      bool            `json:"buy_enabled"`
	SellEnabled     bool            `json:"sell_enabled"`
	BuyMarginPct    decimal.Decimal `json:"buy_margin_pct"`
	SellMarginPct   decimal.Decimal `json:"sell_margin_pct"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	PriceUSD        decimal.Decimal `json:"price_usd"`
	PriceNGN        decimal.Decimal `json:"price_ngn"`
	Change24hPct    decimal.Decimal `json:"change_24h_pct"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BankAccount is a settlement account offered to buyers. Only active
// accounts are offered.
type BankAccount struct {
	ID            uuid.UUID `json:"id"`
	BankName      string    `json:"bank_name"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// WalletAddress is a receiving address for one (symbol, network) pair.
// Several rows may share a symbol across networks; lookup is deterministic
// by insertion order.
type WalletAddress struct {
	ID        uuid.UUID `json:"id"`
	Symbol    string    `json:"symbol"`
	Network   string    `json:"network"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	Seq       int64     `json:"-"` // insertion sequence, assigned by the store
}

// BankDetails are the user-supplied receiving details on a sell order.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// Proof is the user-submitted evidence of having sent fiat or crypto.
type Proof struct {
	FileRef     string    `json:"file_ref"`
	Reference   string    `json:"reference"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Order is a buy or sell request moving through the settlement state
// machine. The settlement target and quoted price are snapshotted at
// creation so later catalog edits cannot change a live order.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Direction       string          `json:"direction"` // "buy" or "sell"
	Symbol          string          `json:"symbol"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	RequestedUnit   string          `json:"requested_unit"` // "crypto" or "fiat"
	CryptoAmount    decimal.Decimal `json:"crypto_amount"`
	FiatAmountNGN   decimal.Decimal `json:"fiat_amount_ngn"`
	UnitPriceNGN    decimal.Decimal `json:"unit_price_ngn"`
	MarginPct       decimal.Decimal `json:"margin_pct"`
	FeeNGN          decimal.Decimal `json:"fee_ngn"`
	Status          string          `json:"status"`

	// Buy settlement snapshot.
	BankAccount *BankAccount `json:"bank_account,omitempty"`
	// Sell settlement snapshot.
	Wallet      *WalletAddress `json:"wallet,omitempty"`
	Network     string         `json:"network,omitempty"`
	BankDetails *BankDetails   `json:"bank_details,omitempty"`

	Proof         *Proof     `json:"proof,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CancelReason  string     `json:"cancel_reason,omitempty"`
	QuoteID       uuid.UUID  `json:"quote_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Quote is a short-lived price commitment handed to the client. Create
// re-validates the token instead of re-reading live catalog state, so an
// admin edit mid-request cannot change the price the user was shown.
type Quote struct {
	ID           uuid.UUID       `json:"id"`
	Symbol       string          `json:"symbol"`
	Direction    string          `json:"direction"`
	UnitPriceNGN decimal.Decimal `json:"unit_price_ngn"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// Stats is the admin dashboard projection, a pure function of the order
// set at read time.
type Stats struct {
	TotalOrders        int             `json:"total_orders"`
	ActiveTransactions int             `json:"active_transactions"`
	CompletedOrders    int             `json:"completed_orders"`
	FailedOrders       int             `json:"failed_orders"`
	CancelledOrders    int             `json:"cancelled_orders"`
	TotalVolumeNGN     decimal.Decimal `json:"total_volume_ngn"`
	TotalRevenueNGN    decimal.Decimal `json:"total_revenue_ngn"`
	PendingKYC         int             `json:"pending_kyc"`
	ByStatus           map[string]int  `json:"by_status"`
}
