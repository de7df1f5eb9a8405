package domain

// Order directions.
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// Asset kinds produced by catalog normalization.
const (
	KindCoin        = "coin"
	KindCustomToken = "custom_token"
)

// Coin catalog status.
const (
	CoinStatusActive   = "active"
	CoinStatusInactive = "inactive"
)

// Order statuses.
const (
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusAwaitingCrypto  = "awaiting_crypto"
	OrderStatusUnderReview     = "under_review"
	OrderStatusCompleted       = "completed"
	OrderStatusFailed          = "failed"
	OrderStatusCancelled       = "cancelled"

	// OrderStatusPending is a legacy alias for the awaiting states. It is
	// accepted on read but never produced by new creation logic.
	OrderStatusPending = "pending"
)

// Units a requested amount can be expressed in.
const (
	UnitCrypto = "crypto"
	UnitFiat   = "fiat"
)

// Admin resolution outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// KYC statuses consumed from the user directory.
const (
	KYCNotSubmitted = "not-submitted"
	KYCPending      = "pending"
	KYCApproved     = "approved"
	KYCRejected     = "rejected"
)

// IsTerminal reports whether no further order transitions are permitted.
func IsTerminal(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// IsAwaiting reports whether the order is waiting for the user to settle.
// The legacy "pending" status counts as awaiting.
func IsAwaiting(status string) bool {
	switch status {
	case OrderStatusAwaitingPayment, OrderStatusAwaitingCrypto, OrderStatusPending:
		return true
	}
	return false
}

// InitialStatus returns the status a freshly created order starts in.
func InitialStatus(direction string) string {
	if direction == DirectionSell {
		return OrderStatusAwaitingCrypto
	}
	return OrderStatusAwaitingPayment
}
