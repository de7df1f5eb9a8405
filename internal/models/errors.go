package models

import (
	"errors"
	"strings"
)

// Engine error taxonomy. All are recoverable by the caller: retry with
// corrected input or a different order id.
var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrDirectionDisabled  = errors.New("direction disabled for asset")
	ErrAmountOutOfRange   = errors.New("amount out of range")
	ErrNoSettlementMethod = errors.New("no settlement method available")
	ErrMissingBankDetails = errors.New("missing bank details")
	ErrKYCRequired        = errors.New("kyc approval required")
	ErrIncompleteProof    = errors.New("incomplete proof of payment")
	ErrInvalidTransition  = errors.New("invalid order transition")
	ErrConflict           = errors.New("conflict with in-flight order")
	ErrInvalidAmount      = errors.New("invalid amount")

	ErrQuoteExpired   = errors.New("quote expired")
	ErrOrderNotFound  = errors.New("order not found")
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// ValidationErrors accumulates every failed order check so the UI can show
// all problems at once rather than one per round trip.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the underlying errors to errors.Is.
func (v ValidationErrors) Unwrap() []error {
	return v
}

// ErrKind maps a taxonomy error to the slug surfaced to clients.
func ErrKind(err error) string {
	switch {
	case errors.Is(err, ErrAssetNotFound):
		return "asset-not-found"
	case errors.Is(err, ErrDirectionDisabled):
		return "direction-disabled"
	case errors.Is(err, ErrAmountOutOfRange):
		return "amount-out-of-range"
	case errors.Is(err, ErrNoSettlementMethod):
		return "no-settlement-method"
	case errors.Is(err, ErrMissingBankDetails):
		return "missing-bank-details"
	case errors.Is(err, ErrKYCRequired):
		return "kyc-required"
	case errors.Is(err, ErrIncompleteProof):
		return "incomplete-proof"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid-transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid-amount"
	case errors.Is(err, ErrQuoteExpired):
		return "quote-expired"
	case errors.Is(err, ErrOrderNotFound):
		return "order-not-found"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid-request"
	}
	return "internal"
}
