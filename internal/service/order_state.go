package service

import (
	"fmt"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
)

// orderTransitions is the full transition table for the order state
// machine. Awaiting states may jump straight to a terminal outcome because
// admins can resolve an order without waiting for proof. Terminal states
// have no outgoing edges; "pending" is the legacy awaiting alias still
// present on old rows.
var orderTransitions = map[string][]string{
	domain.OrderStatusAwaitingPayment: {
		domain.OrderStatusUnderReview,
		domain.OrderStatusCompleted,
		domain.OrderStatusFailed,
		domain.OrderStatusCancelled,
	},
	domain.OrderStatusAwaitingCrypto: {
		domain.OrderStatusUnderReview,
		domain.OrderStatusCompleted,
		domain.OrderStatusFailed,
		domain.OrderStatusCancelled,
	},
	domain.OrderStatusPending: {
		domain.OrderStatusUnderReview,
		domain.OrderStatusCompleted,
		domain.OrderStatusFailed,
		domain.OrderStatusCancelled,
	},
	domain.OrderStatusUnderReview: {
		domain.OrderStatusCompleted,
		domain.OrderStatusFailed,
		domain.OrderStatusCancelled,
	},
	domain.OrderStatusCompleted: {},
	domain.OrderStatusFailed:    {},
	domain.OrderStatusCancelled: {},
}

func canTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to string) error {
	if !canTransition(from, to) {
		return fmt.Errorf("cannot move order from %s to %s: %w", from, to, models.ErrInvalidTransition)
	}
	return nil
}
