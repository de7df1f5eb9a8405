package directory

import (
	"context"
	"sync"

	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/google/uuid"
)

// UserDirectory exposes the identity system's view of a user. The engine
// only reads KYC state; submissions and reviews live elsewhere.
type UserDirectory interface {
	// GetKYCStatus returns one of the domain.KYC* statuses. Unknown users
	// report "not-submitted".
	GetKYCStatus(ctx context.Context, userID uuid.UUID) (string, error)
	// CountPendingKYC returns the number of submissions waiting for review,
	// surfaced on the admin dashboard.
	CountPendingKYC(ctx context.Context) (int, error)
}

// MockDirectory is an in-memory UserDirectory for development and tests.
type MockDirectory struct {
	mu       sync.RWMutex
	statuses map[uuid.UUID]string
}

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{statuses: make(map[uuid.UUID]string)}
}

// SetStatus records a user's KYC status.
func (d *MockDirectory) SetStatus(userID uuid.UUID, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[userID] = status
}

func (d *MockDirectory) GetKYCStatus(_ context.Context, userID uuid.UUID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if status, ok := d.statuses[userID]; ok {
		return status, nil
	}
	return domain.KYCNotSubmitted, nil
}

func (d *MockDirectory) CountPendingKYC(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	count := 0
	for _, status := range d.statuses {
		if status == domain.KYCPending {
			count++
		}
	}
	return count, nil
}
