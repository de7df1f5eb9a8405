package filestore

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Store persists proof-of-payment blobs and returns an opaque reference.
// The engine never reads blobs back; it only keeps the reference.
type Store interface {
	Save(ctx context.Context, filename string, blob []byte) (string, error)
}

// MockStore simulates an object store for development and tests. It
// introduces a small delay and fails at a configurable rate so callers
// exercise their timeout and error paths.
type MockStore struct {
	// FailureRate is the probability of failure (0.0 to 1.0).
	FailureRate float64
	// MaxDelay caps the simulated latency. Zero disables the delay.
	MaxDelay time.Duration

	mu    sync.Mutex
	saved map[string][]byte
	n     int
}

// NewMockStore creates a MockStore that never fails and adds no delay.
func NewMockStore() *MockStore {
	return &MockStore{saved: make(map[string][]byte)}
}

// Save stores the blob under a generated reference.
func (s *MockStore) Save(ctx context.Context, filename string, blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("empty upload: %s", filename)
	}

	if s.MaxDelay > 0 {
		delay := time.Duration(rand.Int63n(int64(s.MaxDelay)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("file store call canceled: %w", ctx.Err())
		}
	}

	if s.FailureRate > 0 && rand.Float64() < s.FailureRate {
		return "", fmt.Errorf("file store temporarily unavailable")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	ref := fmt.Sprintf("proof/%s-%04d/%s", time.Now().UTC().Format("20060102"), s.n, filename)
	s.saved[ref] = blob
	return ref, nil
}

// Has reports whether a reference was stored. Test helper.
func (s *MockStore) Has(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[ref]
	return ok
}
