// Package quotestore persists short-lived quote tokens. Production runs on
// redis so replicas share tokens; the in-memory store backs development and
// tests.
package quotestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a token is missing or has expired.
var ErrNotFound = errors.New("quote not found")

// Store is the TTL keyed storage for quote tokens.
type Store interface {
	Put(ctx context.Context, quote *models.Quote, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*models.Quote, error)
}

const redisKeyPrefix = "quote"

func redisKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, id)
}

// RedisStore keeps quote tokens in redis with a native TTL.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, quote *models.Quote, ttl time.Duration) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(quote.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store quote: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	val, err := s.client.Get(ctx, redisKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load quote: %w", err)
	}
	var quote models.Quote
	if err := json.Unmarshal([]byte(val), &quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return &quote, nil
}

// MemoryStore keeps quote tokens in a map with lazy expiry.
type MemoryStore struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]memEntry
	now    func() time.Time
}

type memEntry struct {
	quote     models.Quote
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[uuid.UUID]memEntry), now: time.Now}
}

// WithClock overrides the expiry clock. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Put(_ context.Context, quote *models.Quote, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.ID] = memEntry{quote: *quote, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.quotes, id)
		return nil, ErrNotFound
	}
	quote := e.quote
	return &quote, nil
}
