package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("idempotency key not found")
	ErrHashMismatch = errors.New("idempotency key body mismatch")
	ErrInProgress   = errors.New("idempotency key in progress")
)

const redisKeyPrefix = "idempotency"

// Record is a completed response replayed for duplicate requests.
type Record struct {
	Key         string
	RequestHash string
	Status      int
	Body        []byte
	ContentType string
	ServedBy    string
}

type envelope struct {
	Key         string `json:"key"`
	Hash        string `json:"hash"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	ContentType string `json:"content_type"`
	InProgress  bool   `json:"in_progress"`
}

// Store caches idempotency records in redis, or in process memory when no
// redis is configured. The memory fallback covers a single replica only,
// which matches the deployments that run without redis.
type Store struct {
	redis redis.Cmdable
	ttl   time.Duration

	mu  sync.Mutex
	mem map[string]memRecord
	now func() time.Time
}

type memRecord struct {
	env       envelope
	expiresAt time.Time
}

func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{
		redis: client,
		ttl:   ttl,
		mem:   make(map[string]memRecord),
		now:   time.Now,
	}
}

// Lookup returns the finished record for key, ErrInProgress while the first
// request is still running, or ErrNotFound when the key is unknown.
func (s *Store) Lookup(ctx context.Context, key, requestHash string) (*Record, error) {
	env, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if env.Hash != requestHash {
		return nil, ErrHashMismatch
	}
	if env.InProgress {
		return nil, ErrInProgress
	}
	served := "memory"
	if s.redis != nil {
		served = "redis"
	}
	return &Record{
		Key:         env.Key,
		RequestHash: env.Hash,
		Status:      env.Status,
		Body:        env.Body,
		ContentType: env.ContentType,
		ServedBy:    served,
	}, nil
}

// Reserve claims the key for the current request. It returns false when
// another request already holds or finished the key.
func (s *Store) Reserve(ctx context.Context, key, requestHash string) (bool, error) {
	env := envelope{Key: key, Hash: requestHash, InProgress: true}

	if s.redis != nil {
		payload, err := json.Marshal(env)
		if err != nil {
			return false, fmt.Errorf("encode idempotency reservation: %w", err)
		}
		ok, err := s.redis.SetNX(ctx, redisKey(key), payload, s.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("reserve idempotency key: %w", err)
		}
		return ok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.mem[key]; ok && s.now().Before(rec.expiresAt) {
		return false, nil
	}
	s.mem[key] = memRecord{env: env, expiresAt: s.now().Add(s.ttl)}
	return true, nil
}

// Finalize records the response for key so duplicates replay it.
func (s *Store) Finalize(ctx context.Context, key, requestHash string, status int, body []byte, contentType string) error {
	env := envelope{
		Key:         key,
		Hash:        requestHash,
		Status:      status,
		Body:        body,
		ContentType: contentType,
	}

	if s.redis != nil {
		payload, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode idempotency record: %w", err)
		}
		if err := s.redis.Set(ctx, redisKey(key), payload, s.ttl).Err(); err != nil {
			return fmt.Errorf("finalize idempotency key: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[key] = memRecord{env: env, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Release drops an in-progress reservation after a handler failure so the
// client can retry.
func (s *Store) Release(ctx context.Context, key string) {
	if s.redis != nil {
		if err := s.redis.Del(ctx, redisKey(key)).Err(); err != nil {
			zap.L().Warn("release idempotency key failed", zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mem, key)
}

// WaitForCompletion polls until the first request finishes or ctx ends.
func (s *Store) WaitForCompletion(ctx context.Context, key, requestHash string) (*Record, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		rec, err := s.Lookup(ctx, key, requestHash)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, ErrInProgress) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ticker.C:
				continue
			}
		}
		return nil, err
	}
}

func (s *Store) load(ctx context.Context, key string) (*envelope, error) {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, redisKey(key)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
		var env envelope
		if err := json.Unmarshal([]byte(val), &env); err != nil {
			return nil, fmt.Errorf("decode idempotency record: %w", err)
		}
		return &env, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.mem[key]
	if !ok || s.now().After(rec.expiresAt) {
		delete(s.mem, key)
		return nil, ErrNotFound
	}
	env := rec.env
	return &env, nil
}

func redisKey(key string) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, key)
}
