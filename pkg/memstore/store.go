// Package memstore keeps rate-limit counters and generation locks in process memory
// for deployments that run without redis. Each Store is owned by the process that
// constructs it; expired entries are swept by the underlying expirable LRU on a timer.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultSize = 10000

// Options configures a Store.
type Options struct {
	// Size caps the number of tracked keys per keyspace; the least recently used key is evicted first.
	Size int
	// CounterTTL is how long a counter lives after its first increment.
	CounterTTL time.Duration
	// LockTTL is how long a lock is held before it expires on its own.
	LockTTL time.Duration
}

// Store provides the IncrWithTTL/AcquireLock/ReleaseLock surface of the redis client.
// Per-call TTL arguments are ignored: entries live for the TTL configured on the Store.
type Store struct {
	mu       sync.Mutex
	counters *expirable.LRU[string, *counter]
	locks    *expirable.LRU[string, string]
}

type counter struct {
	value int64
}

// New builds a Store. Zero TTLs fall back to one minute.
func New(opts Options) *Store {
	if opts.Size <= 0 {
		opts.Size = defaultSize
	}
	if opts.CounterTTL <= 0 {
		opts.CounterTTL = time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = time.Minute
	}
	return &Store{
		counters: expirable.NewLRU[string, *counter](opts.Size, nil, opts.CounterTTL),
		locks:    expirable.NewLRU[string, string](opts.Size, nil, opts.LockTTL),
	}
}

// IncrWithTTL increments the counter stored at key, starting a fresh window when absent or expired.
func (s *Store) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters.Get(key)
	if !ok {
		c = &counter{}
		s.counters.Add(key, c)
	}
	c.value++
	return c.value, nil
}

// AcquireLock records token as the holder of key unless another holder is live.
func (s *Store) AcquireLock(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.locks.Get(key); held {
		return false, nil
	}
	s.locks.Add(key, token)
	return true, nil
}

// ReleaseLock drops key if token still holds it.
func (s *Store) ReleaseLock(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if holder, ok := s.locks.Peek(key); ok && holder == token {
		s.locks.Remove(key)
	}
	return nil
}

// RateLimitKey mirrors the redis key layout for rate limit counters.
func (s *Store) RateLimitKey(scope string) string {
	return "rate_limit:" + scope
}

// GenerationLockKey mirrors the redis key layout for generation locks.
func (s *Store) GenerationLockKey(quizID string) string {
	return "generation_lock:" + quizID
}

// Len reports the number of live counters and locks.
func (s *Store) Len() (counters, locks int) {
	return s.counters.Len(), s.locks.Len()
}

// Purge drops every tracked key.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Purge()
	s.locks.Purge()
}
