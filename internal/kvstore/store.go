// Package kvstore is the string key-value store the storefront keeps its
// session-scoped state in: login sessions, carts and, when no database is
// configured, order logs.
package kvstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const keyPrefix = "luxebite"

var ErrNotFound = errors.New("kvstore: key not found")

// Store exposes get/set/remove by string key. A zero ttl keeps the value
// until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key joins parts into a namespaced key, e.g. Key("cart", id) -> "luxebite:cart:<id>".
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps values in process memory. Used in tests and when no
// REDIS_ADDR is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]entry), now: time.Now}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	now := s.now()
	if !e.expired(now) {
		return e.value, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a Set may have replaced the entry since the read lock was dropped
	if cur, ok := s.data[key]; ok && !cur.expired(now) {
		return cur.value, nil
	}
	delete(s.data, key)
	return "", ErrNotFound
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

// Delete is a no-op for missing keys.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
