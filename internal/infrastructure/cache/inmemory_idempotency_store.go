// Package cache provides Redis and in-memory stores for event idempotency
// and exchange-rate lookups.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
)

// ttlMap is a mutex-guarded map whose entries expire.
// A janitor goroutine drops expired entries until Close is called.
type ttlMap struct {
	mu        sync.RWMutex
	entries   map[string]ttlEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type ttlEntry struct {
	value     string
	expiresAt time.Time
}

func newTTLMap(sweep time.Duration) *ttlMap {
	m := &ttlMap{
		entries:  make(map[string]ttlEntry),
		stopChan: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.cleanupLoop(sweep)
	return m
}

func (m *ttlMap) get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (m *ttlMap) set(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = ttlEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

// setNX stores the value unless a live entry exists
func (m *ttlMap) setNX(key, value string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && time.Now().Before(e.expiresAt) {
		return false
	}
	m.entries[key] = ttlEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return true
}

func (m *ttlMap) deletePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

func (m *ttlMap) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *ttlMap) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}

func (m *ttlMap) cleanupLoop(sweep time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *ttlMap) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// InMemoryIdempotencyStore implements IdempotencyStore in process memory.
// Processed IDs are not shared across instances.
type InMemoryIdempotencyStore struct {
	m *ttlMap
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{m: newTTLMap(5 * time.Minute)}
}

// MarkProcessed returns true if the event was newly marked, false if it was already processed
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.m.setNX(eventID, "1", ttl), nil
}

// IsProcessed checks if an event has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := s.m.get(eventID)
	return ok, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.m.close()
	return nil
}

// Size returns the number of entries in the store, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.m.size()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
