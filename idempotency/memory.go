package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MemoryStore is the default Store: a mutex-guarded map with per-entry
// expiry. Expired records are swept on every call so the logical size stays
// accurate without a timer. When live entries exceed maxEntries, only the
// most recently inserted half survives, bounding memory at the cost of rare
// early evictions.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]time.Time // key -> expiresAt
	order      []string             // insertion order, oldest first
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates a MemoryStore capped at maxEntries live records.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryStore{
		entries:    make(map[string]time.Time),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) IsDuplicate(_ context.Context, key string) bool {
	if key == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	_, ok := s.entries[key]
	return ok
}

func (s *MemoryStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	if _, exists := s.entries[key]; exists {
		s.removeFromOrder(key)
	}
	s.entries[key] = s.now().Add(ttl)
	s.order = append(s.order, key)

	if len(s.entries) > s.maxEntries {
		s.compact()
	}
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	return len(s.entries)
}

func (s *MemoryStore) Close() {}

// sweep drops expired records. Caller holds the lock.
func (s *MemoryStore) sweep() {
	now := s.now()
	expired := 0
	for key, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, key)
			expired++
		}
	}
	if expired == 0 {
		return
	}

	live := s.order[:0]
	for _, key := range s.order {
		if _, ok := s.entries[key]; ok {
			live = append(live, key)
		}
	}
	s.order = live
}

// compact keeps only the newest half by insertion order. Caller holds the
// lock.
func (s *MemoryStore) compact() {
	keep := s.maxEntries / 2
	if keep >= len(s.order) {
		return
	}

	dropped := s.order[:len(s.order)-keep]
	for _, key := range dropped {
		delete(s.entries, key)
	}
	s.order = append([]string(nil), s.order[len(s.order)-keep:]...)

	logrus.WithFields(logrus.Fields{
		"dropped": len(dropped),
		"kept":    keep,
	}).Info("[DEDUPE] Store compacted, oldest entries evicted")
}

// removeFromOrder drops one occurrence of key from the insertion order so
// an overwrite counts as a fresh insertion. Caller holds the lock.
func (s *MemoryStore) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// setClock replaces the time source, for tests.
func (s *MemoryStore) setClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
