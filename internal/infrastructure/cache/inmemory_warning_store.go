package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/google/uuid"
)

type ackKey struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	key      string
}

// ackEntry is a stored acknowledgement; a zero expiresAt never expires
type ackEntry struct {
	always    bool
	expiresAt time.Time
}

func (e ackEntry) expired(now time.Time) bool {
	return !e.always && !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryWarningStore implements warning.Store using an in-memory map.
// Acknowledgements are local to the process.
type InMemoryWarningStore struct {
	mu        sync.Mutex
	entries   map[ackKey]ackEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryWarningStore creates a store and starts the expiry cleanup goroutine
func NewInMemoryWarningStore(ttl time.Duration) *InMemoryWarningStore {
	store := &InMemoryWarningStore{
		entries:  make(map[ackKey]ackEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Save records an acknowledgement. A permanent acknowledgement is never
// downgraded by a later single one.
func (s *InMemoryWarningStore) Save(ctx context.Context, ack *warning.Acknowledgement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ackKey{tenantID: ack.TenantID, userID: ack.UserID, key: ack.Key}
	if current, ok := s.entries[k]; ok && current.always {
		return nil
	}

	e := ackEntry{always: ack.Always}
	if !ack.Always && s.ttl > 0 {
		e.expiresAt = ack.CreatedAt.Add(s.ttl)
	}
	s.entries[k] = e
	return nil
}

// Consume reports whether the user acknowledged key, removing a single acknowledgement
func (s *InMemoryWarningStore) Consume(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ackKey{tenantID: tenantID, userID: userID, key: key}
	e, ok := s.entries[k]
	if !ok {
		return false, nil
	}
	if e.always {
		return true, nil
	}
	delete(s.entries, k)
	return !e.expired(time.Now()), nil
}

// Size returns the number of stored acknowledgements
func (s *InMemoryWarningStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine
func (s *InMemoryWarningStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	return nil
}

func (s *InMemoryWarningStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *InMemoryWarningStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
}

var _ warning.Store = (*InMemoryWarningStore)(nil)
