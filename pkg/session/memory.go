package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a goroutine-safe in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	capacity int
	now      func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithCapacity bounds the number of live sessions. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) { s.capacity = n }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.expiredAt(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrExpired
	}
	return sess, nil
}

// Set implements Store. Expired sessions are evicted before the capacity
// check. A stored session expires by the store's clock.
func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; !exists && s.capacity > 0 && len(s.sessions) >= s.capacity {
		s.evictLocked()
		if len(s.sessions) >= s.capacity {
			return ErrFull
		}
	}
	sess.adopt(s.now)
	s.sessions[sess.ID] = sess
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Cleanup implements Store.
func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(), nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) evictLocked() int {
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if sess.expiredAt(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor calls Cleanup every interval until ctx is done.
func RunJanitor(ctx context.Context, store Store, interval time.Duration, onEvict func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err == nil && n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
