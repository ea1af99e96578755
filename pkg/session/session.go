// Package session keeps live solver runs for the HTTP stepping API.
//
// A run cannot be serialized (it holds the open set and a bound heuristic),
// so sessions live in process memory. Each session gets a random UUID, a
// fixed time-to-live that is extended whenever a client touches it, and its
// own lock so concurrent requests never step the same run at once.
//
// # Usage
//
//	store := session.NewMemoryStore(session.WithCapacity(100))
//	sess := session.New(g, run, 30*time.Minute)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err // ErrFull
//	}
//
//	sess, err := store.Get(ctx, id) // ErrNotFound, ErrExpired
//	sess.Do(func(run *search.Run) { run.Step() })
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/search"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")

	// ErrFull is returned when the store is at capacity.
	ErrFull = errors.New("session store is full")
)

// DefaultTTL is the default session lifetime.
const DefaultTTL = 30 * time.Minute

// Session is one live run and the graph it searches.
type Session struct {
	ID        string
	Graph     *graph.Graph
	CreatedAt time.Time

	mu        sync.Mutex
	run       *search.Run
	ttl       time.Duration
	expiresAt time.Time
	now       func() time.Time
}

// New wraps run in a session with a fresh ID.
func New(g *graph.Graph, run *search.Run, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Graph:     g,
		CreatedAt: now,
		run:       run,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
		now:       time.Now,
	}
}

// Do runs fn with exclusive access to the run and extends the session's
// lifetime.
func (s *Session) Do(fn func(run *search.Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = s.now().Add(s.ttl)
	fn(s.run)
}

// adopt switches the session to the store's clock and restarts its lifetime
// from that clock's current time.
func (s *Session) adopt(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.expiresAt = now().Add(s.ttl)
}

// ExpiresAt returns when the session lapses unless touched again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) expiredAt(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if it
	// exists but has lapsed; expired sessions are removed on access.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting an unknown ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and reports how many were dropped.
	Cleanup(ctx context.Context) (int, error)
}
