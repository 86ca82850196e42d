package application

import (
	"sync"
	"time"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

// sessionEntry pairs a session with the mutex that serializes all work on
// it. The mutex outlives any single request: it is created with the entry
// and owned by the store.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// SessionStore maps conversation ids to sessions and owns per-session
// mutual exclusion.
//
// Locking is two-tier. The store's own mutex guards only the registry —
// looking up or creating an entry — and is never held across a pipeline
// run. Each entry's mutex serializes the entire processing of one message
// for that session: seeding, pipeline execution, evidence merge-back, and
// synchronous report delivery. Requests for the same session queue;
// requests for different sessions proceed fully in parallel.
//
// Sessions are held in memory for the process lifetime with no eviction.
// In a long-running deployment the map grows without bound — acceptable
// for the honeypot's evaluation window, a real resource-exhaustion risk
// beyond it (see DESIGN.md).
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	now     func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// WithSession resolves (creating if absent) the session for id, acquires
// its lock, and runs fn with exclusive access. The lock is released on all
// exit paths, including a panic inside fn: message N's full effect is
// visible before message N+1 for the same id begins.
func (s *SessionStore) WithSession(id string, fn func(session *domain.Session) error) error {
	entry := s.entry(id)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return fn(entry.session)
}

// entry returns the registry entry for id, creating the session and its
// lock under the short-lived structural lock.
func (s *SessionStore) entry(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		e = &sessionEntry{session: domain.NewSession(id, s.now())}
		s.entries[id] = e
	}
	return e
}

// Len returns the number of tracked sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
