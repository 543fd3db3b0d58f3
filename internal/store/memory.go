// internal/store/memory.go
//
// In-memory session store.
// Each session owns one independent *solver.Solver; no candidate state is
// ever shared between sessions.
//
// Characteristics:
//   - Sessions keyed by a random UUID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Idle sessions are removed by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hitblow/internal/solver"
)

// ErrNotFound is returned by Get for unknown or swept sessions.
var ErrNotFound = errors.New("session not found")

// Session is one player's game.
type Session struct {
	ID        string
	Solver    *solver.Solver
	CreatedAt time.Time

	turn sync.Mutex // held across one game step and its bookkeeping

	mu       sync.Mutex
	lastSeen time.Time
	gameID   int64 // history row of the running game, 0 when none
	closed   bool  // running game already finished in history
}

// NewSession wraps s with a fresh random id.
func NewSession(s *solver.Solver) *Session {
	now := time.Now()
	return &Session{ID: uuid.NewString(), Solver: s, CreatedAt: now, lastSeen: now}
}

// LastSeen reports when the session was last fetched.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// Lock serialises multi-step changes to the session's game, such as an
// update together with the history rows it produces.
func (s *Session) Lock() { s.turn.Lock() }

// Unlock releases Lock.
func (s *Session) Unlock() { s.turn.Unlock() }

// Game returns the history row of the running game and whether it is closed.
func (s *Session) Game() (id int64, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID, s.closed
}

// SetGame records the history row of the running game.
func (s *Session) SetGame(id int64, closed bool) {
	s.mu.Lock()
	s.gameID, s.closed = id, closed
	s.mu.Unlock()
}

// Store defines the persistence interface for sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID and marks it as seen.
	// Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session; deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep removes sessions not seen since cutoff and returns how many.
	Sweep(ctx context.Context, cutoff time.Time) int

	// Len is the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
