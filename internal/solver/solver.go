// internal/solver/solver.go
//
// Solver orchestrates one game session.
// Responsibilities:
//   - Own the CandidateSet and the observation history.
//   - Validate feedback before touching any state.
//   - Track state transitions: fresh → in_progress → solved, or → error on
//     contradictory feedback (only Reset recovers).
//
// Concurrency: one RWMutex per Solver. Reset and Update are exclusive;
// Suggest and the read accessors share the lock, so a suggestion is always
// computed against a fully filtered set.

package solver

import "sync"

// Solver is safe for concurrent use.
type Solver struct {
	mu       sync.RWMutex
	space    *Space
	selector *Selector
	cands    *CandidateSet
	history  []Observation
	state    State
}

// New returns a Fresh solver over space. Passing a nil selector uses
// NewSelector(space) with default options.
func New(space *Space, selector *Selector) *Solver {
	if selector == nil {
		selector = NewSelector(space)
	}
	return &Solver{
		space:    space,
		selector: selector,
		cands:    NewCandidateSet(space),
		state:    StateFresh,
	}
}

// Space returns the code space the solver plays in.
func (s *Solver) Space() *Space { return s.space }

// Reset discards all observations and restores the full space.
func (s *Solver) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cands.Reset()
	s.history = nil
	s.state = StateFresh
}

// Suggest returns the next guess to play.
func (s *Solver) Suggest() (Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateError:
		return Code{}, ErrExhaustedCandidates
	case StateFresh:
		return s.selector.Opening()
	}
	return s.selector.Suggest(s.cands)
}

// Update applies the feedback received for guess and returns the new
// candidate count.
//
// Malformed input returns ErrInvalidFeedback and leaves the session as it
// was. Feedback that eliminates every candidate moves the session to
// StateError and returns an *InconsistentFeedbackError. In StateError every
// Update returns ErrExhaustedCandidates until Reset.
func (s *Solver) Update(guess Code, hit, blow int) (int, error) {
	res, err := s.Apply(guess, hit, blow)
	return res.Candidates, err
}

// Outcome describes the session right after one Apply.
type Outcome struct {
	Candidates int
	Round      int // observations since the last reset, this one included
	State      State
	Answer     Code // set once State is StateSolved
}

// Apply is Update returning everything observed under the same lock, so
// callers never pair a count with another request's round.
func (s *Solver) Apply(guess Code, hit, blow int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.space.Validate(guess); err != nil {
		return s.outcome(), err
	}
	fb, err := s.space.Feedback(hit, blow)
	if err != nil {
		return s.outcome(), err
	}
	if s.state == StateError {
		return s.outcome(), ErrExhaustedCandidates
	}

	s.history = append(s.history, Observation{Guess: guess, Feedback: fb})
	if err := s.cands.Filter(guess, fb); err != nil {
		s.state = StateError
		return s.outcome(), err
	}
	if s.cands.Size() == 1 {
		s.state = StateSolved
	} else {
		s.state = StateInProgress
	}
	return s.outcome(), nil
}

func (s *Solver) outcome() Outcome {
	o := Outcome{Candidates: len(s.cands.idx), Round: len(s.history), State: s.state}
	if s.state == StateSolved {
		o.Answer = s.cands.first()
	}
	return o
}

// CandidateCount is the current candidate set size.
func (s *Solver) CandidateCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cands.Size()
}

// State reports the session state.
func (s *Solver) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// History returns a copy of the observations since the last reset,
// including the one that caused StateError, if any.
func (s *Solver) History() []Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Observation(nil), s.history...)
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	State      State         `json:"state"`
	Candidates int           `json:"candidates"`
	Rounds     int           `json:"rounds"`
	Sample     []Code        `json:"sample"`
	History    []Observation `json:"history"`
}

// Snapshot captures state, counts, history and up to sample candidates under
// one read lock.
func (s *Solver) Snapshot(sample int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(max(sample, 0), len(s.cands.idx))
	codes := make([]Code, n)
	for k := 0; k < n; k++ {
		codes[k] = s.space.codes[s.cands.idx[k]]
	}
	return Snapshot{
		State:      s.state,
		Candidates: len(s.cands.idx),
		Rounds:     len(s.history),
		Sample:     codes,
		History:    append([]Observation(nil), s.history...),
	}
}

// Answer returns the solution once the session is solved.
func (s *Solver) Answer() (Code, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateSolved {
		return Code{}, false
	}
	return s.cands.first(), true
}
