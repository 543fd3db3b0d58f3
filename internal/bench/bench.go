// internal/bench/bench.go
//
// Plays a selector against every secret of a space.
//
// The solver is deterministic, so every secret that has produced the same
// feedback so far sits at the same node of one decision tree, and the
// candidate set at a node is exactly the set of secrets that reach it. Walking
// that tree asks the selector once per node instead of once per secret and
// round.
//
// Two figures are reported per secret:
//   - rounds:  feedback updates until a single candidate remained.
//   - guesses: guesses until the secret itself was played (hit == length).

package bench

import (
	"errors"
	"fmt"

	"github.com/robalobadob/hitblow/internal/solver"
)

// Report summarises one full run.
type Report struct {
	Secrets      int           `json:"secrets"`
	MaxRounds    int           `json:"maxRounds"`
	MaxGuesses   int           `json:"maxGuesses"`
	TotalRounds  int           `json:"totalRounds"`
	TotalGuesses int           `json:"totalGuesses"`
	Rounds       map[int]int   `json:"rounds"`  // rounds → secrets
	Guesses      map[int]int   `json:"guesses"` // guesses → secrets
	Hardest      []solver.Code `json:"hardest"` // secrets needing MaxGuesses
}

// AverageGuesses is the mean number of guesses per secret.
func (r Report) AverageGuesses() float64 {
	if r.Secrets == 0 {
		return 0
	}
	return float64(r.TotalGuesses) / float64(r.Secrets)
}

// AverageRounds is the mean number of updates until one candidate remained.
func (r Report) AverageRounds() float64 {
	if r.Secrets == 0 {
		return 0
	}
	return float64(r.TotalRounds) / float64(r.Secrets)
}

// ErrNoProgress reports a suggestion that failed to split its node.
var ErrNoProgress = errors.New("bench: suggestion did not narrow the candidates")

// Run walks the decision tree of sel over space. progress, if set, is called
// with the number of secrets resolved so far.
func Run(space *solver.Space, sel *solver.Selector, progress func(done int)) (Report, error) {
	w := &walker{
		length:   space.Len(),
		sel:      sel,
		progress: progress,
		report:   Report{Rounds: map[int]int{}, Guesses: map[int]int{}},
	}
	if err := w.walk(solver.NewCandidateSet(space), 0, -1); err != nil {
		return w.report, err
	}
	return w.report, nil
}

type walker struct {
	length   int
	sel      *solver.Selector
	progress func(int)
	report   Report
}

// walk expands one node. depth counts updates applied so far; singleAt is
// the depth at which the node's set first became a singleton, or -1.
func (w *walker) walk(cs *solver.CandidateSet, depth, singleAt int) error {
	if singleAt < 0 && cs.Size() == 1 {
		singleAt = depth
	}
	guess, err := w.sel.Suggest(cs)
	if err != nil {
		return fmt.Errorf("depth %d: %w", depth, err)
	}
	for _, b := range cs.Split(guess) {
		if b.Feedback.Hit == w.length {
			rounds := singleAt
			if rounds < 0 {
				rounds = depth + 1
			}
			w.record(guess, rounds, depth+1)
			continue
		}
		if b.Set.Size() == cs.Size() {
			return fmt.Errorf("%w: %s at depth %d", ErrNoProgress, guess, depth)
		}
		if err := w.walk(b.Set, depth+1, singleAt); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) record(secret solver.Code, rounds, guesses int) {
	r := &w.report
	r.Secrets++
	r.TotalRounds += rounds
	r.TotalGuesses += guesses
	r.Rounds[rounds]++
	r.Guesses[guesses]++
	r.MaxRounds = max(r.MaxRounds, rounds)
	switch {
	case guesses > r.MaxGuesses:
		r.MaxGuesses = guesses
		r.Hardest = []solver.Code{secret}
	case guesses == r.MaxGuesses:
		r.Hardest = append(r.Hardest, secret)
	}
	if w.progress != nil {
		w.progress(r.Secrets)
	}
}
