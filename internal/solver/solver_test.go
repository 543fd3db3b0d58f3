package solver

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classical(t testing.TB) *Solver {
	t.Helper()
	return New(mustSpace(t, 4, 10), nil)
}

func TestSolver_Fresh(t *testing.T) {
	s := classical(t)
	assert.Equal(t, StateFresh, s.State())
	assert.Equal(t, 5040, s.CandidateCount())
	assert.Empty(t, s.History())
	_, ok := s.Answer()
	assert.False(t, ok)
}

// TestSolver_EndToEnd checks that (1,1) against the first suggestion keeps exactly
// the codes scoring (1,1) against it.
func TestSolver_EndToEnd(t *testing.T) {
	s := classical(t)
	g0, err := s.Suggest()
	require.NoError(t, err)
	require.NoError(t, s.Space().Validate(g0))

	n, err := s.Update(g0, 1, 1)
	require.NoError(t, err)

	want := 0
	for _, c := range s.Space().Codes() {
		if Score(g0, c) == (Feedback{Hit: 1, Blow: 1}) {
			want++
		}
	}
	assert.Equal(t, want, n)
	assert.Equal(t, want, s.CandidateCount())
	assert.Less(t, n, 5040)
	assert.Equal(t, StateInProgress, s.State())
	assert.Equal(t, []Observation{{Guess: g0, Feedback: Feedback{Hit: 1, Blow: 1}}}, s.History())
}

// TestSolver_InconsistentFeedback follows the (4,0) then (2,2) scenario.
func TestSolver_InconsistentFeedback(t *testing.T) {
	s := classical(t)
	guess := mustCode(t, s.Space(), 0, 1, 2, 3)

	n, err := s.Update(guess, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateSolved, s.State())
	answer, ok := s.Answer()
	require.True(t, ok)
	assert.Equal(t, guess, answer)

	n, err = s.Update(guess, 2, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentFeedback))
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, s.CandidateCount())
	assert.Equal(t, StateError, s.State())
	assert.Len(t, s.History(), 2)

	_, err = s.Suggest()
	assert.ErrorIs(t, err, ErrExhaustedCandidates)
	_, err = s.Update(guess, 4, 0)
	assert.ErrorIs(t, err, ErrExhaustedCandidates)

	s.Reset()
	assert.Equal(t, StateFresh, s.State())
	assert.Equal(t, 5040, s.CandidateCount())
	_, err = s.Suggest()
	assert.NoError(t, err)
}

// TestSolver_InvalidFeedbackLeavesState verifies validation happens before mutation.
func TestSolver_InvalidFeedbackLeavesState(t *testing.T) {
	s := classical(t)
	guess := mustCode(t, s.Space(), 0, 1, 2, 3)
	_, err := s.Update(guess, 0, 1)
	require.NoError(t, err)
	before := s.Snapshot(5)

	other := mustSpace(t, 3, 10)
	cases := []struct {
		name      string
		guess     Code
		hit, blow int
	}{
		{"negative hit", guess, -1, 0},
		{"negative blow", guess, 0, -1},
		{"too many", guess, 3, 2},
		{"wrong length", mustCode(t, other, 1, 2, 3), 0, 0},
		{"zero code", Code{}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := s.Update(tc.guess, tc.hit, tc.blow)
			assert.ErrorIs(t, err, ErrInvalidFeedback)
			assert.Equal(t, before.Candidates, n)
			assert.Equal(t, before, s.Snapshot(5))
		})
	}
}

func TestSolver_ResetIdempotent(t *testing.T) {
	s := classical(t)
	g, err := s.Suggest()
	require.NoError(t, err)
	_, err = s.Update(g, 0, 0)
	require.NoError(t, err)

	s.Reset()
	first := s.Snapshot(5040)
	s.Reset()
	second := s.Snapshot(5040)
	assert.Equal(t, first, second)
	assert.Equal(t, s.Space().Codes(), first.Sample)
	assert.Equal(t, StateFresh, first.State)
}

// TestSolver_PlaysToSecret plays a few secrets by always answering truthfully.
func TestSolver_PlaysToSecret(t *testing.T) {
	s := classical(t)
	for _, secret := range [][]int{{0, 1, 2, 3}, {9, 8, 7, 6}, {5, 0, 9, 2}, {1, 3, 5, 7}} {
		want := mustCode(t, s.Space(), secret...)
		s.Reset()
		prev := s.CandidateCount()
		for rounds := 0; s.State() != StateSolved; rounds++ {
			require.Less(t, rounds, 8, "secret %s not found", want)
			g, err := s.Suggest()
			require.NoError(t, err)
			fb := Score(g, want)
			n, err := s.Update(g, fb.Hit, fb.Blow)
			require.NoError(t, err)
			assert.LessOrEqual(t, n, prev)
			prev = n
		}
		answer, ok := s.Answer()
		require.True(t, ok)
		assert.Equal(t, want, answer)
	}
}

// TestSolver_ConcurrentAccess exercises the lock; run with -race.
func TestSolver_ConcurrentAccess(t *testing.T) {
	space := mustSpace(t, 3, 6)
	s := New(space, NewSelector(space, WithWorkers(2)))
	secret := mustCode(t, space, 5, 3, 1)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				g, err := s.Suggest()
				if err != nil {
					continue
				}
				fb := Score(g, secret)
				_, _ = s.Update(g, fb.Hit, fb.Blow)
				_ = s.Snapshot(3)
				if i%7 == 0 {
					s.Reset()
				}
			}
		}()
	}
	wg.Wait()

	// Truthful feedback never empties the set, whatever the interleaving.
	assert.NotEqual(t, StateError, s.State())
	assert.GreaterOrEqual(t, s.CandidateCount(), 1)
}

func TestSolver_ApplyReportsRoundAndAnswer(t *testing.T) {
	space := mustSpace(t, 3, 6)
	s := New(space, NewSelector(space))
	secret := mustCode(t, space, 5, 2, 1)

	guess := mustCode(t, space, 0, 1, 2)
	fb := Score(guess, secret)
	out, err := s.Apply(guess, fb.Hit, fb.Blow)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Round)
	assert.Equal(t, StateInProgress, out.State)
	assert.True(t, out.Answer.IsZero())

	out, err = s.Apply(secret, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Candidates: 1, Round: 2, State: StateSolved, Answer: secret}, out)

	// Rejected input reports the unchanged session.
	out, err = s.Apply(guess, 3, 1)
	require.ErrorIs(t, err, ErrInvalidFeedback)
	assert.Equal(t, 2, out.Round)
}

// Concurrent applies on one session each get their own round number.
func TestSolver_ApplyRoundsAreDistinct(t *testing.T) {
	space := mustSpace(t, 3, 6)
	s := New(space, NewSelector(space))
	secret := mustCode(t, space, 5, 2, 1)
	guess := mustCode(t, space, 0, 1, 2)
	fb := Score(guess, secret)

	const n = 16
	rounds := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.Apply(guess, fb.Hit, fb.Blow)
			if err == nil {
				rounds[i] = out.Round
			}
		}()
	}
	wg.Wait()

	seen := map[int]bool{}
	for _, r := range rounds {
		seen[r] = true
	}
	assert.Len(t, seen, n)
	assert.False(t, seen[0])
	assert.Len(t, s.History(), n)
}
