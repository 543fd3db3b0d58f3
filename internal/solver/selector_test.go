package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveMinimax is a direct, single-goroutine rendition of the selection rule.
func naiveMinimax(space *Space, cs *CandidateSet, pool []Code) Code {
	var best Code
	bestWorst, bestMember := -1, false
	for _, g := range pool {
		groups := map[Feedback]int{}
		worst := 0
		for _, c := range cs.Codes() {
			groups[Score(g, c)]++
			worst = max(worst, groups[Score(g, c)])
		}
		member := cs.Contains(g)
		if bestWorst < 0 || worst < bestWorst || (worst == bestWorst && member && !bestMember) {
			best, bestWorst, bestMember = g, worst, member
		}
	}
	return best
}

func TestSelector_Empty(t *testing.T) {
	s := mustSpace(t, 4, 10)
	cs := NewCandidateSet(s)
	_ = cs.Filter(mustCode(t, s, 0, 1, 2, 3), Feedback{Hit: 3, Blow: 1})
	require.Equal(t, 0, cs.Size())

	_, err := NewSelector(s).Suggest(cs)
	assert.ErrorIs(t, err, ErrExhaustedCandidates)
}

func TestSelector_SingleAndPair(t *testing.T) {
	s := mustSpace(t, 4, 10)
	sel := NewSelector(s)

	one := NewCandidateSet(s)
	require.NoError(t, one.Filter(mustCode(t, s, 5, 6, 7, 8), Feedback{Hit: 4}))
	got, err := sel.Suggest(one)
	require.NoError(t, err)
	assert.Equal(t, "5678", got.String())

	// 0123 with (2,2) leaves 0132, 0213, 0321, 1023, 2103, 3120;
	// 0456 (0,1) keeps 1023, 2103, 3120; 4156 (1,0) keeps 2103, 3120.
	pair := NewCandidateSet(s)
	require.NoError(t, pair.Filter(mustCode(t, s, 0, 1, 2, 3), Feedback{Hit: 2, Blow: 2}))
	require.Equal(t, 6, pair.Size())
	require.NoError(t, pair.Filter(mustCode(t, s, 0, 4, 5, 6), Feedback{Hit: 0, Blow: 1}))
	require.NoError(t, pair.Filter(mustCode(t, s, 4, 1, 5, 6), Feedback{Hit: 1, Blow: 0}))
	require.Equal(t, 2, pair.Size())
	got, err = sel.Suggest(pair)
	require.NoError(t, err)
	assert.Equal(t, "2103", got.String())
}

// TestSelector_MatchesNaive compares against the brute-force rule on several
// positions of a small game, for both pools and several worker counts.
func TestSelector_MatchesNaive(t *testing.T) {
	s := mustSpace(t, 3, 6)
	secret := mustCode(t, s, 4, 0, 5)

	for _, pool := range []Pool{PoolFull, PoolCandidates} {
		t.Run(pool.String(), func(t *testing.T) {
			cs := NewCandidateSet(s)
			for round := 0; cs.Size() > 2 && round < 10; round++ {
				naivePool := s.Codes()
				if pool == PoolCandidates {
					naivePool = cs.Codes()
				}
				want := naiveMinimax(s, cs, naivePool)
				for _, workers := range []int{1, 3, 8, 1000} {
					got, err := NewSelector(s, WithPool(pool), WithWorkers(workers)).Suggest(cs)
					require.NoError(t, err)
					assert.Equal(t, want, got, "round %d workers %d", round, workers)
				}
				require.NoError(t, cs.Filter(want, Score(want, secret)))
			}
			assert.True(t, cs.Contains(secret))
		})
	}
}

// TestSelector_CandidatePoolStaysInside verifies the cheaper pool only proposes candidates.
func TestSelector_CandidatePoolStaysInside(t *testing.T) {
	s := mustSpace(t, 4, 10)
	cs := NewCandidateSet(s)
	require.NoError(t, cs.Filter(mustCode(t, s, 0, 1, 2, 3), Feedback{Hit: 0, Blow: 2}))

	got, err := NewSelector(s, WithPool(PoolCandidates)).Suggest(cs)
	require.NoError(t, err)
	assert.True(t, cs.Contains(got))
}

// TestSelector_OpeningCached verifies the opening is stable and equals a fresh Suggest.
func TestSelector_OpeningCached(t *testing.T) {
	s := mustSpace(t, 3, 7)
	sel := NewSelector(s)
	a, err := sel.Opening()
	require.NoError(t, err)
	b, err := sel.Opening()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	direct, err := NewSelector(s).Suggest(NewCandidateSet(s))
	require.NoError(t, err)
	assert.Equal(t, direct, a)
	// Every opening is equivalent by symmetry; ties resolve to the first code.
	assert.Equal(t, "012", a.String())
}

func TestParsePool(t *testing.T) {
	p, err := ParsePool("Candidates")
	require.NoError(t, err)
	assert.Equal(t, PoolCandidates, p)

	p, err = ParsePool("")
	require.NoError(t, err)
	assert.Equal(t, PoolFull, p)

	_, err = ParsePool("entropy")
	assert.ErrorIs(t, err, ErrConfiguration)
}
