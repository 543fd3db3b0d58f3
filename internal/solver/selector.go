// internal/solver/selector.go
//
// Minimax guess selection.
//
// For every guess g in the pool, the remaining candidates are grouped by the
// feedback they would produce against g; worst(g) is the size of the largest
// group. The selector returns the g with the smallest worst(g), preferring
// guesses that are themselves candidates, then the earliest in enumeration
// order.
//
// Pool:
//   - PoolFull scans the whole code space (default). A guess outside the
//     candidate set can still split it best.
//   - PoolCandidates scans only the remaining candidates. Cheaper per round,
//     but can cost extra rounds in the worst case.
//
// The pool is cut into contiguous chunks scanned concurrently; each chunk
// reports its own best pick and the picks are reduced with the same ordering,
// so the result does not depend on the worker count.

package solver

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool selects which codes are considered as guesses.
type Pool int

const (
	PoolFull Pool = iota
	PoolCandidates
)

func (p Pool) String() string {
	if p == PoolCandidates {
		return "candidates"
	}
	return "full"
}

// ParsePool accepts "full" or "candidates" (case-insensitive).
func ParsePool(s string) (Pool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return PoolFull, nil
	case "candidates":
		return PoolCandidates, nil
	}
	return PoolFull, fmt.Errorf("%w: unknown guess pool %q", ErrConfiguration, s)
}

// Selector is stateless apart from the cached opening and is safe for
// concurrent use by many solvers over the same Space.
type Selector struct {
	space   *Space
	pool    Pool
	workers int

	openingOnce sync.Once
	opening     Code
	openingErr  error
}

// Option configures a Selector.
type Option func(*Selector)

// WithPool sets the guess pool.
func WithPool(p Pool) Option { return func(s *Selector) { s.pool = p } }

// WithWorkers bounds the number of goroutines scanning the pool.
// Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option { return func(s *Selector) { s.workers = n } }

// NewSelector builds a selector for space.
func NewSelector(space *Space, opts ...Option) *Selector {
	s := &Selector{space: space, pool: PoolFull}
	for _, o := range opts {
		o(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// Pool reports the configured pool.
func (s *Selector) Pool() Pool { return s.pool }

// Opening returns the suggestion for a fresh game. It only depends on the
// space and the pool, so it is computed once.
func (s *Selector) Opening() (Code, error) {
	s.openingOnce.Do(func() {
		s.opening, s.openingErr = s.Suggest(NewCandidateSet(s.space))
	})
	return s.opening, s.openingErr
}

// Suggest picks the next guess for cs.
func (s *Selector) Suggest(cs *CandidateSet) (Code, error) {
	switch n := cs.Size(); {
	case n == 0:
		return Code{}, ErrExhaustedCandidates
	case n <= 2:
		// Either member settles a pair; take the first in enumeration order.
		return cs.first(), nil
	}

	member := make([]bool, s.space.Size())
	for _, i := range cs.idx {
		member[i] = true
	}
	pool := cs.idx
	if s.pool == PoolFull {
		pool = make([]int32, s.space.Size())
		for i := range pool {
			pool[i] = int32(i)
		}
	}
	cands := cs.Codes()

	size := (len(pool) + s.workers - 1) / s.workers
	picks := make([]pick, (len(pool)+size-1)/size)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for k := range picks {
		lo := k * size
		hi := min(lo+size, len(pool))
		g.Go(func() error {
			picks[k] = s.scan(pool[lo:hi], cands, member)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Code{}, err
	}

	best := pick{index: -1}
	for _, p := range picks {
		if p.index >= 0 && (best.index < 0 || p.better(best)) {
			best = p
		}
	}
	return s.space.codes[best.index], nil
}

// pick is the best guess found in one chunk.
type pick struct {
	index  int32
	worst  int
	member bool
}

func (p pick) better(o pick) bool {
	if p.worst != o.worst {
		return p.worst < o.worst
	}
	if p.member != o.member {
		return p.member
	}
	return p.index < o.index
}

// scan evaluates pool guesses in order and returns the best one.
// A guess is abandoned as soon as one of its groups grows past what could
// still beat the current best.
func (s *Selector) scan(pool []int32, cands []Code, member []bool) pick {
	stride := s.space.Len() + 1
	buckets := make([]int, s.space.outcomes())
	best := pick{index: -1}

	for _, gi := range pool {
		g := s.space.codes[gi]
		isMember := member[gi]

		limit := math.MaxInt
		if best.index >= 0 {
			limit = best.worst - 1
			if isMember && !best.member {
				limit = best.worst
			}
		}
		if limit < 1 {
			continue
		}

		clear(buckets)
		worst := 0
		for _, c := range cands {
			fb := Score(g, c)
			k := fb.Hit*stride + fb.Blow
			buckets[k]++
			if buckets[k] > worst {
				worst = buckets[k]
				if worst > limit {
					break
				}
			}
		}
		if worst <= limit {
			best = pick{index: gi, worst: worst, member: isMember}
		}
	}
	return best
}
