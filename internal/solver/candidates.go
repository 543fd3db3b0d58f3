// internal/solver/candidates.go
//
// CandidateSet: the codes still consistent with every observation.
//
// Members are stored as enumeration indices into the Space, kept in ascending
// order, so iteration always follows the Space's deterministic order.
//
// Empty-result policy: when a filter would leave no candidate, the empty set
// replaces the old one (Size reports 0) and Filter returns an
// *InconsistentFeedbackError naming the observation and the prior size.
// The set is never left half-filtered.

package solver

import (
	"cmp"
	"slices"
)

// CandidateSet is not safe for concurrent mutation; Solver serialises access.
type CandidateSet struct {
	space *Space
	idx   []int32
}

// NewCandidateSet returns a set holding the full space.
func NewCandidateSet(space *Space) *CandidateSet {
	cs := &CandidateSet{space: space}
	cs.Reset()
	return cs
}

// Reset refills the set with the full space.
func (cs *CandidateSet) Reset() {
	idx := make([]int32, cs.space.Size())
	for i := range idx {
		idx[i] = int32(i)
	}
	cs.idx = idx
}

// Filter keeps exactly the candidates c with Score(guess, c) == fb.
func (cs *CandidateSet) Filter(guess Code, fb Feedback) error {
	before := len(cs.idx)
	kept := make([]int32, 0, before/4+1)
	for _, i := range cs.idx {
		if Score(guess, cs.space.codes[i]) == fb {
			kept = append(kept, i)
		}
	}
	cs.idx = kept
	if len(kept) == 0 {
		return &InconsistentFeedbackError{Guess: guess, Feedback: fb, Before: before}
	}
	return nil
}

// Size is the current candidate count.
func (cs *CandidateSet) Size() int { return len(cs.idx) }

// Codes returns the candidates in enumeration order.
func (cs *CandidateSet) Codes() []Code {
	out := make([]Code, len(cs.idx))
	for k, i := range cs.idx {
		out[k] = cs.space.codes[i]
	}
	return out
}

// Contains reports membership.
func (cs *CandidateSet) Contains(c Code) bool {
	i := cs.space.Index(c)
	if i < 0 {
		return false
	}
	_, found := slices.BinarySearch(cs.idx, int32(i))
	return found
}

// Clone returns an independent copy.
func (cs *CandidateSet) Clone() *CandidateSet {
	return &CandidateSet{space: cs.space, idx: slices.Clone(cs.idx)}
}

// Split partitions the set by the feedback each member would give against guess.
// Outcomes are returned in ascending (hit, blow) order; empty buckets are omitted.
func (cs *CandidateSet) Split(guess Code) []Branch {
	buckets := make(map[Feedback][]int32)
	for _, i := range cs.idx {
		fb := Score(guess, cs.space.codes[i])
		buckets[fb] = append(buckets[fb], i)
	}
	out := make([]Branch, 0, len(buckets))
	for fb, idx := range buckets {
		out = append(out, Branch{Feedback: fb, Set: &CandidateSet{space: cs.space, idx: idx}})
	}
	slices.SortFunc(out, func(a, b Branch) int {
		if c := cmp.Compare(a.Feedback.Hit, b.Feedback.Hit); c != 0 {
			return c
		}
		return cmp.Compare(a.Feedback.Blow, b.Feedback.Blow)
	})
	return out
}

// Branch is one outcome of Split.
type Branch struct {
	Feedback Feedback
	Set      *CandidateSet
}

func (cs *CandidateSet) first() Code { return cs.space.codes[cs.idx[0]] }
