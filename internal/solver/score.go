package solver

import "math/bits"

// Score compares guess against candidate.
//
// hit counts equal positions. Symbols never repeat inside a code, so the
// symbols the two codes share are exactly the set bits of mask&mask, and
// blow is that count minus the hits. The result is symmetric in its arguments.
func Score(guess, candidate Code) Feedback {
	n := min(guess.n, candidate.n)
	hit := 0
	for i := uint8(0); i < n; i++ {
		if guess.syms[i] == candidate.syms[i] {
			hit++
		}
	}
	common := bits.OnesCount16(guess.mask & candidate.mask)
	return Feedback{Hit: hit, Blow: common - hit}
}
