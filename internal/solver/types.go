// internal/solver/types.go
//
// Core value types for the Hit and Blow solver.
// Defines:
//   - Code: an immutable, duplicate-free sequence of symbols.
//   - Feedback: the (hit, blow) reply for one guess.
//   - Observation: a guess paired with the feedback it received.
//   - State: coarse lifecycle of a Solver session.

package solver

import (
	"cmp"
	"encoding/json"
	"strings"
)

const (
	// MaxLength is the longest code a Space can hold.
	MaxLength = 8
	// MaxSymbols is the largest alphabet a Space can hold.
	MaxSymbols = 16
	// MaxCodes bounds the size of an enumerated Space.
	MaxCodes = 1 << 20
)

// symbolChars renders one symbol per character (hex digits cover MaxSymbols).
const symbolChars = "0123456789abcdef"

// Code is an ordered sequence of distinct symbols.
// The zero value is the empty code and is never a member of a Space.
// Codes are comparable with == and safe to copy.
type Code struct {
	syms [MaxLength]uint8
	n    uint8
	mask uint16 // bit s set when symbol s occurs
}

// newCode builds a Code without validation; callers guarantee the shape.
func newCode(symbols []uint8) Code {
	var c Code
	for i, s := range symbols {
		c.syms[i] = s
		c.mask |= 1 << s
	}
	c.n = uint8(len(symbols))
	return c
}

// Len returns the number of positions.
func (c Code) Len() int { return int(c.n) }

// At returns the symbol at position i.
func (c Code) At(i int) int { return int(c.syms[i]) }

// Symbols returns the code as a fresh slice of ints.
func (c Code) Symbols() []int {
	out := make([]int, c.n)
	for i := range out {
		out[i] = int(c.syms[i])
	}
	return out
}

// IsZero reports whether c is the empty code.
func (c Code) IsZero() bool { return c.n == 0 }

// Compare orders codes lexicographically, shorter codes first on a common prefix.
func (c Code) Compare(o Code) int {
	n := min(c.n, o.n)
	for i := uint8(0); i < n; i++ {
		if c.syms[i] != o.syms[i] {
			return cmp.Compare(c.syms[i], o.syms[i])
		}
	}
	return cmp.Compare(c.n, o.n)
}

// String renders one character per symbol, e.g. "0123".
func (c Code) String() string {
	var b strings.Builder
	b.Grow(int(c.n))
	for i := uint8(0); i < c.n; i++ {
		b.WriteByte(symbolChars[c.syms[i]])
	}
	return b.String()
}

// MarshalJSON encodes the code as an array of ints, e.g. [0,1,2,3].
func (c Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Symbols())
}

// Feedback is the oracle's reply to a guess.
type Feedback struct {
	Hit  int `json:"hit"`
	Blow int `json:"blow"`
}

// Observation is one (guess, feedback) round since the last reset.
type Observation struct {
	Guess    Code     `json:"guess"`
	Feedback Feedback `json:"feedback"`
}

// State is the lifecycle of one solver session.
type State int

const (
	StateFresh      State = iota // full code space, no observations
	StateInProgress              // at least one observation, more than one candidate
	StateSolved                  // exactly one candidate left
	StateError                   // feedback contradicted itself; only Reset recovers
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateInProgress:
		return "in_progress"
	case StateSolved:
		return "solved"
	case StateError:
		return "error"
	}
	return "unknown"
}

// MarshalText lets State appear as its name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
