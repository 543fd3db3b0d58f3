// internal/solver/space.go
//
// Code space enumeration and validation.
// Responsibilities:
//   - Enumerate every permutation of `length` distinct symbols drawn from
//     0..symbols-1, in lexicographic order.
//   - Parse and validate caller-supplied codes and feedback against the rules.
//
// A Space is immutable after construction and may be shared by any number of
// solvers and goroutines.

package solver

import (
	"fmt"
	"math/bits"
)

// Space is the set of all valid codes for one (length, symbols) rule.
type Space struct {
	length  int
	symbols int
	codes   []Code
	index   map[Code]int32
}

// NewSpace enumerates the code space.
// Fails with ErrConfiguration when a parameter is non-positive, when there are
// fewer symbols than positions, or when the space would exceed the supported maxima.
func NewSpace(length, symbols int) (*Space, error) {
	switch {
	case length <= 0 || symbols <= 0:
		return nil, fmt.Errorf("%w: length %d and symbols %d must be positive", ErrConfiguration, length, symbols)
	case length > symbols:
		return nil, fmt.Errorf("%w: length %d exceeds %d distinct symbols", ErrConfiguration, length, symbols)
	case length > MaxLength:
		return nil, fmt.Errorf("%w: length %d exceeds maximum %d", ErrConfiguration, length, MaxLength)
	case symbols > MaxSymbols:
		return nil, fmt.Errorf("%w: %d symbols exceeds maximum %d", ErrConfiguration, symbols, MaxSymbols)
	}

	total := 1
	for i := 0; i < length; i++ {
		total *= symbols - i
		if total > MaxCodes {
			return nil, fmt.Errorf("%w: %d-of-%d space exceeds %d codes", ErrConfiguration, length, symbols, MaxCodes)
		}
	}

	s := &Space{
		length:  length,
		symbols: symbols,
		codes:   make([]Code, 0, total),
		index:   make(map[Code]int32, total),
	}
	s.enumerate(make([]uint8, 0, length), 0)
	for i, c := range s.codes {
		s.index[c] = int32(i)
	}
	return s, nil
}

// enumerate appends every completion of prefix in ascending symbol order.
func (s *Space) enumerate(prefix []uint8, used uint16) {
	if len(prefix) == s.length {
		s.codes = append(s.codes, newCode(prefix))
		return
	}
	for sym := 0; sym < s.symbols; sym++ {
		if used&(1<<sym) != 0 {
			continue
		}
		s.enumerate(append(prefix, uint8(sym)), used|1<<sym)
	}
}

// Len is the code length L.
func (s *Space) Len() int { return s.length }

// Symbols is the alphabet size A.
func (s *Space) Symbols() int { return s.symbols }

// Size is the number of valid codes.
func (s *Space) Size() int { return len(s.codes) }

// Codes returns a copy of every code in enumeration order.
func (s *Space) Codes() []Code {
	return append([]Code(nil), s.codes...)
}

// Index returns the enumeration position of c, or -1 when c is not in the space.
func (s *Space) Index(c Code) int {
	if i, ok := s.index[c]; ok {
		return int(i)
	}
	return -1
}

// Parse is the only way to build a Code from caller input.
func (s *Space) Parse(symbols []int) (Code, error) {
	if len(symbols) != s.length {
		return Code{}, fmt.Errorf("%w: guess has %d symbols, want %d", ErrInvalidFeedback, len(symbols), s.length)
	}
	raw := make([]uint8, len(symbols))
	var seen uint16
	for i, v := range symbols {
		if v < 0 || v >= s.symbols {
			return Code{}, fmt.Errorf("%w: symbol %d at position %d outside 0..%d", ErrInvalidFeedback, v, i, s.symbols-1)
		}
		if seen&(1<<v) != 0 {
			return Code{}, fmt.Errorf("%w: symbol %d repeated", ErrInvalidFeedback, v)
		}
		seen |= 1 << v
		raw[i] = uint8(v)
	}
	return newCode(raw), nil
}

// Validate checks that c belongs to this space.
func (s *Space) Validate(c Code) error {
	if c.Len() != s.length {
		return fmt.Errorf("%w: guess has %d symbols, want %d", ErrInvalidFeedback, c.Len(), s.length)
	}
	if bits.OnesCount16(c.mask) != s.length || int(c.mask)>>s.symbols != 0 {
		return fmt.Errorf("%w: guess %s is not a valid code", ErrInvalidFeedback, c)
	}
	return nil
}

// Feedback builds a Feedback after checking 0 <= hit, 0 <= blow, hit+blow <= L.
func (s *Space) Feedback(hit, blow int) (Feedback, error) {
	if hit < 0 || blow < 0 {
		return Feedback{}, fmt.Errorf("%w: hit %d and blow %d must be non-negative", ErrInvalidFeedback, hit, blow)
	}
	if hit+blow > s.length {
		return Feedback{}, fmt.Errorf("%w: hit %d + blow %d exceeds length %d", ErrInvalidFeedback, hit, blow, s.length)
	}
	return Feedback{Hit: hit, Blow: blow}, nil
}

// outcomes is the number of distinct feedback buckets, indexed hit*(L+1)+blow.
func (s *Space) outcomes() int { return (s.length + 1) * (s.length + 1) }
