package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports an unusable (length, symbols) pair.
	ErrConfiguration = errors.New("invalid solver configuration")
	// ErrInvalidFeedback reports a malformed guess, hit or blow. State is untouched.
	ErrInvalidFeedback = errors.New("invalid feedback")
	// ErrInconsistentFeedback reports feedback that leaves no candidate.
	ErrInconsistentFeedback = errors.New("inconsistent feedback")
	// ErrExhaustedCandidates reports use of a session that has no candidates left.
	ErrExhaustedCandidates = errors.New("no candidates left")
)

// InconsistentFeedbackError carries the observation that emptied the
// candidate set and how many candidates existed right before it.
type InconsistentFeedbackError struct {
	Guess    Code
	Feedback Feedback
	Before   int
}

func (e *InconsistentFeedbackError) Error() string {
	return fmt.Sprintf("%s: %s scored %d hit %d blow matches none of %d candidates",
		ErrInconsistentFeedback, e.Guess, e.Feedback.Hit, e.Feedback.Blow, e.Before)
}

// Is makes errors.Is(err, ErrInconsistentFeedback) hold.
func (e *InconsistentFeedbackError) Is(target error) bool {
	return target == ErrInconsistentFeedback
}
