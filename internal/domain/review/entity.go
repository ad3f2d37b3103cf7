// Package review contains the per learner-word spaced-repetition state
// machine (an SM-2 variant). State is created lazily the first time a
// learner engages a word and updated on every graded review.
package review

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrStateNotFound - no review state for the (learner, word) pair.
	ErrStateNotFound = errors.New("review state not found")

	// ErrInvalidQuality - quality grade outside 0..5.
	ErrInvalidQuality = errors.New("invalid quality: must be between 0 and 5")
)

// ══════════════════════════════════════════════════════════════════════════════
// ITEM STATE
// ══════════════════════════════════════════════════════════════════════════════

// DefaultEasiness is the SM-2 starting easiness factor.
const DefaultEasiness = 2.5

// MinEasiness is the SM-2 floor; the factor never drops below it.
const MinEasiness = 1.3

// ItemState holds the spaced-repetition state for one learner-word pair.
type ItemState struct {
	// LearnerID and WordID identify the pair.
	LearnerID string
	WordID    string

	// IsMemorized - manual "I know this" flag, independent of the
	// interval machinery.
	IsMemorized bool

	// MemorizedAt - when the flag was last set. Zero when unset.
	MemorizedAt time.Time

	// EasinessFactor - SM-2 easiness, always >= MinEasiness.
	EasinessFactor float64

	// IntervalDays - current review interval in days.
	IntervalDays int

	// Repetitions - consecutive successful reviews. Resets on failure.
	Repetitions int

	// CorrectCount and IncorrectCount - lifetime grade tallies.
	CorrectCount   int
	IncorrectCount int

	// NextReviewAt - when the word is next due. Zero means never
	// reviewed, which counts as due.
	NextReviewAt time.Time

	// AddedAt - when the learner first engaged the word.
	AddedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewItemState creates the initial state for a learner-word pair.
func NewItemState(learnerID, wordID string, now time.Time) (*ItemState, error) {
	if learnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if wordID == "" {
		return nil, errors.New("word id is required")
	}

	return &ItemState{
		LearnerID:      learnerID,
		WordID:         wordID,
		EasinessFactor: DefaultEasiness,
		IntervalDays:   0,
		Repetitions:    0,
		AddedAt:        now,
		UpdatedAt:      now,
	}, nil
}

// Accuracy returns the lifetime share of correct reviews (0.0 - 1.0).
func (s *ItemState) Accuracy() float64 {
	total := s.CorrectCount + s.IncorrectCount
	if total == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(total)
}

// String returns a string representation for logging.
func (s *ItemState) String() string {
	return fmt.Sprintf(
		"ItemState{Learner: %s, Word: %s, EF: %.2f, Interval: %dd, Reps: %d}",
		s.LearnerID, s.WordID, s.EasinessFactor, s.IntervalDays, s.Repetitions,
	)
}

// Clone creates a copy of the state.
func (s *ItemState) Clone() *ItemState {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
