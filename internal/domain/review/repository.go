package review

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository stores per learner-word review state.
type Repository interface {
	// Get returns the state for a (learner, word) pair.
	// Returns ErrStateNotFound when the pair has no state yet.
	Get(ctx context.Context, learnerID, wordID string) (*ItemState, error)

	// Save inserts or updates the state for its (learner, word) pair.
	Save(ctx context.Context, state *ItemState) error

	// ListDue returns states due for review at the given time,
	// oldest-due first, up to limit.
	ListDue(ctx context.Context, learnerID string, now time.Time, limit int) ([]*ItemState, error)

	// CountDue returns how many words are due for review.
	CountDue(ctx context.Context, learnerID string, now time.Time) (int, error)

	// Stats returns aggregate review statistics for a learner.
	Stats(ctx context.Context, learnerID string) (Stats, error)
}

// Stats aggregates a learner's review history.
type Stats struct {
	TotalWords     int
	MemorizedWords int
	CorrectTotal   int
	IncorrectTotal int
}

// Accuracy returns the overall share of correct reviews (0.0 - 1.0).
func (s Stats) Accuracy() float64 {
	total := s.CorrectTotal + s.IncorrectTotal
	if total == 0 {
		return 0
	}
	return float64(s.CorrectTotal) / float64(total)
}
