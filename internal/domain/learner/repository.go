package learner

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the storage contract. Implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the persistence operations for learners.
type Repository interface {
	// Create stores a new learner.
	// Returns ErrLearnerAlreadyExists if the learner exists.
	Create(ctx context.Context, learner *Learner) error

	// GetByID returns a learner by internal ID.
	// Returns ErrLearnerNotFound if the learner does not exist.
	GetByID(ctx context.Context, id string) (*Learner, error)

	// Update persists the learner with an optimistic version check.
	// The stored row must still carry learner.Version; on success the
	// version is incremented. Returns shared.ErrOptimisticLock when a
	// concurrent writer got there first, ErrLearnerNotFound when the
	// row is gone.
	Update(ctx context.Context, learner *Learner) error

	// GetTopByXP returns learners ordered by XP descending, for the
	// leaderboard view.
	GetTopByXP(ctx context.Context, limit int) ([]*Learner, error)

	// Count returns the total number of learners.
	Count(ctx context.Context) (int, error)

	// Exists checks learner existence by ID.
	Exists(ctx context.Context, id string) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNED-WORD SET
// ══════════════════════════════════════════════════════════════════════════════

// LearnedWord is one row of the learner's learned-set.
type LearnedWord struct {
	LearnerID string
	WordID    string
	Activity  ActivityKind
	LearnedAt time.Time
}

// LearnedWordRepository stores the append-only learned-word set.
type LearnedWordRepository interface {
	// Append adds a word to the learner's learned-set.
	// Returns ErrWordAlreadyLearned when the pair already exists;
	// this is the idempotency guard for RecordWordLearned.
	Append(ctx context.Context, entry LearnedWord) error

	// Remove deletes a (learner, word) pair. Used only as the
	// compensating action when the learner update behind an Append
	// cannot be committed.
	Remove(ctx context.Context, learnerID, wordID string) error

	// Contains checks membership of a (learner, word) pair.
	Contains(ctx context.Context, learnerID, wordID string) (bool, error)

	// ListWordIDs returns the IDs of all words the learner has learned.
	// Consulted by the daily sampler to exclude learned items.
	ListWordIDs(ctx context.Context, learnerID string) ([]string, error)

	// ListLearnedOn returns the word IDs learned on the given calendar day.
	ListLearnedOn(ctx context.Context, learnerID string, day time.Time) ([]string, error)

	// CountByLearner returns the size of the learner's learned-set.
	CountByLearner(ctx context.Context, learnerID string) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Cache defines caching operations for learner records. Implemented
// over Redis; the write path invalidates on every successful save.
type Cache interface {
	// Get retrieves a learner from the cache.
	Get(ctx context.Context, learnerID string) (*Learner, error)

	// Set stores a learner in the cache.
	Set(ctx context.Context, learner *Learner, ttl time.Duration) error

	// Invalidate removes the learner's cache entries.
	Invalidate(ctx context.Context, learnerID string) error
}
