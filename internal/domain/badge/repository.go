package badge

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogueRepository stores the static badge definitions.
type CatalogueRepository interface {
	// ListAll returns every badge definition.
	ListAll(ctx context.Context) ([]Badge, error)

	// GetByID returns one badge definition.
	// Returns ErrBadgeNotFound if the badge does not exist.
	GetByID(ctx context.Context, id string) (*Badge, error)

	// Seed inserts the given definitions, skipping IDs that already
	// exist. Called once at startup.
	Seed(ctx context.Context, badges []Badge) error
}

// EarnedRepository stores each learner's earned-set.
type EarnedRepository interface {
	// ListByLearner returns everything the learner has earned.
	ListByLearner(ctx context.Context, learnerID string) ([]EarnedBadge, error)

	// Append adds a badge to the learner's earned-set.
	// Returns ErrAlreadyEarned on duplicates.
	Append(ctx context.Context, earned EarnedBadge) error

	// Has checks earned-set membership.
	Has(ctx context.Context, learnerID, badgeID string) (bool, error)
}
