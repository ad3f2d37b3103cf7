package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository for PostgreSQL.
type LearnerRepository struct {
	conn *Connection
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(conn *Connection) *LearnerRepository {
	return &LearnerRepository{conn: conn}
}

const learnerColumns = `
	id, display_name, xp, current_streak, longest_streak, last_activity_at,
	total_words, flashcards, pronunciation, grammar, total_words_learned,
	version, created_at, updated_at
`

// Create creates a new learner.
func (r *LearnerRepository) Create(ctx context.Context, l *learner.Learner) error {
	query := `
		INSERT INTO learners (
			id, display_name, xp, current_streak, longest_streak, last_activity_at,
			total_words, flashcards, pronunciation, grammar, total_words_learned,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.Exec(ctx, query,
		l.ID,
		l.DisplayName,
		l.XP.Int(),
		l.Streak.Current,
		l.Streak.Longest,
		nullableTime(l.LastActivityAt),
		l.Counters.TotalWords,
		l.Counters.Flashcards,
		l.Counters.Pronunciation,
		l.Counters.Grammar,
		l.TotalWordsLearned,
		l.Version,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return learner.ErrLearnerAlreadyExists
		}
		return fmt.Errorf("failed to create learner: %w", err)
	}
	return nil
}

// GetByID returns a learner by internal ID.
func (r *LearnerRepository) GetByID(ctx context.Context, id string) (*learner.Learner, error) {
	query := `SELECT ` + learnerColumns + ` FROM learners WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanLearner(row)
}

// Update persists the learner with an optimistic version check. The row
// must still carry the version the aggregate was loaded with; a zero
// row count means a concurrent writer won.
func (r *LearnerRepository) Update(ctx context.Context, l *learner.Learner) error {
	query := `
		UPDATE learners SET
			display_name = $1,
			xp = $2,
			current_streak = $3,
			longest_streak = $4,
			last_activity_at = $5,
			total_words = $6,
			flashcards = $7,
			pronunciation = $8,
			grammar = $9,
			total_words_learned = $10,
			version = version + 1,
			updated_at = $11
		WHERE id = $12 AND version = $13
	`

	result, err := r.conn.Exec(ctx, query,
		l.DisplayName,
		l.XP.Int(),
		l.Streak.Current,
		l.Streak.Longest,
		nullableTime(l.LastActivityAt),
		l.Counters.TotalWords,
		l.Counters.Flashcards,
		l.Counters.Pronunciation,
		l.Counters.Grammar,
		l.TotalWordsLearned,
		time.Now().UTC(),
		l.ID,
		l.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update learner: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, existsErr := r.Exists(ctx, l.ID)
		if existsErr != nil {
			return fmt.Errorf("failed to update learner: %w", existsErr)
		}
		if !exists {
			return learner.ErrLearnerNotFound
		}
		return shared.ErrOptimisticLock
	}

	l.Version++
	return nil
}

// GetTopByXP returns learners ordered by XP descending.
func (r *LearnerRepository) GetTopByXP(ctx context.Context, limit int) ([]*learner.Learner, error) {
	query := `SELECT ` + learnerColumns + ` FROM learners ORDER BY xp DESC, created_at ASC LIMIT $1`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top learners: %w", err)
	}
	defer rows.Close()

	var learners []*learner.Learner
	for rows.Next() {
		l, err := r.scanLearner(rows)
		if err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

// Count returns the total number of learners.
func (r *LearnerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM learners`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count learners: %w", err)
	}
	return count, nil
}

// Exists checks learner existence by ID.
func (r *LearnerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM learners WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check learner existence: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *LearnerRepository) scanLearner(row pgx.Row) (*learner.Learner, error) {
	var (
		l              learner.Learner
		xp             int
		lastActivityAt *time.Time
	)

	err := row.Scan(
		&l.ID,
		&l.DisplayName,
		&xp,
		&l.Streak.Current,
		&l.Streak.Longest,
		&lastActivityAt,
		&l.Counters.TotalWords,
		&l.Counters.Flashcards,
		&l.Counters.Pronunciation,
		&l.Counters.Grammar,
		&l.TotalWordsLearned,
		&l.Version,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, learner.ErrLearnerNotFound
		}
		return nil, fmt.Errorf("failed to scan learner: %w", err)
	}

	l.XP = shared.XP(xp)
	if lastActivityAt != nil {
		l.LastActivityAt = lastActivityAt.UTC()
	}
	return &l, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
