package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wordwise-app/wordwise-progress/internal/domain/review"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW STATE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ReviewRepository implements review.Repository for PostgreSQL.
type ReviewRepository struct {
	conn *Connection
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(conn *Connection) *ReviewRepository {
	return &ReviewRepository{conn: conn}
}

const itemStateColumns = `
	learner_id, word_id, is_memorized, memorized_at, easiness_factor,
	interval_days, repetitions, correct_count, incorrect_count,
	next_review_at, added_at, updated_at
`

// Get returns the state for a (learner, word) pair.
func (r *ReviewRepository) Get(ctx context.Context, learnerID, wordID string) (*review.ItemState, error) {
	query := `SELECT ` + itemStateColumns + `
		FROM learner_item_states WHERE learner_id = $1 AND word_id = $2`

	row := r.conn.QueryRow(ctx, query, learnerID, wordID)
	return r.scanState(row)
}

// Save inserts or updates the state for its (learner, word) pair.
func (r *ReviewRepository) Save(ctx context.Context, state *review.ItemState) error {
	query := `
		INSERT INTO learner_item_states (
			learner_id, word_id, is_memorized, memorized_at, easiness_factor,
			interval_days, repetitions, correct_count, incorrect_count,
			next_review_at, added_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (learner_id, word_id) DO UPDATE SET
			is_memorized = EXCLUDED.is_memorized,
			memorized_at = EXCLUDED.memorized_at,
			easiness_factor = EXCLUDED.easiness_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			correct_count = EXCLUDED.correct_count,
			incorrect_count = EXCLUDED.incorrect_count,
			next_review_at = EXCLUDED.next_review_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		state.LearnerID,
		state.WordID,
		state.IsMemorized,
		nullableTime(state.MemorizedAt),
		state.EasinessFactor,
		state.IntervalDays,
		state.Repetitions,
		state.CorrectCount,
		state.IncorrectCount,
		nullableTime(state.NextReviewAt),
		state.AddedAt,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save item state: %w", err)
	}
	return nil
}

// ListDue returns states due for review, oldest-due first.
func (r *ReviewRepository) ListDue(ctx context.Context, learnerID string, now time.Time, limit int) ([]*review.ItemState, error) {
	query := `SELECT ` + itemStateColumns + `
		FROM learner_item_states
		WHERE learner_id = $1 AND (next_review_at IS NULL OR next_review_at <= $2)
		ORDER BY next_review_at ASC NULLS FIRST
		LIMIT $3`

	rows, err := r.conn.Query(ctx, query, learnerID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due states: %w", err)
	}
	defer rows.Close()

	var states []*review.ItemState
	for rows.Next() {
		state, err := r.scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// CountDue returns how many words are due for review.
func (r *ReviewRepository) CountDue(ctx context.Context, learnerID string, now time.Time) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM learner_item_states
		WHERE learner_id = $1 AND (next_review_at IS NULL OR next_review_at <= $2)
	`, learnerID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due states: %w", err)
	}
	return count, nil
}

// Stats returns aggregate review statistics for a learner.
func (r *ReviewRepository) Stats(ctx context.Context, learnerID string) (review.Stats, error) {
	var stats review.Stats
	err := r.conn.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_memorized),
			COALESCE(SUM(correct_count), 0),
			COALESCE(SUM(incorrect_count), 0)
		FROM learner_item_states
		WHERE learner_id = $1
	`, learnerID).Scan(
		&stats.TotalWords,
		&stats.MemorizedWords,
		&stats.CorrectTotal,
		&stats.IncorrectTotal,
	)
	if err != nil {
		return review.Stats{}, fmt.Errorf("failed to query review stats: %w", err)
	}
	return stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *ReviewRepository) scanState(row pgx.Row) (*review.ItemState, error) {
	var (
		state        review.ItemState
		memorizedAt  *time.Time
		nextReviewAt *time.Time
	)

	err := row.Scan(
		&state.LearnerID,
		&state.WordID,
		&state.IsMemorized,
		&memorizedAt,
		&state.EasinessFactor,
		&state.IntervalDays,
		&state.Repetitions,
		&state.CorrectCount,
		&state.IncorrectCount,
		&nextReviewAt,
		&state.AddedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, review.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to scan item state: %w", err)
	}

	if memorizedAt != nil {
		state.MemorizedAt = memorizedAt.UTC()
	}
	if nextReviewAt != nil {
		state.NextReviewAt = nextReviewAt.UTC()
	}
	return &state, nil
}
