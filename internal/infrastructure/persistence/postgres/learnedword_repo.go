package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNED-WORD SET REPOSITORY IMPLEMENTATION
// The unique (learner_id, word_id) primary key is the idempotency guard
// for the record-word-learned write path.
// ══════════════════════════════════════════════════════════════════════════════

// LearnedWordRepository implements learner.LearnedWordRepository for PostgreSQL.
type LearnedWordRepository struct {
	conn *Connection
}

// NewLearnedWordRepository creates a new LearnedWordRepository.
func NewLearnedWordRepository(conn *Connection) *LearnedWordRepository {
	return &LearnedWordRepository{conn: conn}
}

// Append adds a word to the learner's learned-set.
func (r *LearnedWordRepository) Append(ctx context.Context, entry learner.LearnedWord) error {
	query := `
		INSERT INTO learned_words (learner_id, word_id, activity, learned_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query,
		entry.LearnerID,
		entry.WordID,
		entry.Activity.String(),
		entry.LearnedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return learner.ErrWordAlreadyLearned
		}
		return fmt.Errorf("failed to append learned word: %w", err)
	}
	return nil
}

// Remove deletes a (learner, word) pair.
func (r *LearnedWordRepository) Remove(ctx context.Context, learnerID, wordID string) error {
	_, err := r.conn.Exec(ctx,
		`DELETE FROM learned_words WHERE learner_id = $1 AND word_id = $2`,
		learnerID, wordID)
	if err != nil {
		return fmt.Errorf("failed to remove learned word: %w", err)
	}
	return nil
}

// Contains checks membership of a (learner, word) pair.
func (r *LearnedWordRepository) Contains(ctx context.Context, learnerID, wordID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM learned_words WHERE learner_id = $1 AND word_id = $2)`,
		learnerID, wordID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check learned word: %w", err)
	}
	return exists, nil
}

// ListWordIDs returns the IDs of all words the learner has learned.
func (r *LearnedWordRepository) ListWordIDs(ctx context.Context, learnerID string) ([]string, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT word_id FROM learned_words WHERE learner_id = $1`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list learned words: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan learned word: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListLearnedOn returns the word IDs learned on the given calendar day.
func (r *LearnedWordRepository) ListLearnedOn(ctx context.Context, learnerID string, day time.Time) ([]string, error) {
	start := timeutil.StartOfDay(day)
	end := timeutil.AddDays(start, 1)

	rows, err := r.conn.Query(ctx, `
		SELECT word_id FROM learned_words
		WHERE learner_id = $1 AND learned_at >= $2 AND learned_at < $3
	`, learnerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list words learned on day: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan learned word: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByLearner returns the size of the learner's learned-set.
func (r *LearnedWordRepository) CountByLearner(ctx context.Context, learnerID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM learned_words WHERE learner_id = $1`, learnerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count learned words: %w", err)
	}
	return count, nil
}
