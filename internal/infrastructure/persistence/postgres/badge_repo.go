package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// BadgeCatalogueRepository implements badge.CatalogueRepository for PostgreSQL.
type BadgeCatalogueRepository struct {
	conn *Connection
}

// NewBadgeCatalogueRepository creates a new BadgeCatalogueRepository.
func NewBadgeCatalogueRepository(conn *Connection) *BadgeCatalogueRepository {
	return &BadgeCatalogueRepository{conn: conn}
}

// ListAll returns all catalogued badges.
func (r *BadgeCatalogueRepository) ListAll(ctx context.Context) ([]badge.Badge, error) {
	query := `
		SELECT id, name, description, category, criteria_type, target, xp_bonus
		FROM badges ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	var badges []badge.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// GetByID returns one badge definition.
func (r *BadgeCatalogueRepository) GetByID(ctx context.Context, id string) (*badge.Badge, error) {
	query := `
		SELECT id, name, description, category, criteria_type, target, xp_bonus
		FROM badges WHERE id = $1
	`

	b, err := scanBadge(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, badge.ErrBadgeNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Seed inserts badge definitions, skipping ones that already exist.
func (r *BadgeCatalogueRepository) Seed(ctx context.Context, badges []badge.Badge) error {
	query := `
		INSERT INTO badges (id, name, description, category, criteria_type, target, xp_bonus)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	for _, b := range badges {
		_, err := r.conn.Exec(ctx, query,
			b.ID, b.Name, b.Description, string(b.Category),
			string(b.Criteria.Type), b.Criteria.Target, b.XPBonus)
		if err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", b.ID, err)
		}
	}
	return nil
}

func scanBadge(row pgx.Row) (badge.Badge, error) {
	var (
		b            badge.Badge
		category     string
		criteriaType string
	)

	err := row.Scan(
		&b.ID, &b.Name, &b.Description, &category,
		&criteriaType, &b.Criteria.Target, &b.XPBonus)
	if err != nil {
		if IsNoRows(err) {
			return badge.Badge{}, err
		}
		return badge.Badge{}, fmt.Errorf("failed to scan badge: %w", err)
	}

	b.Category = badge.Category(category)
	b.Criteria.Type = badge.CriteriaType(criteriaType)
	return b, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Earned badges
// ─────────────────────────────────────────────────────────────────────────────

// EarnedBadgeRepository implements badge.EarnedRepository for PostgreSQL.
type EarnedBadgeRepository struct {
	conn *Connection
}

// NewEarnedBadgeRepository creates a new EarnedBadgeRepository.
func NewEarnedBadgeRepository(conn *Connection) *EarnedBadgeRepository {
	return &EarnedBadgeRepository{conn: conn}
}

// ListByLearner returns all badges the learner has earned.
func (r *EarnedBadgeRepository) ListByLearner(ctx context.Context, learnerID string) ([]badge.EarnedBadge, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT learner_id, badge_id, earned_at
		FROM learner_badges WHERE learner_id = $1 ORDER BY earned_at
	`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query earned badges: %w", err)
	}
	defer rows.Close()

	var earned []badge.EarnedBadge
	for rows.Next() {
		var e badge.EarnedBadge
		if err := rows.Scan(&e.LearnerID, &e.BadgeID, &e.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		earned = append(earned, e)
	}
	return earned, rows.Err()
}

// Append records a newly earned badge.
func (r *EarnedBadgeRepository) Append(ctx context.Context, e badge.EarnedBadge) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO learner_badges (learner_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
	`, e.LearnerID, e.BadgeID, e.EarnedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return badge.ErrAlreadyEarned
		}
		return fmt.Errorf("failed to append earned badge: %w", err)
	}
	return nil
}

// Has checks whether the learner already holds the badge.
func (r *EarnedBadgeRepository) Has(ctx context.Context, learnerID, badgeID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM learner_badges WHERE learner_id = $1 AND badge_id = $2)
	`, learnerID, badgeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check earned badge: %w", err)
	}
	return exists, nil
}
