package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
)

// ══════════════════════════════════════════════════════════════════════════════
// WORD CATALOGUE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// WordRepository implements catalogue.Repository for PostgreSQL.
type WordRepository struct {
	conn *Connection
}

// NewWordRepository creates a new WordRepository.
func NewWordRepository(conn *Connection) *WordRepository {
	return &WordRepository{conn: conn}
}

// GetByID returns a catalogue item by ID.
func (r *WordRepository) GetByID(ctx context.Context, id string) (*catalogue.Item, error) {
	query := `SELECT id, text, band, numeric_level, added_at FROM words WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanItem(row)
}

// FetchCandidates returns items matching the filter, in a stable order
// so the daily shuffle is deterministic over the same pool.
func (r *WordRepository) FetchCandidates(ctx context.Context, filter catalogue.CandidateFilter) ([]*catalogue.Item, error) {
	query := `SELECT id, text, band, numeric_level, added_at FROM words`
	var (
		conds []string
		args  []interface{}
	)

	if len(filter.Bands) > 0 {
		bands := make([]string, 0, len(filter.Bands))
		for _, band := range filter.Bands {
			bands = append(bands, string(band))
		}
		args = append(args, bands)
		conds = append(conds, fmt.Sprintf("band = ANY($%d)", len(args)))
	}
	if filter.MinNumericLevel > 0 {
		args = append(args, filter.MinNumericLevel)
		conds = append(conds, fmt.Sprintf("numeric_level >= $%d", len(args)))
	}
	if filter.MaxNumericLevel > 0 {
		args = append(args, filter.MaxNumericLevel)
		conds = append(conds, fmt.Sprintf("numeric_level <= $%d", len(args)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query word candidates: %w", err)
	}
	defer rows.Close()

	var items []*catalogue.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Count returns the total number of catalogue items.
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM words`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

// Add inserts a catalogue item. Used by seeding and admin tooling.
func (r *WordRepository) Add(ctx context.Context, item *catalogue.Item) error {
	query := `
		INSERT INTO words (id, text, band, numeric_level, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, query,
		item.ID, item.Text, string(item.Band), item.NumericLevel, item.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to add word: %w", err)
	}
	return nil
}

func (r *WordRepository) scanItem(row pgx.Row) (*catalogue.Item, error) {
	var (
		item catalogue.Item
		band string
	)

	err := row.Scan(&item.ID, &item.Text, &band, &item.NumericLevel, &item.AddedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, catalogue.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to scan word: %w", err)
	}

	item.Band = catalogue.DifficultyBand(band)
	return &item, nil
}
