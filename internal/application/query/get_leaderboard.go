package query

import (
	"context"
	"fmt"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery contains the query parameters.
type GetLeaderboardQuery struct {
	// Limit caps the number of entries; defaults to the standard page size.
	Limit int
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	LearnerID   string `json:"learner_id"`
	DisplayName string `json:"display_name"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
}

// Leaderboard is the result of the leaderboard query.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int                `json:"total"`
}

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	learnerRepo learner.Repository
	log         *logger.Logger
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
func NewGetLeaderboardHandler(learnerRepo learner.Repository, log *logger.Logger) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		learnerRepo: learnerRepo,
		log:         log,
	}
}

// Handle executes the get leaderboard query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*Leaderboard, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}
	if limit > shared.MaxPageSize {
		limit = shared.MaxPageSize
	}

	top, err := h.learnerRepo.GetTopByXP(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	total, err := h.learnerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	board := &Leaderboard{
		Entries: make([]LeaderboardEntry, 0, len(top)),
		Total:   total,
	}
	for i, lrn := range top {
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:        i + 1,
			LearnerID:   lrn.ID,
			DisplayName: lrn.DisplayName,
			XP:          lrn.XP.Int(),
			Level:       lrn.Level().Int(),
		})
	}
	return board, nil
}
