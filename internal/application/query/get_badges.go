package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET BADGES QUERY
// Earned badges plus progress toward the unearned ones.
// ══════════════════════════════════════════════════════════════════════════════

// GetBadgesQuery contains the query parameters.
type GetBadgesQuery struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string
}

// Validate validates the query.
func (q GetBadgesQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_badges: learner_id is required")
	}
	return nil
}

// EarnedBadgeView is one badge the learner holds.
type EarnedBadgeView struct {
	BadgeID     string    `json:"badge_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	XPBonus     int       `json:"xp_bonus"`
	EarnedAt    time.Time `json:"earned_at"`
}

// BadgeProgressView is one badge the learner has not earned yet.
type BadgeProgressView struct {
	BadgeID     string `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	XPBonus     int    `json:"xp_bonus"`
	Current     int    `json:"current"`
	Target      int    `json:"target"`
	Percentage  int    `json:"percentage"`
	Remaining   int    `json:"remaining"`
}

// BadgeOverview is the result of the badges query.
type BadgeOverview struct {
	LearnerID string              `json:"learner_id"`
	Earned    []EarnedBadgeView   `json:"earned"`
	InFlight  []BadgeProgressView `json:"in_progress"`
}

// GetBadgesHandler handles the GetBadgesQuery.
type GetBadgesHandler struct {
	catalogueRepo badge.CatalogueRepository
	earnedRepo    badge.EarnedRepository
	learnerRepo   learner.Repository
	log           *logger.Logger
}

// NewGetBadgesHandler creates a new GetBadgesHandler.
func NewGetBadgesHandler(
	catalogueRepo badge.CatalogueRepository,
	earnedRepo badge.EarnedRepository,
	learnerRepo learner.Repository,
	log *logger.Logger,
) *GetBadgesHandler {
	return &GetBadgesHandler{
		catalogueRepo: catalogueRepo,
		earnedRepo:    earnedRepo,
		learnerRepo:   learnerRepo,
		log:           log,
	}
}

// Handle executes the get badges query.
func (h *GetBadgesHandler) Handle(ctx context.Context, q GetBadgesQuery) (*BadgeOverview, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	lrn, err := h.learnerRepo.GetByID(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_badges: %w", err)
	}

	catalogued, err := h.catalogueRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_badges: failed to load catalogue: %w", err)
	}

	earned, err := h.earnedRepo.ListByLearner(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_badges: failed to load earned badges: %w", err)
	}
	earnedAt := make(map[string]time.Time, len(earned))
	for _, e := range earned {
		earnedAt[e.BadgeID] = e.EarnedAt
	}

	stats := badge.Stats{
		XP:           lrn.XP.Int(),
		Level:        lrn.Level().Int(),
		WordsLearned: lrn.TotalWordsLearned,
		Streak:       lrn.Streak.Current,
	}

	overview := &BadgeOverview{
		LearnerID: q.LearnerID,
		Earned:    []EarnedBadgeView{},
		InFlight:  []BadgeProgressView{},
	}

	for _, b := range catalogued {
		if at, ok := earnedAt[b.ID]; ok {
			overview.Earned = append(overview.Earned, EarnedBadgeView{
				BadgeID:     b.ID,
				Name:        b.Name,
				Description: b.Description,
				Category:    string(b.Category),
				XPBonus:     b.XPBonus,
				EarnedAt:    at,
			})
			continue
		}

		current := stats.For(b.Criteria.Type)
		remaining := b.Criteria.Target - current
		if remaining < 0 {
			remaining = 0
		}
		overview.InFlight = append(overview.InFlight, BadgeProgressView{
			BadgeID:     b.ID,
			Name:        b.Name,
			Description: b.Description,
			Category:    string(b.Category),
			XPBonus:     b.XPBonus,
			Current:     current,
			Target:      b.Criteria.Target,
			Percentage:  b.Criteria.Progress(stats),
			Remaining:   remaining,
		})
	}
	return overview, nil
}
