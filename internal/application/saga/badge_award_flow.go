// Package saga contains multi-step application flows that coordinate
// several aggregates and must degrade gracefully when a step fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
	"github.com/wordwise-app/wordwise-progress/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE AWARD FLOW
// Runs after a progress-changing command: evaluates the badge catalogue
// against the learner's stats, awards what is newly satisfied, and folds
// XP bonuses back into the learner. The flow is best-effort by contract:
// its errors are reported to the caller but must never be allowed to
// abort the command that triggered it.
// ══════════════════════════════════════════════════════════════════════════════

// BadgeAwardFlowConfig contains configuration for the flow.
type BadgeAwardFlowConfig struct {
	// EnableXPBonuses toggles folding badge XP bonuses into the learner.
	EnableXPBonuses bool

	// MaxAwardsPerRun bounds how many badges one trigger can award.
	MaxAwardsPerRun int
}

// DefaultBadgeAwardFlowConfig returns sensible defaults.
func DefaultBadgeAwardFlowConfig() BadgeAwardFlowConfig {
	return BadgeAwardFlowConfig{
		EnableXPBonuses: true,
		MaxAwardsPerRun: 10,
	}
}

// BadgeAwardFlow coordinates badge evaluation and awarding.
type BadgeAwardFlow struct {
	catalogueRepo badge.CatalogueRepository
	earnedRepo    badge.EarnedRepository
	learnerRepo   learner.Repository
	publisher     shared.EventPublisher
	retrier       *retry.Retrier
	log           *logger.Logger
	config        BadgeAwardFlowConfig
}

// NewBadgeAwardFlow creates a new BadgeAwardFlow.
func NewBadgeAwardFlow(
	catalogueRepo badge.CatalogueRepository,
	earnedRepo badge.EarnedRepository,
	learnerRepo learner.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
	config BadgeAwardFlowConfig,
) *BadgeAwardFlow {
	if config.MaxAwardsPerRun == 0 {
		config = DefaultBadgeAwardFlowConfig()
	}

	return &BadgeAwardFlow{
		catalogueRepo: catalogueRepo,
		earnedRepo:    earnedRepo,
		learnerRepo:   learnerRepo,
		publisher:     publisher,
		retrier:       retry.ConflictRetrier(),
		log:           log,
		config:        config,
	}
}

// CheckAndAward evaluates the catalogue for the learner and awards every
// badge whose criteria are now satisfied. The hint narrows which criteria
// types are worth checking for the triggering activity; an unknown hint
// checks everything, so the prefilter can only save work, never miss a
// badge.
func (f *BadgeAwardFlow) CheckAndAward(ctx context.Context, learnerID string, hint badge.ActivityHint) ([]badge.Badge, error) {
	lrn, err := f.learnerRepo.GetByID(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("badge_flow: failed to load learner: %w", err)
	}

	catalogued, err := f.catalogueRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("badge_flow: failed to load catalogue: %w", err)
	}

	earned, err := f.earnedRepo.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("badge_flow: failed to load earned badges: %w", err)
	}
	earnedSet := make(map[string]bool, len(earned))
	for _, e := range earned {
		earnedSet[e.BadgeID] = true
	}

	stats := f.statsFor(lrn)

	var (
		awarded    []badge.Badge
		totalBonus int
	)
	for _, b := range catalogued {
		if len(awarded) >= f.config.MaxAwardsPerRun {
			break
		}
		if earnedSet[b.ID] {
			continue
		}
		if !hint.Covers(b.Criteria.Type) {
			continue
		}
		if !b.Criteria.Satisfied(stats) {
			continue
		}

		if err := f.earnedRepo.Append(ctx, badge.EarnedBadge{
			LearnerID: learnerID,
			BadgeID:   b.ID,
			EarnedAt:  time.Now().UTC(),
		}); err != nil {
			if errors.Is(err, badge.ErrAlreadyEarned) {
				continue
			}
			f.log.Error("failed to persist earned badge",
				logger.LearnerID(learnerID), logger.BadgeID(b.ID), logger.Err(err))
			continue
		}

		awarded = append(awarded, b)
		totalBonus += b.XPBonus

		_ = f.publisher.Publish(shared.NewBadgeEarnedEvent(learnerID, b.ID, b.Name, b.XPBonus))

		f.log.Info("badge earned",
			logger.LearnerID(learnerID),
			logger.BadgeID(b.ID),
			logger.XPAmount(b.XPBonus))
	}

	if totalBonus > 0 && f.config.EnableXPBonuses {
		if err := f.applyBonus(ctx, learnerID, totalBonus); err != nil {
			f.log.Error("failed to apply badge xp bonus",
				logger.LearnerID(learnerID), logger.XPAmount(totalBonus), logger.Err(err))
		}
	}

	return awarded, nil
}

// statsFor builds the criteria evaluation snapshot from the aggregate.
func (f *BadgeAwardFlow) statsFor(lrn *learner.Learner) badge.Stats {
	return badge.Stats{
		XP:           lrn.XP.Int(),
		Level:        lrn.Level().Int(),
		WordsLearned: lrn.TotalWordsLearned,
		Streak:       lrn.Streak.Current,
	}
}

// applyBonus folds the accumulated XP bonus back into the learner. Level
// is re-derived from XP, so a bonus can itself cross a threshold.
func (f *BadgeAwardFlow) applyBonus(ctx context.Context, learnerID string, bonus int) error {
	return f.retrier.Do(ctx, func(ctx context.Context) error {
		lrn, err := f.learnerRepo.GetByID(ctx, learnerID)
		if err != nil {
			return retry.Permanent(err)
		}

		outcome, err := lrn.AddXP(bonus)
		if err != nil {
			return retry.Permanent(err)
		}

		if err := f.learnerRepo.Update(ctx, lrn); err != nil {
			if errors.Is(err, shared.ErrOptimisticLock) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		}

		_ = f.publisher.Publish(shared.NewXPGainedEvent(
			learnerID, bonus, outcome.NewTotal.Int(), "badge_bonus"))
		if outcome.LeveledUp {
			_ = f.publisher.Publish(shared.NewLevelUpEvent(
				learnerID, outcome.OldLevel.Int(), outcome.NewLevel.Int(), outcome.NewTotal.Int()))
		}
		return nil
	})
}
