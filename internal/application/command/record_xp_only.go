package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/application/saga"
	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
	"github.com/wordwise-app/wordwise-progress/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD XP ONLY COMMAND
// Awards XP for activities that do not learn a word (grammar drills).
// Shares the day-rollover and quota machinery with RecordWordLearned but
// never touches the learned-set or review state.
// ══════════════════════════════════════════════════════════════════════════════

// RecordXPOnlyCommand contains the data to award activity XP.
type RecordXPOnlyCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// Activity must be a kind that does not learn words (grammar).
	Activity learner.ActivityKind

	// Amount is the XP to award; must be positive.
	Amount int

	// Timestamp is when the activity happened (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordXPOnlyCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("record_xp_only: learner_id is required")
	}
	if !c.Activity.IsValid() {
		return fmt.Errorf("record_xp_only: %w: %s", shared.ErrUnknownActivity, c.Activity)
	}
	if c.Activity.LearnsWords() {
		return fmt.Errorf("record_xp_only: %w: %s learns words, use record_word_learned",
			shared.ErrUnknownActivity, c.Activity)
	}
	if c.Amount <= 0 {
		return fmt.Errorf("record_xp_only: %w: %d", learner.ErrInvalidXPAmount, c.Amount)
	}
	return nil
}

// RecordXPOnlyResult contains the outcome of a successful call.
type RecordXPOnlyResult struct {
	LearnerID      string
	XPGained       int
	NewXP          int
	NewLevel       int
	LeveledUp      bool
	CurrentStreak  int
	Counters       learner.DailyCounters
	RemainingQuota int
	NewBadges      []badge.Badge
}

// RecordXPOnlyHandler handles the RecordXPOnlyCommand.
type RecordXPOnlyHandler struct {
	learnerRepo learner.Repository
	badgeFlow   *saga.BadgeAwardFlow
	cache       learner.Cache
	publisher   shared.EventPublisher
	retrier     *retry.Retrier
	log         *logger.Logger
	quotas      learner.QuotaConfig
}

// NewRecordXPOnlyHandler creates a new RecordXPOnlyHandler.
func NewRecordXPOnlyHandler(
	learnerRepo learner.Repository,
	badgeFlow *saga.BadgeAwardFlow,
	cache learner.Cache,
	publisher shared.EventPublisher,
	log *logger.Logger,
	quotas learner.QuotaConfig,
) *RecordXPOnlyHandler {
	return &RecordXPOnlyHandler{
		learnerRepo: learnerRepo,
		badgeFlow:   badgeFlow,
		cache:       cache,
		publisher:   publisher,
		retrier:     retry.ConflictRetrier(),
		log:         log,
		quotas:      quotas,
	}
}

// Handle executes the record XP only command.
func (h *RecordXPOnlyHandler) Handle(ctx context.Context, cmd RecordXPOnlyCommand) (*RecordXPOnlyResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var (
		result   *RecordXPOnlyResult
		rollover learner.DayRollover
		outcome  learner.XPOutcome
	)
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		lrn, err := h.learnerRepo.GetByID(ctx, cmd.LearnerID)
		if err != nil {
			return retry.Permanent(err)
		}

		rollover = lrn.StartDay(now)

		if err := lrn.CheckAndReserve(cmd.Activity, h.quotas); err != nil {
			return retry.Permanent(err)
		}

		outcome, err = lrn.AddXP(cmd.Amount)
		if err != nil {
			return retry.Permanent(err)
		}

		if err := h.learnerRepo.Update(ctx, lrn); err != nil {
			if errors.Is(err, shared.ErrOptimisticLock) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		}

		result = &RecordXPOnlyResult{
			LearnerID:      lrn.ID,
			XPGained:       outcome.Gained,
			NewXP:          outcome.NewTotal.Int(),
			NewLevel:       outcome.NewLevel.Int(),
			LeveledUp:      outcome.LeveledUp,
			CurrentStreak:  lrn.Streak.Current,
			Counters:       lrn.Counters,
			RemainingQuota: lrn.Counters.Remaining(cmd.Activity, h.quotas),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrOptimisticLock) {
			return nil, fmt.Errorf("record_xp_only: retries exhausted: %w", err)
		}
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, cmd.LearnerID)
	}

	_ = h.publisher.Publish(shared.NewXPGainedEvent(
		cmd.LearnerID, result.XPGained, result.NewXP, cmd.Activity.String()))
	if outcome.LeveledUp {
		_ = h.publisher.Publish(shared.NewLevelUpEvent(
			cmd.LearnerID, outcome.OldLevel.Int(), outcome.NewLevel.Int(), result.NewXP))
	}
	if rollover.NewDay && rollover.StreakBroken {
		_ = h.publisher.Publish(shared.NewDailyStreakBrokenEvent(
			cmd.LearnerID, rollover.PreviousStreak, rollover.DaysMissed))
	}

	if h.badgeFlow != nil {
		awarded, err := h.badgeFlow.CheckAndAward(ctx, cmd.LearnerID, badge.HintDailyPractice)
		if err != nil {
			h.log.Error("badge evaluation failed",
				logger.LearnerID(cmd.LearnerID), logger.Err(err))
		} else {
			result.NewBadges = awarded
		}
	}

	return result, nil
}
