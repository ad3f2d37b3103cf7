// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/application/saga"
	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/review"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
	"github.com/wordwise-app/wordwise-progress/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD WORD LEARNED COMMAND
// The central write path of the progress engine: one learned word becomes
// XP, quota consumption, a streak update, a learned-set entry, lazy
// spaced-repetition state, and possibly new badges.
// ══════════════════════════════════════════════════════════════════════════════

// RecordWordLearnedCommand contains the data to record a learned word.
type RecordWordLearnedCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// WordID is the catalogue ID of the learned word.
	WordID string

	// Activity is the learning flow the word came from.
	Activity learner.ActivityKind

	// Timestamp is when the word was learned (defaults to now if zero).
	Timestamp time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordWordLearnedCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("record_word_learned: learner_id is required")
	}
	if c.WordID == "" {
		return errors.New("record_word_learned: word_id is required")
	}
	if !c.Activity.IsValid() || !c.Activity.LearnsWords() {
		return fmt.Errorf("record_word_learned: %w: %s", shared.ErrUnknownActivity, c.Activity)
	}
	return nil
}

// RecordWordLearnedResult contains the outcome of a successful call.
type RecordWordLearnedResult struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// XPGained is the XP awarded for this word (badge bonuses excluded).
	XPGained int

	// NewXP is the learner's total XP after the award.
	NewXP int

	// NewLevel is the derived level after the award.
	NewLevel int

	// LeveledUp indicates the award crossed a level threshold.
	LeveledUp bool

	// CurrentStreak is the streak after the day-rollover step.
	CurrentStreak int

	// LongestStreak is the best streak the learner has ever held.
	LongestStreak int

	// Counters are the daily counters after the reservation.
	Counters learner.DailyCounters

	// RemainingQuota is what is left of the activity's ceiling today.
	RemainingQuota int

	// NewBadges lists badges earned as a consequence of this word.
	NewBadges []badge.Badge

	// RecordedAt is when the word was recorded.
	RecordedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordWordLearnedHandler handles the RecordWordLearnedCommand.
type RecordWordLearnedHandler struct {
	learnerRepo   learner.Repository
	learnedRepo   learner.LearnedWordRepository
	catalogueRepo catalogue.Repository
	reviewRepo    review.Repository
	scheduler     *review.Scheduler
	badgeFlow     *saga.BadgeAwardFlow
	cache         learner.Cache
	publisher     shared.EventPublisher
	retrier       *retry.Retrier
	log           *logger.Logger

	// Configuration
	quotas    learner.QuotaConfig
	xpPerWord int
}

// RecordWordLearnedConfig contains configuration for the handler.
type RecordWordLearnedConfig struct {
	Quotas    learner.QuotaConfig
	XPPerWord int
}

// DefaultRecordWordLearnedConfig returns the product defaults.
func DefaultRecordWordLearnedConfig() RecordWordLearnedConfig {
	return RecordWordLearnedConfig{
		Quotas:    learner.DefaultQuotaConfig(),
		XPPerWord: 5,
	}
}

// NewRecordWordLearnedHandler creates a new RecordWordLearnedHandler.
func NewRecordWordLearnedHandler(
	learnerRepo learner.Repository,
	learnedRepo learner.LearnedWordRepository,
	catalogueRepo catalogue.Repository,
	reviewRepo review.Repository,
	badgeFlow *saga.BadgeAwardFlow,
	cache learner.Cache,
	publisher shared.EventPublisher,
	log *logger.Logger,
	config RecordWordLearnedConfig,
) *RecordWordLearnedHandler {
	defaults := DefaultRecordWordLearnedConfig()
	if config.XPPerWord <= 0 {
		config.XPPerWord = defaults.XPPerWord
	}
	if config.Quotas == (learner.QuotaConfig{}) {
		config.Quotas = defaults.Quotas
	}

	return &RecordWordLearnedHandler{
		learnerRepo:   learnerRepo,
		learnedRepo:   learnedRepo,
		catalogueRepo: catalogueRepo,
		reviewRepo:    reviewRepo,
		scheduler:     review.NewScheduler(),
		badgeFlow:     badgeFlow,
		cache:         cache,
		publisher:     publisher,
		retrier:       retry.ConflictRetrier(),
		log:           log,
		quotas:        config.Quotas,
		xpPerWord:     config.XPPerWord,
	}
}

// Handle executes the record word learned command.
func (h *RecordWordLearnedHandler) Handle(ctx context.Context, cmd RecordWordLearnedCommand) (*RecordWordLearnedResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// The word must exist in the catalogue.
	if _, err := h.catalogueRepo.GetByID(ctx, cmd.WordID); err != nil {
		return nil, fmt.Errorf("record_word_learned: %w", err)
	}

	// Pre-flight quota check on a scratch copy so the common rejection
	// never touches the learned-set. The reservation inside the retry
	// loop stays the authoritative gate.
	current, err := h.learnerRepo.GetByID(ctx, cmd.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("record_word_learned: %w", err)
	}
	scratch := current.Clone()
	scratch.StartDay(now)
	if err := scratch.CheckAndReserve(cmd.Activity, h.quotas); err != nil {
		return nil, err
	}

	// Idempotency guard: the learned-set is append-only with a unique
	// (learner, word) constraint. The second call for the same pair
	// yields AlreadyLearned with no state change.
	if err := h.learnedRepo.Append(ctx, learner.LearnedWord{
		LearnerID: cmd.LearnerID,
		WordID:    cmd.WordID,
		Activity:  cmd.Activity,
		LearnedAt: now,
	}); err != nil {
		if errors.Is(err, learner.ErrWordAlreadyLearned) || errors.Is(err, shared.ErrAlreadyExists) {
			return nil, learner.ErrWordAlreadyLearned
		}
		return nil, fmt.Errorf("record_word_learned: failed to append learned word: %w", err)
	}

	// Mutate the learner aggregate under optimistic concurrency: reload
	// fresh on every attempt, retry bounded on lost updates.
	var (
		result   *RecordWordLearnedResult
		rollover learner.DayRollover
		outcome  learner.XPOutcome
	)
	err = h.retrier.Do(ctx, func(ctx context.Context) error {
		lrn, err := h.learnerRepo.GetByID(ctx, cmd.LearnerID)
		if err != nil {
			return retry.Permanent(err)
		}

		rollover = lrn.StartDay(now)

		if err := lrn.CheckAndReserve(cmd.Activity, h.quotas); err != nil {
			return retry.Permanent(err)
		}

		outcome, err = lrn.AddXP(h.xpPerWord)
		if err != nil {
			return retry.Permanent(err)
		}

		lrn.RecordWordLearned()

		if err := h.learnerRepo.Update(ctx, lrn); err != nil {
			if errors.Is(err, shared.ErrOptimisticLock) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		}

		result = &RecordWordLearnedResult{
			LearnerID:      lrn.ID,
			XPGained:       outcome.Gained,
			NewXP:          outcome.NewTotal.Int(),
			NewLevel:       outcome.NewLevel.Int(),
			LeveledUp:      outcome.LeveledUp,
			CurrentStreak:  lrn.Streak.Current,
			LongestStreak:  lrn.Streak.Longest,
			Counters:       lrn.Counters,
			RemainingQuota: lrn.Counters.Remaining(cmd.Activity, h.quotas),
			RecordedAt:     now,
		}
		return nil
	})
	if err != nil {
		// Compensate the learned-set append so a later attempt for the
		// same pair is not rejected by the idempotency guard.
		if remErr := h.learnedRepo.Remove(ctx, cmd.LearnerID, cmd.WordID); remErr != nil {
			h.log.Error("failed to compensate learned-set append",
				logger.LearnerID(cmd.LearnerID), logger.WordID(cmd.WordID), logger.Err(remErr))
		}
		if errors.Is(err, shared.ErrOptimisticLock) {
			return nil, fmt.Errorf("record_word_learned: retries exhausted: %w", err)
		}
		return nil, err
	}

	// Lazily create the spaced-repetition state on first encounter.
	if err := h.ensureReviewState(ctx, cmd.LearnerID, cmd.WordID, now); err != nil {
		h.log.Warn("failed to create review state",
			logger.LearnerID(cmd.LearnerID), logger.WordID(cmd.WordID), logger.Err(err))
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, cmd.LearnerID)
	}

	h.publishEvents(cmd, result, rollover, outcome)

	// Badge evaluation must never abort the progress update: failures
	// are logged and reported as "no badges".
	if h.badgeFlow != nil {
		awarded, err := h.badgeFlow.CheckAndAward(ctx, cmd.LearnerID, badge.HintLearnWord)
		if err != nil {
			h.log.Error("badge evaluation failed",
				logger.LearnerID(cmd.LearnerID), logger.Err(err))
		} else {
			result.NewBadges = awarded
		}
	}

	return result, nil
}

// ensureReviewState creates the initial item state if the pair has none.
func (h *RecordWordLearnedHandler) ensureReviewState(ctx context.Context, learnerID, wordID string, now time.Time) error {
	_, err := h.reviewRepo.Get(ctx, learnerID, wordID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, review.ErrStateNotFound) {
		return err
	}

	state, err := review.NewItemState(learnerID, wordID, now)
	if err != nil {
		return err
	}
	return h.reviewRepo.Save(ctx, state)
}

// publishEvents emits the domain events for a successful record.
func (h *RecordWordLearnedHandler) publishEvents(
	cmd RecordWordLearnedCommand,
	result *RecordWordLearnedResult,
	rollover learner.DayRollover,
	outcome learner.XPOutcome,
) {
	events := []shared.Event{
		shared.NewWordLearnedEvent(cmd.LearnerID, cmd.WordID, cmd.Activity.String(), result.XPGained),
		shared.NewXPGainedEvent(cmd.LearnerID, result.XPGained, result.NewXP, "word_learned"),
	}

	if outcome.LeveledUp {
		events = append(events, shared.NewLevelUpEvent(
			cmd.LearnerID, outcome.OldLevel.Int(), outcome.NewLevel.Int(), result.NewXP))
	}

	if rollover.NewDay {
		if rollover.StreakBroken {
			events = append(events, shared.NewDailyStreakBrokenEvent(
				cmd.LearnerID, rollover.PreviousStreak, rollover.DaysMissed))
		}
		events = append(events, shared.NewDailyStreakUpdatedEvent(
			cmd.LearnerID, result.CurrentStreak, result.LongestStreak))
	}

	for _, event := range events {
		_ = h.publisher.Publish(event)
	}
}
