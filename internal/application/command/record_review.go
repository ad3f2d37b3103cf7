package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/review"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD REVIEW COMMAND
// Applies one SM-2 review to a learner×word item state.
// ══════════════════════════════════════════════════════════════════════════════

// RecordReviewCommand contains the data to record a review.
type RecordReviewCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// WordID is the reviewed word.
	WordID string

	// Quality is the recall grade, 0..5.
	Quality int

	// Timestamp is when the review happened (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordReviewCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("record_review: learner_id is required")
	}
	if c.WordID == "" {
		return errors.New("record_review: word_id is required")
	}
	if _, err := shared.NewQuality(c.Quality); err != nil {
		return fmt.Errorf("record_review: %w", err)
	}
	return nil
}

// RecordReviewResult contains the updated scheduling state.
type RecordReviewResult struct {
	LearnerID      string
	WordID         string
	Quality        int
	Passed         bool
	EasinessFactor float64
	IntervalDays   int
	Repetitions    int
	NextReviewAt   time.Time
}

// RecordReviewHandler handles the RecordReviewCommand.
type RecordReviewHandler struct {
	reviewRepo review.Repository
	scheduler  *review.Scheduler
	publisher  shared.EventPublisher
	log        *logger.Logger
}

// NewRecordReviewHandler creates a new RecordReviewHandler.
func NewRecordReviewHandler(
	reviewRepo review.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordReviewHandler {
	return &RecordReviewHandler{
		reviewRepo: reviewRepo,
		scheduler:  review.NewScheduler(),
		publisher:  publisher,
		log:        log,
	}
}

// Handle executes the record review command.
func (h *RecordReviewHandler) Handle(ctx context.Context, cmd RecordReviewCommand) (*RecordReviewResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	state, err := h.getOrCreateState(ctx, cmd.LearnerID, cmd.WordID, now)
	if err != nil {
		return nil, fmt.Errorf("record_review: %w", err)
	}

	if err := h.scheduler.RecordReview(state, cmd.Quality, now); err != nil {
		return nil, fmt.Errorf("record_review: %w", err)
	}

	if err := h.reviewRepo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("record_review: failed to save state: %w", err)
	}

	_ = h.publisher.Publish(shared.NewReviewRecordedEvent(
		cmd.LearnerID, cmd.WordID, cmd.Quality, state.IntervalDays, state.NextReviewAt))

	return &RecordReviewResult{
		LearnerID:      state.LearnerID,
		WordID:         state.WordID,
		Quality:        cmd.Quality,
		Passed:         shared.Quality(cmd.Quality).IsPassing(),
		EasinessFactor: state.EasinessFactor,
		IntervalDays:   state.IntervalDays,
		Repetitions:    state.Repetitions,
		NextReviewAt:   state.NextReviewAt,
	}, nil
}

// getOrCreateState loads the item state, creating it on first review.
func (h *RecordReviewHandler) getOrCreateState(ctx context.Context, learnerID, wordID string, now time.Time) (*review.ItemState, error) {
	state, err := h.reviewRepo.Get(ctx, learnerID, wordID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, review.ErrStateNotFound) {
		return nil, err
	}
	return review.NewItemState(learnerID, wordID, now)
}
