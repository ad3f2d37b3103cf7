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
// TOGGLE MEMORIZED COMMAND
// Flips the learner's "memorized" mark on a word, independent of the
// SM-2 scheduling fields.
// ══════════════════════════════════════════════════════════════════════════════

// ToggleMemorizedCommand contains the data to toggle the memorized flag.
type ToggleMemorizedCommand struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// WordID is the word to toggle.
	WordID string

	// Timestamp is when the toggle happened (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c ToggleMemorizedCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("toggle_memorized: learner_id is required")
	}
	if c.WordID == "" {
		return errors.New("toggle_memorized: word_id is required")
	}
	return nil
}

// ToggleMemorizedResult contains the new flag state.
type ToggleMemorizedResult struct {
	LearnerID   string
	WordID      string
	IsMemorized bool
	MemorizedAt time.Time
}

// ToggleMemorizedHandler handles the ToggleMemorizedCommand.
type ToggleMemorizedHandler struct {
	reviewRepo review.Repository
	scheduler  *review.Scheduler
	publisher  shared.EventPublisher
	log        *logger.Logger
}

// NewToggleMemorizedHandler creates a new ToggleMemorizedHandler.
func NewToggleMemorizedHandler(
	reviewRepo review.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *ToggleMemorizedHandler {
	return &ToggleMemorizedHandler{
		reviewRepo: reviewRepo,
		scheduler:  review.NewScheduler(),
		publisher:  publisher,
		log:        log,
	}
}

// Handle executes the toggle memorized command.
func (h *ToggleMemorizedHandler) Handle(ctx context.Context, cmd ToggleMemorizedCommand) (*ToggleMemorizedResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	state, err := h.reviewRepo.Get(ctx, cmd.LearnerID, cmd.WordID)
	if err != nil {
		if errors.Is(err, review.ErrStateNotFound) {
			state, err = review.NewItemState(cmd.LearnerID, cmd.WordID, now)
		}
		if err != nil {
			return nil, fmt.Errorf("toggle_memorized: %w", err)
		}
	}

	h.scheduler.ToggleMemorized(state, now)

	if err := h.reviewRepo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("toggle_memorized: failed to save state: %w", err)
	}

	_ = h.publisher.Publish(shared.NewMemorizedToggledEvent(
		cmd.LearnerID, cmd.WordID, state.IsMemorized))

	return &ToggleMemorizedResult{
		LearnerID:   state.LearnerID,
		WordID:      state.WordID,
		IsMemorized: state.IsMemorized,
		MemorizedAt: state.MemorizedAt,
	}, nil
}
