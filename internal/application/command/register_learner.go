package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER LEARNER COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterLearnerCommand contains the data to register a learner.
type RegisterLearnerCommand struct {
	// LearnerID is optional; a UUID is generated when empty.
	LearnerID string

	// DisplayName is the learner's visible name.
	DisplayName string
}

// Validate validates the command.
func (c RegisterLearnerCommand) Validate() error {
	if strings.TrimSpace(c.DisplayName) == "" {
		return fmt.Errorf("register_learner: %w", learner.ErrInvalidDisplayName)
	}
	if c.LearnerID != "" {
		if _, err := shared.NewLearnerID(c.LearnerID); err != nil {
			return fmt.Errorf("register_learner: %w", err)
		}
	}
	return nil
}

// RegisterLearnerResult contains the outcome of registration.
type RegisterLearnerResult struct {
	LearnerID   string
	DisplayName string
	Level       int
	CreatedAt   time.Time
}

// RegisterLearnerHandler handles the RegisterLearnerCommand.
type RegisterLearnerHandler struct {
	learnerRepo learner.Repository
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewRegisterLearnerHandler creates a new RegisterLearnerHandler.
func NewRegisterLearnerHandler(
	learnerRepo learner.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RegisterLearnerHandler {
	return &RegisterLearnerHandler{
		learnerRepo: learnerRepo,
		publisher:   publisher,
		log:         log,
	}
}

// Handle executes the register learner command.
func (h *RegisterLearnerHandler) Handle(ctx context.Context, cmd RegisterLearnerCommand) (*RegisterLearnerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := cmd.LearnerID
	if id == "" {
		id = uuid.NewString()
	}

	lrn, err := learner.NewLearner(learner.NewLearnerParams{
		ID:          id,
		DisplayName: cmd.DisplayName,
	})
	if err != nil {
		return nil, fmt.Errorf("register_learner: %w", err)
	}

	if err := h.learnerRepo.Create(ctx, lrn); err != nil {
		if errors.Is(err, learner.ErrLearnerAlreadyExists) {
			return nil, learner.ErrLearnerAlreadyExists
		}
		return nil, fmt.Errorf("register_learner: failed to create learner: %w", err)
	}

	_ = h.publisher.Publish(shared.NewLearnerRegisteredEvent(lrn.ID, lrn.DisplayName))

	h.log.Info("learner registered", logger.LearnerID(lrn.ID))

	return &RegisterLearnerResult{
		LearnerID:   lrn.ID,
		DisplayName: lrn.DisplayName,
		Level:       lrn.Level().Int(),
		CreatedAt:   lrn.CreatedAt,
	}, nil
}
