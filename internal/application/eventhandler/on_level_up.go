// Package eventhandler contains domain event handlers.
package eventhandler

import (
	"context"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
// Reacts to level-up events: invalidates the learner's cached snapshot
// so the next read reflects the new level immediately, and logs the
// transition for product analytics.
// ═══════════════════════════════════════════════════════════════════════════

// OnLevelUpHandler handles progress.level_up events.
type OnLevelUpHandler struct {
	cache learner.Cache
	log   *logger.Logger
}

// NewOnLevelUpHandler creates a new OnLevelUpHandler.
func NewOnLevelUpHandler(cache learner.Cache, log *logger.Logger) *OnLevelUpHandler {
	return &OnLevelUpHandler{
		cache: cache,
		log:   log,
	}
}

// Handle implements shared.EventHandler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	levelUp, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.log.Warn("received non-LevelUpEvent",
			logger.String("event_type", string(event.EventType())))
		return nil
	}

	h.log.Info("learner leveled up",
		logger.LearnerID(levelUp.LearnerID),
		logger.Int("old_level", levelUp.OldLevel),
		logger.LevelValue(levelUp.NewLevel),
		logger.XPAmount(levelUp.TotalXP))

	if h.cache != nil {
		if err := h.cache.Invalidate(context.Background(), levelUp.LearnerID); err != nil {
			h.log.Warn("failed to invalidate learner cache",
				logger.LearnerID(levelUp.LearnerID), logger.Err(err))
		}
	}
	return nil
}

// EventType returns the event type this handler consumes.
func (h *OnLevelUpHandler) EventType() shared.EventType {
	return shared.EventLevelUp
}
