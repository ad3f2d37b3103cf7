package eventhandler

import (
	"context"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BADGE EARNED HANDLER
// ═══════════════════════════════════════════════════════════════════════════

// OnBadgeEarnedHandler handles badge.earned events.
type OnBadgeEarnedHandler struct {
	cache learner.Cache
	log   *logger.Logger
}

// NewOnBadgeEarnedHandler creates a new OnBadgeEarnedHandler.
func NewOnBadgeEarnedHandler(cache learner.Cache, log *logger.Logger) *OnBadgeEarnedHandler {
	return &OnBadgeEarnedHandler{
		cache: cache,
		log:   log,
	}
}

// Handle implements shared.EventHandler.
func (h *OnBadgeEarnedHandler) Handle(event shared.Event) error {
	earned, ok := event.(shared.BadgeEarnedEvent)
	if !ok {
		h.log.Warn("received non-BadgeEarnedEvent",
			logger.String("event_type", string(event.EventType())))
		return nil
	}

	h.log.Info("badge earned",
		logger.LearnerID(earned.LearnerID),
		logger.BadgeID(earned.BadgeID),
		logger.String("badge_name", earned.BadgeName),
		logger.XPAmount(earned.XPBonus))

	if h.cache != nil {
		if err := h.cache.Invalidate(context.Background(), earned.LearnerID); err != nil {
			h.log.Warn("failed to invalidate learner cache",
				logger.LearnerID(earned.LearnerID), logger.Err(err))
		}
	}
	return nil
}

// EventType returns the event type this handler consumes.
func (h *OnBadgeEarnedHandler) EventType() shared.EventType {
	return shared.EventBadgeEarned
}
