// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Learner events
	EventLearnerRegistered EventType = "learner.registered"
	EventWordLearned       EventType = "learner.word_learned"
	EventQuotaExhausted    EventType = "learner.quota_exhausted"

	// Progress events
	EventXPGained           EventType = "progress.xp_gained"
	EventLevelUp            EventType = "progress.level_up"
	EventDailyStreakUpdated EventType = "progress.streak_updated"
	EventDailyStreakBroken  EventType = "progress.streak_broken"

	// Review events
	EventReviewRecorded  EventType = "review.recorded"
	EventWordMemorized   EventType = "review.word_memorized"
	EventWordUnmemorized EventType = "review.word_unmemorized"

	// Lesson events
	EventDailyLessonServed EventType = "lesson.daily_served"

	// Badge events
	EventBadgeEarned EventType = "badge.earned"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Learner Events
// ═══════════════════════════════════════════════════════════════════════════

// LearnerRegisteredEvent is emitted when a new learner is registered.
type LearnerRegisteredEvent struct {
	BaseEvent
	LearnerID   string `json:"learner_id"`
	DisplayName string `json:"display_name"`
}

// Payload implements Event interface.
func (e LearnerRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":   e.LearnerID,
		"display_name": e.DisplayName,
	}
}

// NewLearnerRegisteredEvent creates a new LearnerRegisteredEvent.
func NewLearnerRegisteredEvent(learnerID, displayName string) LearnerRegisteredEvent {
	return LearnerRegisteredEvent{
		BaseEvent:   NewBaseEvent(EventLearnerRegistered, learnerID),
		LearnerID:   learnerID,
		DisplayName: displayName,
	}
}

// WordLearnedEvent is emitted when a learner marks a word as learned.
type WordLearnedEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	WordID    string `json:"word_id"`
	Activity  string `json:"activity"`
	XPEarned  int    `json:"xp_earned"`
}

// Payload implements Event interface.
func (e WordLearnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"word_id":    e.WordID,
		"activity":   e.Activity,
		"xp_earned":  e.XPEarned,
	}
}

// NewWordLearnedEvent creates a new WordLearnedEvent.
func NewWordLearnedEvent(learnerID, wordID, activity string, xpEarned int) WordLearnedEvent {
	return WordLearnedEvent{
		BaseEvent: NewBaseEvent(EventWordLearned, learnerID),
		LearnerID: learnerID,
		WordID:    wordID,
		Activity:  activity,
		XPEarned:  xpEarned,
	}
}

// QuotaExhaustedEvent is emitted when a learner hits an activity's daily ceiling.
type QuotaExhaustedEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	Activity  string `json:"activity"`
	Ceiling   int    `json:"ceiling"`
}

// Payload implements Event interface.
func (e QuotaExhaustedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"activity":   e.Activity,
		"ceiling":    e.Ceiling,
	}
}

// NewQuotaExhaustedEvent creates a new QuotaExhaustedEvent.
func NewQuotaExhaustedEvent(learnerID, activity string, ceiling int) QuotaExhaustedEvent {
	return QuotaExhaustedEvent{
		BaseEvent: NewBaseEvent(EventQuotaExhausted, learnerID),
		LearnerID: learnerID,
		Activity:  activity,
		Ceiling:   ceiling,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// XPGainedEvent is emitted when a learner gains XP.
type XPGainedEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	Amount    int    `json:"amount"`
	NewTotal  int    `json:"new_total"`
	Source    string `json:"source"` // e.g., "word_learned", "badge_bonus", "manual"
}

// Payload implements Event interface.
func (e XPGainedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"amount":     e.Amount,
		"new_total":  e.NewTotal,
		"source":     e.Source,
	}
}

// NewXPGainedEvent creates a new XPGainedEvent.
func NewXPGainedEvent(learnerID string, amount, newTotal int, source string) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent: NewBaseEvent(EventXPGained, learnerID),
		LearnerID: learnerID,
		Amount:    amount,
		NewTotal:  newTotal,
		Source:    source,
	}
}

// LevelUpEvent is emitted when a learner's derived level increases.
type LevelUpEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	OldLevel  int    `json:"old_level"`
	NewLevel  int    `json:"new_level"`
	TotalXP   int    `json:"total_xp"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"old_level":  e.OldLevel,
		"new_level":  e.NewLevel,
		"total_xp":   e.TotalXP,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(learnerID string, oldLevel, newLevel, totalXP int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, learnerID),
		LearnerID: learnerID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		TotalXP:   totalXP,
	}
}

// DailyStreakUpdatedEvent is emitted when a learner's streak advances.
type DailyStreakUpdatedEvent struct {
	BaseEvent
	LearnerID     string `json:"learner_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// Payload implements Event interface.
func (e DailyStreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":     e.LearnerID,
		"current_streak": e.CurrentStreak,
		"longest_streak": e.LongestStreak,
	}
}

// NewDailyStreakUpdatedEvent creates a new DailyStreakUpdatedEvent.
func NewDailyStreakUpdatedEvent(learnerID string, currentStreak, longestStreak int) DailyStreakUpdatedEvent {
	return DailyStreakUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventDailyStreakUpdated, learnerID),
		LearnerID:     learnerID,
		CurrentStreak: currentStreak,
		LongestStreak: longestStreak,
	}
}

// DailyStreakBrokenEvent is emitted when a learner's daily streak resets.
type DailyStreakBrokenEvent struct {
	BaseEvent
	LearnerID      string `json:"learner_id"`
	PreviousStreak int    `json:"previous_streak"`
	DaysMissed     int    `json:"days_missed"`
}

// Payload implements Event interface.
func (e DailyStreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":      e.LearnerID,
		"previous_streak": e.PreviousStreak,
		"days_missed":     e.DaysMissed,
	}
}

// NewDailyStreakBrokenEvent creates a new DailyStreakBrokenEvent.
func NewDailyStreakBrokenEvent(learnerID string, previousStreak, daysMissed int) DailyStreakBrokenEvent {
	return DailyStreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventDailyStreakBroken, learnerID),
		LearnerID:      learnerID,
		PreviousStreak: previousStreak,
		DaysMissed:     daysMissed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Review Events
// ═══════════════════════════════════════════════════════════════════════════

// ReviewRecordedEvent is emitted after a spaced-repetition review is graded.
type ReviewRecordedEvent struct {
	BaseEvent
	LearnerID    string    `json:"learner_id"`
	WordID       string    `json:"word_id"`
	Quality      int       `json:"quality"`
	IntervalDays int       `json:"interval_days"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// Payload implements Event interface.
func (e ReviewRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":     e.LearnerID,
		"word_id":        e.WordID,
		"quality":        e.Quality,
		"interval_days":  e.IntervalDays,
		"next_review_at": e.NextReviewAt.Format(time.RFC3339),
	}
}

// NewReviewRecordedEvent creates a new ReviewRecordedEvent.
func NewReviewRecordedEvent(learnerID, wordID string, quality, intervalDays int, nextReviewAt time.Time) ReviewRecordedEvent {
	return ReviewRecordedEvent{
		BaseEvent:    NewBaseEvent(EventReviewRecorded, learnerID),
		LearnerID:    learnerID,
		WordID:       wordID,
		Quality:      quality,
		IntervalDays: intervalDays,
		NextReviewAt: nextReviewAt,
	}
}

// MemorizedToggledEvent is emitted when the memorized flag on a
// learner×word pair is flipped.
type MemorizedToggledEvent struct {
	BaseEvent
	LearnerID   string `json:"learner_id"`
	WordID      string `json:"word_id"`
	IsMemorized bool   `json:"is_memorized"`
}

// Payload implements Event interface.
func (e MemorizedToggledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":   e.LearnerID,
		"word_id":      e.WordID,
		"is_memorized": e.IsMemorized,
	}
}

// NewMemorizedToggledEvent creates a new MemorizedToggledEvent.
func NewMemorizedToggledEvent(learnerID, wordID string, isMemorized bool) MemorizedToggledEvent {
	eventType := EventWordUnmemorized
	if isMemorized {
		eventType = EventWordMemorized
	}
	return MemorizedToggledEvent{
		BaseEvent:   NewBaseEvent(eventType, learnerID),
		LearnerID:   learnerID,
		WordID:      wordID,
		IsMemorized: isMemorized,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeEarnedEvent is emitted when a learner earns a badge.
type BadgeEarnedEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
	XPBonus   int    `json:"xp_bonus"`
}

// Payload implements Event interface.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"badge_id":   e.BadgeID,
		"badge_name": e.BadgeName,
		"xp_bonus":   e.XPBonus,
	}
}

// NewBadgeEarnedEvent creates a new BadgeEarnedEvent.
func NewBadgeEarnedEvent(learnerID, badgeID, badgeName string, xpBonus int) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: NewBaseEvent(EventBadgeEarned, learnerID),
		LearnerID: learnerID,
		BadgeID:   badgeID,
		BadgeName: badgeName,
		XPBonus:   xpBonus,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
