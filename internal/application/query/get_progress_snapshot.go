// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
	"github.com/wordwise-app/wordwise-progress/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS SNAPSHOT QUERY
// A read never mutates: counters and streak are projected to what a
// mutation right now would produce, without persisting anything.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressSnapshotQuery contains the query parameters.
type GetProgressSnapshotQuery struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// At is the observation time (defaults to now if zero).
	At time.Time
}

// Validate validates the query.
func (q GetProgressSnapshotQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_progress_snapshot: learner_id is required")
	}
	return nil
}

// QuotaState reports one activity's daily usage.
type QuotaState struct {
	Used      int `json:"used"`
	Ceiling   int `json:"ceiling"`
	Remaining int `json:"remaining"`
}

// ProgressSnapshot is the learner's progress as of the observation time.
type ProgressSnapshot struct {
	LearnerID         string                `json:"learner_id"`
	DisplayName       string                `json:"display_name"`
	XP                int                   `json:"xp"`
	Level             int                   `json:"level"`
	XPToNextLevel     *int                  `json:"xp_to_next_level,omitempty"`
	ProgressPercent   int                   `json:"progress_percent"`
	CurrentStreak     int                   `json:"current_streak"`
	LongestStreak     int                   `json:"longest_streak"`
	TotalWordsLearned int                   `json:"total_words_learned"`
	Quotas            map[string]QuotaState `json:"quotas"`
	ObservedAt        time.Time             `json:"observed_at"`
}

// GetProgressSnapshotHandler handles the GetProgressSnapshotQuery.
type GetProgressSnapshotHandler struct {
	learnerRepo learner.Repository
	cache       learner.Cache
	log         *logger.Logger
	quotas      learner.QuotaConfig

	// projectStreak controls whether a lapsed streak reads as zero
	// before the next activity resets it, or keeps showing the stale
	// stored value.
	projectStreak bool
}

// NewGetProgressSnapshotHandler creates a new GetProgressSnapshotHandler.
func NewGetProgressSnapshotHandler(
	learnerRepo learner.Repository,
	cache learner.Cache,
	log *logger.Logger,
	quotas learner.QuotaConfig,
	projectStreak bool,
) *GetProgressSnapshotHandler {
	return &GetProgressSnapshotHandler{
		learnerRepo:   learnerRepo,
		cache:         cache,
		log:           log,
		quotas:        quotas,
		projectStreak: projectStreak,
	}
}

// Handle executes the get progress snapshot query.
func (h *GetProgressSnapshotHandler) Handle(ctx context.Context, q GetProgressSnapshotQuery) (*ProgressSnapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := q.At
	if now.IsZero() {
		now = time.Now().UTC()
	}

	lrn, err := h.loadLearner(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_progress_snapshot: %w", err)
	}

	// Day-granularity distance since the last recorded activity. A
	// zero LastActivityAt means the learner has never been active.
	newDay := false
	dayDiff := 0
	if lrn.LastActivityAt.IsZero() {
		newDay = true
	} else {
		dayDiff = timeutil.DayDiff(lrn.LastActivityAt, now)
		newDay = dayDiff > 0
	}

	counters := lrn.Counters
	if newDay {
		counters = learner.DailyCounters{}
	}

	streak := lrn.Streak.Current
	if h.projectStreak && lrn.Streak.Lapsed(dayDiff) {
		streak = 0
	}

	snapshot := &ProgressSnapshot{
		LearnerID:         lrn.ID,
		DisplayName:       lrn.DisplayName,
		XP:                lrn.XP.Int(),
		Level:             lrn.Level().Int(),
		ProgressPercent:   lrn.XP.ProgressToNextLevel(),
		CurrentStreak:     streak,
		LongestStreak:     lrn.Streak.Longest,
		TotalWordsLearned: lrn.TotalWordsLearned,
		Quotas:            h.quotaStates(counters),
		ObservedAt:        now,
	}

	if _, hasNext := lrn.Level().NextThreshold(); hasNext {
		toNext := lrn.XP.XPToNextLevel()
		snapshot.XPToNextLevel = &toNext
	}

	return snapshot, nil
}

// loadLearner reads through the cache when one is configured.
func (h *GetProgressSnapshotHandler) loadLearner(ctx context.Context, id string) (*learner.Learner, error) {
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	lrn, err := h.learnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, lrn, 5*time.Minute); err != nil {
			h.log.Debug("failed to cache learner", logger.LearnerID(id), logger.Err(err))
		}
	}
	return lrn, nil
}

// quotaStates reports usage for all four activity kinds.
func (h *GetProgressSnapshotHandler) quotaStates(counters learner.DailyCounters) map[string]QuotaState {
	kinds := []learner.ActivityKind{
		learner.ActivityVocabulary,
		learner.ActivityFlashcard,
		learner.ActivityPronunciation,
		learner.ActivityGrammar,
	}

	states := make(map[string]QuotaState, len(kinds))
	for _, kind := range kinds {
		states[kind.String()] = QuotaState{
			Used:      counters.CountFor(kind),
			Ceiling:   h.quotas.CeilingFor(kind),
			Remaining: counters.Remaining(kind, h.quotas),
		}
	}
	return states
}
