package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/lesson"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
	"github.com/wordwise-app/wordwise-progress/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAILY LESSON QUERY
// Serves today's word list for a learner: same ordering for everyone on
// a given day, personal exclusions and quota applied on top.
// ══════════════════════════════════════════════════════════════════════════════

// GetDailyLessonQuery contains the query parameters.
type GetDailyLessonQuery struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// Activity selects the lesson flow and with it the daily ceiling
	// and quota family. Empty defaults to vocabulary.
	Activity learner.ActivityKind

	// CountHint optionally asks for fewer words than the quota allows.
	// Zero means no hint.
	CountHint int

	// At is the observation time (defaults to now if zero).
	At time.Time
}

// Validate validates the query.
func (q GetDailyLessonQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_daily_lesson: learner_id is required")
	}
	if q.Activity != "" && (!q.Activity.IsValid() || !q.Activity.LearnsWords()) {
		return fmt.Errorf("get_daily_lesson: %w: %s", shared.ErrUnknownActivity, q.Activity)
	}
	if q.CountHint < 0 {
		return errors.New("get_daily_lesson: count_hint must not be negative")
	}
	return nil
}

// LessonWord is one entry of today's lesson.
type LessonWord struct {
	WordID       string `json:"word_id"`
	Text         string `json:"text"`
	Band         string `json:"band"`
	NumericLevel int    `json:"numeric_level"`
}

// DailyLesson is the result of the daily lesson query.
type DailyLesson struct {
	LearnerID         string       `json:"learner_id"`
	Activity          string       `json:"activity"`
	Day               string       `json:"day"`
	Words             []LessonWord `json:"words"`
	RemainingQuota    int          `json:"remaining_quota"`
	AllLearnedAtLevel bool         `json:"all_learned_at_level"`
}

// GetDailyLessonHandler handles the GetDailyLessonQuery.
type GetDailyLessonHandler struct {
	learnerRepo   learner.Repository
	learnedRepo   learner.LearnedWordRepository
	catalogueRepo catalogue.Repository
	sampler       *lesson.Sampler
	log           *logger.Logger
	quotas        learner.QuotaConfig
	dailyCeiling  int
}

// NewGetDailyLessonHandler creates a new GetDailyLessonHandler.
func NewGetDailyLessonHandler(
	learnerRepo learner.Repository,
	learnedRepo learner.LearnedWordRepository,
	catalogueRepo catalogue.Repository,
	sampler *lesson.Sampler,
	log *logger.Logger,
	quotas learner.QuotaConfig,
	dailyCeiling int,
) *GetDailyLessonHandler {
	if dailyCeiling <= 0 {
		dailyCeiling = quotas.TotalWords
	}
	return &GetDailyLessonHandler{
		learnerRepo:   learnerRepo,
		learnedRepo:   learnedRepo,
		catalogueRepo: catalogueRepo,
		sampler:       sampler,
		log:           log,
		quotas:        quotas,
		dailyCeiling:  dailyCeiling,
	}
}

// Handle executes the get daily lesson query.
func (h *GetDailyLessonHandler) Handle(ctx context.Context, q GetDailyLessonQuery) (*DailyLesson, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := q.At
	if now.IsZero() {
		now = time.Now().UTC()
	}

	lrn, err := h.learnerRepo.GetByID(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_daily_lesson: %w", err)
	}

	activity := q.Activity
	if activity == "" {
		activity = learner.ActivityVocabulary
	}
	ceiling := h.ceilingFor(activity)

	// View-time quota: counters count as reset on a new day.
	remaining := lrn.Counters.Remaining(activity, h.quotas)
	if lrn.LastActivityAt.IsZero() || !timeutil.SameDay(lrn.LastActivityAt, now) {
		remaining = h.quotas.CeilingFor(activity)
	}

	level := lrn.Level()
	filter := h.sampler.FilterFor(level)

	pool, err := h.catalogueRepo.FetchCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get_daily_lesson: failed to fetch candidates: %w", err)
	}

	learnedIDs, err := h.learnedRepo.ListWordIDs(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_daily_lesson: failed to list learned words: %w", err)
	}
	learnedTodayIDs, err := h.learnedRepo.ListLearnedOn(ctx, q.LearnerID, now)
	if err != nil {
		return nil, fmt.Errorf("get_daily_lesson: failed to list today's words: %w", err)
	}

	limit := remaining
	if q.CountHint > 0 && q.CountHint < limit {
		limit = q.CountHint
	}

	selection := lesson.Selection{
		LearnerLevel:   level,
		Pool:           pool,
		Learned:        toSet(learnedIDs),
		LearnedToday:   toSet(learnedTodayIDs),
		DayIndex:       timeutil.DayIndex(now),
		DailyCeiling:   ceiling,
		QuotaRemaining: limit,
	}

	result := &DailyLesson{
		LearnerID:      q.LearnerID,
		Activity:       activity.String(),
		Day:            timeutil.FormatDateStr(now),
		Words:          []LessonWord{},
		RemainingQuota: remaining,
	}

	items, err := h.sampler.SelectDailyWords(selection)
	if err != nil {
		if errors.Is(err, lesson.ErrAllLearnedAtLevel) {
			result.AllLearnedAtLevel = true
			return result, nil
		}
		return nil, fmt.Errorf("get_daily_lesson: %w", err)
	}

	for _, item := range items {
		result.Words = append(result.Words, LessonWord{
			WordID:       item.ID,
			Text:         item.Text,
			Band:         string(item.Band),
			NumericLevel: item.NumericLevel,
		})
	}
	return result, nil
}

// ceilingFor returns the activity's daily lesson ceiling. The configured
// lesson size overrides the vocabulary flow only.
func (h *GetDailyLessonHandler) ceilingFor(kind learner.ActivityKind) int {
	if kind == learner.ActivityVocabulary && h.dailyCeiling > 0 {
		return h.dailyCeiling
	}
	return h.quotas.CeilingFor(kind)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
