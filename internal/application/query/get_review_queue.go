package query

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
// GET REVIEW QUEUE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetReviewQueueQuery contains the query parameters.
type GetReviewQueueQuery struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// Limit caps the queue length; defaults to the standard page size.
	Limit int

	// At is the observation time (defaults to now if zero).
	At time.Time
}

// Validate validates the query.
func (q GetReviewQueueQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_review_queue: learner_id is required")
	}
	if q.Limit < 0 {
		return errors.New("get_review_queue: limit must not be negative")
	}
	return nil
}

// ReviewQueueItem is one due item, ordered by next review date.
type ReviewQueueItem struct {
	WordID         string    `json:"word_id"`
	EasinessFactor float64   `json:"easiness_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	NextReviewAt   time.Time `json:"next_review_at"`
	IsMemorized    bool      `json:"is_memorized"`
}

// ReviewQueue is the result of the review queue query.
type ReviewQueue struct {
	LearnerID string            `json:"learner_id"`
	Items     []ReviewQueueItem `json:"items"`
	DueCount  int               `json:"due_count"`
}

// VocabularyStats summarizes the learner's review corpus.
type VocabularyStats struct {
	LearnerID       string  `json:"learner_id"`
	TotalWords      int     `json:"total_words"`
	MemorizedWords  int     `json:"memorized_words"`
	DueForReview    int     `json:"due_for_review"`
	AccuracyPercent float64 `json:"accuracy_percent"`
}

// GetReviewQueueHandler handles review queue and stats queries.
type GetReviewQueueHandler struct {
	reviewRepo review.Repository
	log        *logger.Logger
}

// NewGetReviewQueueHandler creates a new GetReviewQueueHandler.
func NewGetReviewQueueHandler(reviewRepo review.Repository, log *logger.Logger) *GetReviewQueueHandler {
	return &GetReviewQueueHandler{
		reviewRepo: reviewRepo,
		log:        log,
	}
}

// Handle executes the get review queue query.
func (h *GetReviewQueueHandler) Handle(ctx context.Context, q GetReviewQueueQuery) (*ReviewQueue, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := q.At
	if now.IsZero() {
		now = time.Now().UTC()
	}

	limit := q.Limit
	if limit == 0 {
		limit = shared.DefaultPageSize
	}

	due, err := h.reviewRepo.ListDue(ctx, q.LearnerID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get_review_queue: %w", err)
	}

	dueCount, err := h.reviewRepo.CountDue(ctx, q.LearnerID, now)
	if err != nil {
		return nil, fmt.Errorf("get_review_queue: %w", err)
	}

	queue := &ReviewQueue{
		LearnerID: q.LearnerID,
		Items:     make([]ReviewQueueItem, 0, len(due)),
		DueCount:  dueCount,
	}
	for _, state := range due {
		queue.Items = append(queue.Items, ReviewQueueItem{
			WordID:         state.WordID,
			EasinessFactor: state.EasinessFactor,
			IntervalDays:   state.IntervalDays,
			Repetitions:    state.Repetitions,
			NextReviewAt:   state.NextReviewAt,
			IsMemorized:    state.IsMemorized,
		})
	}
	return queue, nil
}

// Stats executes the vocabulary stats query.
func (h *GetReviewQueueHandler) Stats(ctx context.Context, learnerID string, at time.Time) (*VocabularyStats, error) {
	if learnerID == "" {
		return nil, errors.New("vocabulary_stats: learner_id is required")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	stats, err := h.reviewRepo.Stats(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("vocabulary_stats: %w", err)
	}

	dueCount, err := h.reviewRepo.CountDue(ctx, learnerID, at)
	if err != nil {
		return nil, fmt.Errorf("vocabulary_stats: %w", err)
	}

	return &VocabularyStats{
		LearnerID:       learnerID,
		TotalWords:      stats.TotalWords,
		MemorizedWords:  stats.MemorizedWords,
		DueForReview:    dueCount,
		AccuracyPercent: stats.Accuracy() * 100,
	}, nil
}
