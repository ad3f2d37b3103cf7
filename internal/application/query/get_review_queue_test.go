package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/domain/review"
)

func seededReviewRepo(t *testing.T, now time.Time) *memReviewRepo {
	t.Helper()
	repo := newMemReviewRepo()

	// Two due items (one overdue, one due right now), one scheduled for
	// the future, one memorized and due.
	overdue, err := review.NewItemState(queryLearnerID, "word-a", now.AddDate(0, 0, -10))
	require.NoError(t, err)
	overdue.NextReviewAt = now.AddDate(0, 0, -3)
	overdue.CorrectCount = 4
	overdue.IncorrectCount = 1
	require.NoError(t, repo.Save(context.Background(), overdue))

	dueNow, err := review.NewItemState(queryLearnerID, "word-b", now.AddDate(0, 0, -5))
	require.NoError(t, err)
	dueNow.NextReviewAt = now
	dueNow.CorrectCount = 1
	dueNow.IncorrectCount = 1
	require.NoError(t, repo.Save(context.Background(), dueNow))

	future, err := review.NewItemState(queryLearnerID, "word-c", now.AddDate(0, 0, -5))
	require.NoError(t, err)
	future.NextReviewAt = now.AddDate(0, 0, 6)
	require.NoError(t, repo.Save(context.Background(), future))

	memorized, err := review.NewItemState(queryLearnerID, "word-d", now.AddDate(0, 0, -20))
	require.NoError(t, err)
	memorized.NextReviewAt = now.AddDate(0, 0, -1)
	memorized.IsMemorized = true
	require.NoError(t, repo.Save(context.Background(), memorized))

	return repo
}

func TestReviewQueue_DueItemsOrderedByNextReview(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h := NewGetReviewQueueHandler(seededReviewRepo(t, now), testLogger())

	queue, err := h.Handle(context.Background(), GetReviewQueueQuery{LearnerID: queryLearnerID, At: now})
	require.NoError(t, err)

	require.Len(t, queue.Items, 3)
	assert.Equal(t, 3, queue.DueCount)
	assert.Equal(t, "word-a", queue.Items[0].WordID, "most overdue first")
	assert.Equal(t, "word-d", queue.Items[1].WordID)
	assert.Equal(t, "word-b", queue.Items[2].WordID)
}

func TestReviewQueue_LimitCapsItemsNotDueCount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h := NewGetReviewQueueHandler(seededReviewRepo(t, now), testLogger())

	queue, err := h.Handle(context.Background(), GetReviewQueueQuery{
		LearnerID: queryLearnerID, Limit: 1, At: now,
	})
	require.NoError(t, err)

	assert.Len(t, queue.Items, 1)
	assert.Equal(t, 3, queue.DueCount)
}

func TestReviewQueue_RejectsNegativeLimit(t *testing.T) {
	h := NewGetReviewQueueHandler(newMemReviewRepo(), testLogger())

	_, err := h.Handle(context.Background(), GetReviewQueueQuery{LearnerID: queryLearnerID, Limit: -1})
	assert.Error(t, err)
}

func TestVocabularyStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h := NewGetReviewQueueHandler(seededReviewRepo(t, now), testLogger())

	stats, err := h.Stats(context.Background(), queryLearnerID, now)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalWords)
	assert.Equal(t, 1, stats.MemorizedWords)
	assert.Equal(t, 3, stats.DueForReview)
	// 5 correct out of 7 recorded answers.
	assert.InDelta(t, 500.0/7.0, stats.AccuracyPercent, 0.01)
}

func TestVocabularyStats_EmptyCorpus(t *testing.T) {
	h := NewGetReviewQueueHandler(newMemReviewRepo(), testLogger())

	stats, err := h.Stats(context.Background(), queryLearnerID, time.Time{})
	require.NoError(t, err)

	assert.Zero(t, stats.TotalWords)
	assert.Zero(t, stats.AccuracyPercent)
}
