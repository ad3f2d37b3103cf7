package command

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

func newReviewHandlers(t *testing.T) (*RecordReviewHandler, *ToggleMemorizedHandler, *memReviewRepo) {
	t.Helper()
	reviewRepo := newMemReviewRepo()
	publisher := &memPublisher{}
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	return NewRecordReviewHandler(reviewRepo, publisher, log),
		NewToggleMemorizedHandler(reviewRepo, publisher, log),
		reviewRepo
}

func TestRecordReview_FirstPassSchedulesOneDay(t *testing.T) {
	recordHandler, _, _ := newReviewHandlers(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	result, err := recordHandler.Handle(context.Background(), RecordReviewCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Quality:   5,
		Timestamp: now,
	})
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 1, result.IntervalDays)
	assert.Equal(t, 1, result.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 1), result.NextReviewAt)
}

func TestRecordReview_StateSurvivesAcrossReviews(t *testing.T) {
	recordHandler, _, reviewRepo := newReviewHandlers(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i, quality := range []int{4, 4} {
		_, err := recordHandler.Handle(context.Background(), RecordReviewCommand{
			LearnerID: testLearnerID,
			WordID:    testWordID,
			Quality:   quality,
			Timestamp: now.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	state, err := reviewRepo.Get(context.Background(), testLearnerID, testWordID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Repetitions)
	assert.Equal(t, 6, state.IntervalDays)
	assert.Equal(t, 2, state.CorrectCount)
}

func TestRecordReview_PassedTracksPassingGrade(t *testing.T) {
	recordHandler, _, _ := newReviewHandlers(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	failed, err := recordHandler.Handle(context.Background(), RecordReviewCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Quality:   2,
		Timestamp: now,
	})
	require.NoError(t, err)
	assert.False(t, failed.Passed)

	passed, err := recordHandler.Handle(context.Background(), RecordReviewCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Quality:   3,
		Timestamp: now,
	})
	require.NoError(t, err)
	assert.True(t, passed.Passed, "grade three is the lowest passing recall")
}

func TestRecordReview_InvalidQuality(t *testing.T) {
	recordHandler, _, _ := newReviewHandlers(t)

	_, err := recordHandler.Handle(context.Background(), RecordReviewCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Quality:   6,
	})
	assert.Error(t, err)
}

func TestToggleMemorized_FlipsBothWays(t *testing.T) {
	_, toggleHandler, _ := newReviewHandlers(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cmd := ToggleMemorizedCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Timestamp: now,
	}

	result, err := toggleHandler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, result.IsMemorized)
	assert.Equal(t, now, result.MemorizedAt)

	result, err = toggleHandler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.False(t, result.IsMemorized)
	assert.True(t, result.MemorizedAt.IsZero())
}
