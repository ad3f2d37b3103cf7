package query

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

const queryLearnerID = "9c2e7a41-3b5d-4f8a-a1c6-2d9e4b7f5a30"

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

func activeLearner(t *testing.T, lastActivity time.Time) *learner.Learner {
	t.Helper()
	lrn, err := learner.NewLearner(learner.NewLearnerParams{
		ID:          queryLearnerID,
		DisplayName: "Dana",
		InitialXP:   120,
	})
	require.NoError(t, err)
	lrn.LastActivityAt = lastActivity
	lrn.Streak = learner.Streak{Current: 4, Longest: 9}
	lrn.Counters = learner.DailyCounters{TotalWords: 12, Flashcards: 5, Pronunciation: 3, Grammar: 2}
	lrn.TotalWordsLearned = 42
	return lrn
}

func snapshotHandler(repo learner.Repository, cache learner.Cache, projectStreak bool) *GetProgressSnapshotHandler {
	return NewGetProgressSnapshotHandler(repo, cache, testLogger(), learner.DefaultQuotaConfig(), projectStreak)
}

func TestProgressSnapshot_SameDayKeepsCounters(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	lrn := activeLearner(t, now.Add(-2*time.Hour))
	h := snapshotHandler(newMemLearnerRepo(lrn), nil, true)

	snap, err := h.Handle(context.Background(), GetProgressSnapshotQuery{LearnerID: queryLearnerID, At: now})
	require.NoError(t, err)

	assert.Equal(t, 12, snap.Quotas["vocabulary"].Used)
	assert.Equal(t, 18, snap.Quotas["vocabulary"].Remaining)
	assert.Equal(t, 5, snap.Quotas["flashcard"].Used)
	assert.Equal(t, 4, snap.CurrentStreak)
	assert.Equal(t, 2, snap.Level, "120 XP puts the learner at level 2")
	assert.Equal(t, 42, snap.TotalWordsLearned)
}

func TestProgressSnapshot_NewDayProjectsCountersToZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lrn := activeLearner(t, now.AddDate(0, 0, -1))
	repo := newMemLearnerRepo(lrn)
	h := snapshotHandler(repo, nil, true)

	snap, err := h.Handle(context.Background(), GetProgressSnapshotQuery{LearnerID: queryLearnerID, At: now})
	require.NoError(t, err)

	for kind, state := range snap.Quotas {
		assert.Zero(t, state.Used, "counter %q must read as zero on a new day", kind)
	}
	assert.Equal(t, 4, snap.CurrentStreak, "a one-day gap is not a lapse")

	// The projection never persists.
	stored, err := repo.GetByID(context.Background(), queryLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Counters.TotalWords)
}

func TestProgressSnapshot_LapsedStreakReadsAsZeroWhenProjected(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lrn := activeLearner(t, now.AddDate(0, 0, -3))

	projected, err := snapshotHandler(newMemLearnerRepo(lrn), nil, true).
		Handle(context.Background(), GetProgressSnapshotQuery{LearnerID: queryLearnerID, At: now})
	require.NoError(t, err)
	assert.Zero(t, projected.CurrentStreak)
	assert.Equal(t, 9, projected.LongestStreak, "longest streak is unaffected")

	stale, err := snapshotHandler(newMemLearnerRepo(lrn), nil, false).
		Handle(context.Background(), GetProgressSnapshotQuery{LearnerID: queryLearnerID, At: now})
	require.NoError(t, err)
	assert.Equal(t, 4, stale.CurrentStreak, "flag off keeps the stored value")
}

func TestProgressSnapshot_NeverActiveLearner(t *testing.T) {
	lrn, err := learner.NewLearner(learner.NewLearnerParams{ID: queryLearnerID, DisplayName: "Dana"})
	require.NoError(t, err)
	h := snapshotHandler(newMemLearnerRepo(lrn), nil, true)

	snap, err := h.Handle(context.Background(), GetProgressSnapshotQuery{LearnerID: queryLearnerID})
	require.NoError(t, err)

	assert.Zero(t, snap.CurrentStreak)
	assert.Zero(t, snap.XP)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 30, snap.Quotas["vocabulary"].Remaining)
}

func TestProgressSnapshot_UnknownLearner(t *testing.T) {
	h := snapshotHandler(newMemLearnerRepo(), nil, true)

	_, err := h.Handle(context.Background(), GetProgressSnapshotQuery{LearnerID: "missing"})
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}

func TestProgressSnapshot_ReadsThroughCache(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	lrn := activeLearner(t, now.Add(-time.Hour))
	cache := newMemLearnerCache()
	h := snapshotHandler(newMemLearnerRepo(lrn), cache, true)

	q := GetProgressSnapshotQuery{LearnerID: queryLearnerID, At: now}

	_, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "miss populates the cache")

	_, err = h.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "hit does not re-populate")
	assert.Equal(t, 2, cache.gets)
}
