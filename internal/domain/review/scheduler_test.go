package review

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newFreshState(t *testing.T) *ItemState {
	t.Helper()
	state, err := NewItemState(
		"3f0e9d52-45a1-4c61-9b62-7f8d2f1a0c11",
		"9ca4322d-ebd5-4ffa-a340-56fe811bbab1",
		testNow,
	)
	require.NoError(t, err)
	return state
}

func TestRecordReview_RejectsOutOfRangeQuality(t *testing.T) {
	sc := NewScheduler()
	state := newFreshState(t)

	assert.ErrorIs(t, sc.RecordReview(state, 6, testNow), ErrInvalidQuality)
	assert.ErrorIs(t, sc.RecordReview(state, -1, testNow), ErrInvalidQuality)
	assert.Equal(t, 0, state.Repetitions)
}

func TestRecordReview_PerfectRecallProgression(t *testing.T) {
	sc := NewScheduler()
	state := newFreshState(t)
	now := testNow

	// First review: interval 1.
	require.NoError(t, sc.RecordReview(state, 5, now))
	assert.Equal(t, 1, state.IntervalDays)
	assert.Equal(t, 1, state.Repetitions)
	first := state.NextReviewAt

	// Second review: interval 6.
	now = now.AddDate(0, 0, 1)
	require.NoError(t, sc.RecordReview(state, 5, now))
	assert.Equal(t, 6, state.IntervalDays)
	assert.Equal(t, 2, state.Repetitions)
	second := state.NextReviewAt

	// Third review: round(6 * EF). Two q=5 reviews raised EF to 2.7.
	now = now.AddDate(0, 0, 6)
	require.NoError(t, sc.RecordReview(state, 5, now))
	assert.Equal(t, int(math.Round(6*2.7)), state.IntervalDays)
	assert.Equal(t, 3, state.Repetitions)
	third := state.NextReviewAt

	assert.True(t, first.Before(second))
	assert.True(t, second.Before(third))
	assert.Equal(t, 3, state.CorrectCount)
	assert.Equal(t, 0, state.IncorrectCount)
}

func TestRecordReview_FailureResetsProgression(t *testing.T) {
	sc := NewScheduler()
	state := newFreshState(t)

	require.NoError(t, sc.RecordReview(state, 5, testNow))
	require.NoError(t, sc.RecordReview(state, 5, testNow))
	require.NoError(t, sc.RecordReview(state, 5, testNow))
	require.Greater(t, state.IntervalDays, 6)

	require.NoError(t, sc.RecordReview(state, 2, testNow))

	assert.Equal(t, 0, state.Repetitions)
	assert.Equal(t, 1, state.IntervalDays)
	assert.Equal(t, 1, state.IncorrectCount)
	assert.Equal(t, 3, state.CorrectCount, "correct tally survives a failure")
	assert.Equal(t, testNow.AddDate(0, 0, 1), state.NextReviewAt)
}

func TestRecordReview_EasinessFlooredAtMinimum(t *testing.T) {
	sc := NewScheduler()
	state := newFreshState(t)

	// Repeated total blackouts drive EF down by 0.8 each time.
	for i := 0; i < 5; i++ {
		require.NoError(t, sc.RecordReview(state, 0, testNow))
	}

	assert.Equal(t, MinEasiness, state.EasinessFactor)
}

func TestRecordReview_EasinessUpdateFormula(t *testing.T) {
	sc := NewScheduler()

	// q=4 from the default: 2.5 + (0.1 - 1*(0.08+1*0.02)) = 2.5
	state := newFreshState(t)
	require.NoError(t, sc.RecordReview(state, 4, testNow))
	assert.InDelta(t, 2.5, state.EasinessFactor, 1e-9)

	// q=3: 2.5 + (0.1 - 2*(0.08+2*0.02)) = 2.36
	state = newFreshState(t)
	require.NoError(t, sc.RecordReview(state, 3, testNow))
	assert.InDelta(t, 2.36, state.EasinessFactor, 1e-9)

	// q=5: 2.5 + 0.1 = 2.6
	state = newFreshState(t)
	require.NoError(t, sc.RecordReview(state, 5, testNow))
	assert.InDelta(t, 2.6, state.EasinessFactor, 1e-9)
}

func TestToggleMemorized(t *testing.T) {
	sc := NewScheduler()
	state := newFreshState(t)

	sc.ToggleMemorized(state, testNow)
	assert.True(t, state.IsMemorized)
	assert.Equal(t, testNow, state.MemorizedAt)

	sc.ToggleMemorized(state, testNow.Add(time.Hour))
	assert.False(t, state.IsMemorized)
	assert.True(t, state.MemorizedAt.IsZero())
}

func TestDueForReview(t *testing.T) {
	sc := NewScheduler()
	state := newFreshState(t)

	assert.True(t, sc.DueForReview(state, testNow), "never reviewed counts as due")

	require.NoError(t, sc.RecordReview(state, 5, testNow))
	assert.False(t, sc.DueForReview(state, testNow))
	assert.True(t, sc.DueForReview(state, testNow.AddDate(0, 0, 1)))
}
