package learner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
)

func TestNewLearner_Validation(t *testing.T) {
	_, err := NewLearner(NewLearnerParams{DisplayName: "Aliya"})
	assert.Error(t, err, "missing id")

	_, err = NewLearner(NewLearnerParams{ID: "id", DisplayName: "   "})
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	l, err := NewLearner(NewLearnerParams{ID: "id", DisplayName: "  Aliya  "})
	require.NoError(t, err)
	assert.Equal(t, "Aliya", l.DisplayName)
	assert.Equal(t, shared.XP(0), l.XP)
	assert.Equal(t, shared.Level(1), l.Level())
	assert.True(t, l.LastActivityAt.IsZero())
}

func TestStartDay_FirstActivityStartsStreak(t *testing.T) {
	l := newTestLearner(t)

	rollover := l.StartDay(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	assert.True(t, rollover.NewDay)
	assert.Equal(t, 1, l.Streak.Current)
	assert.Equal(t, 1, l.Streak.Longest)
	assert.False(t, l.LastActivityAt.IsZero())
}

func TestStartDay_SameDayIsNoOp(t *testing.T) {
	l := newTestLearner(t)
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.StartDay(day)
	require.NoError(t, l.CheckAndReserve(ActivityVocabulary, DefaultQuotaConfig()))

	rollover := l.StartDay(day.Add(5 * time.Hour))

	assert.False(t, rollover.NewDay)
	assert.Equal(t, 1, l.Streak.Current)
	assert.Equal(t, 1, l.Counters.TotalWords, "counters survive same-day calls")
}

func TestStartDay_NextDayResetsCountersAndExtendsStreak(t *testing.T) {
	l := newTestLearner(t)
	day1 := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	l.StartDay(day1)
	require.NoError(t, l.CheckAndReserve(ActivityVocabulary, DefaultQuotaConfig()))

	day2 := time.Date(2026, 3, 2, 0, 10, 0, 0, time.UTC)
	rollover := l.StartDay(day2)

	assert.True(t, rollover.NewDay)
	assert.Equal(t, 1, rollover.DaysMissed)
	assert.False(t, rollover.StreakBroken)
	assert.Equal(t, 2, l.Streak.Current)
	assert.Equal(t, DailyCounters{}, l.Counters)
}

func TestStartDay_SkippedDaysBreakStreak(t *testing.T) {
	l := newTestLearner(t)
	l.StartDay(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	l.StartDay(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	require.Equal(t, 2, l.Streak.Current)

	rollover := l.StartDay(time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC))

	assert.True(t, rollover.StreakBroken)
	assert.Equal(t, 2, rollover.PreviousStreak)
	assert.Equal(t, 4, rollover.DaysMissed)
	assert.Equal(t, 1, l.Streak.Current)
	assert.Equal(t, 2, l.Streak.Longest)
}

func TestAddXP_LevelUpDetection(t *testing.T) {
	l := newTestLearner(t)

	outcome, err := l.AddXP(95)
	require.NoError(t, err)
	assert.False(t, outcome.LeveledUp)
	assert.Equal(t, shared.Level(1), outcome.NewLevel)

	outcome, err = l.AddXP(5)
	require.NoError(t, err)
	assert.True(t, outcome.LeveledUp)
	assert.Equal(t, shared.Level(1), outcome.OldLevel)
	assert.Equal(t, shared.Level(2), outcome.NewLevel)
	assert.Equal(t, shared.XP(100), outcome.NewTotal)
}

func TestAddXP_RejectsNonPositive(t *testing.T) {
	l := newTestLearner(t)

	_, err := l.AddXP(0)
	assert.ErrorIs(t, err, ErrInvalidXPAmount)

	_, err = l.AddXP(-5)
	assert.ErrorIs(t, err, ErrInvalidXPAmount)
	assert.Equal(t, shared.XP(0), l.XP)
}

func TestRecordWordLearned_IncrementsLifetimeTotal(t *testing.T) {
	l := newTestLearner(t)

	l.RecordWordLearned()
	l.RecordWordLearned()

	assert.Equal(t, 2, l.TotalWordsLearned)
}
