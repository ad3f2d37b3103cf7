package learner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidDisplayName - display name is empty or too long.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")

	// ErrInvalidXPAmount - XP delta must be strictly positive.
	ErrInvalidXPAmount = errors.New("invalid xp amount: must be positive")

	// ErrLearnerNotFound - learner does not exist.
	ErrLearnerNotFound = errors.New("learner not found")

	// ErrLearnerAlreadyExists - learner already exists.
	ErrLearnerAlreadyExists = errors.New("learner already exists")

	// ErrWordAlreadyLearned - the word is already in the learner's learned-set.
	ErrWordAlreadyLearned = errors.New("word already learned")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: LEARNER
// ══════════════════════════════════════════════════════════════════════════════

// Learner is the aggregate root for all progress state of one user.
// It is mutated only through its methods and persisted atomically with
// an optimistic version check.
type Learner struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// DisplayName - name shown on leaderboards.
	DisplayName string

	// XP - total experience points. Monotonically increasing.
	XP shared.XP

	// Streak - consecutive-day activity series.
	Streak Streak

	// LastActivityAt - time of the last recorded learning event.
	// Zero value means the learner has never been active.
	LastActivityAt time.Time

	// Counters - per-activity counts for the current day. Only valid
	// when LastActivityAt falls on today; otherwise implicitly zero.
	Counters DailyCounters

	// TotalWordsLearned - lifetime count of learned words.
	TotalWordsLearned int

	// Version - optimistic concurrency counter, incremented on every save.
	Version int64

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewLearnerParams holds the parameters for creating a new learner.
type NewLearnerParams struct {
	ID          string
	DisplayName string
	InitialXP   shared.XP
}

// NewLearner creates a new learner with field validation.
func NewLearner(params NewLearnerParams) (*Learner, error) {
	if params.ID == "" {
		return nil, errors.New("learner id is required")
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	if !params.InitialXP.IsValid() {
		return nil, shared.NewDomainError("learner", "New", shared.ErrNegativeValue, "initial XP out of range")
	}

	now := time.Now().UTC()

	return &Learner{
		ID:                params.ID,
		DisplayName:       displayName,
		XP:                params.InitialXP,
		Streak:            Streak{},
		LastActivityAt:    time.Time{},
		Counters:          DailyCounters{},
		TotalWordsLearned: 0,
		Version:           0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// Level returns the learner's current level, derived from XP.
func (l *Learner) Level() shared.Level {
	return l.XP.Level()
}

// DayRollover describes what happened when a new day started.
type DayRollover struct {
	// NewDay is true when the request is the first activity of a
	// calendar day (or the first activity ever).
	NewDay bool

	// DaysMissed is the day-granularity gap since the previous
	// activity. 0 for same-day and first-ever activity.
	DaysMissed int

	// StreakBroken is true when the gap reset the streak.
	StreakBroken bool

	// PreviousStreak holds the streak value before a reset.
	PreviousStreak int
}

// StartDay performs the day-rollover check exactly once for the current
// request. On a new day it resets all daily counters and evaluates the
// streak before any quota reservation can happen. Same-day calls are
// no-ops.
func (l *Learner) StartDay(now time.Time) DayRollover {
	if l.LastActivityAt.IsZero() {
		l.Streak = l.Streak.Evaluate(firstActivity)
		l.Counters = DailyCounters{}
		l.LastActivityAt = now
		l.UpdatedAt = now
		return DayRollover{NewDay: true}
	}

	diff := timeutil.DayDiff(l.LastActivityAt, now)
	if diff <= 0 {
		return DayRollover{}
	}

	rollover := DayRollover{
		NewDay:         true,
		DaysMissed:     diff,
		PreviousStreak: l.Streak.Current,
	}

	l.Counters = DailyCounters{}
	l.Streak = l.Streak.Evaluate(diff)
	rollover.StreakBroken = diff > 1

	l.LastActivityAt = now
	l.UpdatedAt = now
	return rollover
}

// XPOutcome describes the effect of an XP award.
type XPOutcome struct {
	Gained    int
	NewTotal  shared.XP
	OldLevel  shared.Level
	NewLevel  shared.Level
	LeveledUp bool
}

// AddXP awards XP and re-derives the level. The amount must be positive.
func (l *Learner) AddXP(amount int) (XPOutcome, error) {
	if amount <= 0 {
		return XPOutcome{}, ErrInvalidXPAmount
	}

	oldLevel := l.Level()
	l.XP = l.XP.Add(amount)
	newLevel := l.Level()
	l.UpdatedAt = time.Now().UTC()

	return XPOutcome{
		Gained:    amount,
		NewTotal:  l.XP,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		LeveledUp: newLevel > oldLevel,
	}, nil
}

// RecordWordLearned increments the lifetime learned-word total.
// Quota reservation happens separately via CheckAndReserve.
func (l *Learner) RecordWordLearned() {
	l.TotalWordsLearned++
	l.UpdatedAt = time.Now().UTC()
}

// String returns a string representation for logging.
func (l *Learner) String() string {
	return fmt.Sprintf(
		"Learner{ID: %s, XP: %d, Level: %d, Streak: %d}",
		l.ID, l.XP, l.Level(), l.Streak.Current,
	)
}

// Clone creates a deep copy of the learner.
func (l *Learner) Clone() *Learner {
	if l == nil {
		return nil
	}

	clone := *l
	return &clone
}
