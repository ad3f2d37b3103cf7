// Package badge contains the badge catalogue and the criteria predicates
// that award badges from learner statistics. Evaluation is stateless and
// idempotent: a badge, once earned, is never revoked, and re-evaluating
// without new progress yields nothing.
package badge

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrBadgeNotFound - badge does not exist in the catalogue.
	ErrBadgeNotFound = errors.New("badge not found")

	// ErrAlreadyEarned - the learner already has the badge.
	ErrAlreadyEarned = errors.New("badge already earned")

	// ErrInvalidCriteria - unknown criteria type or non-positive target.
	ErrInvalidCriteria = errors.New("invalid badge criteria")
)

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA & CATEGORIES
// ══════════════════════════════════════════════════════════════════════════════

// CriteriaType names the learner statistic a badge is judged against.
type CriteriaType string

const (
	CriteriaXP               CriteriaType = "xp"
	CriteriaWordsLearned     CriteriaType = "words_learned"
	CriteriaStreak           CriteriaType = "streak"
	CriteriaLevel            CriteriaType = "level"
	CriteriaLessonsCompleted CriteriaType = "lessons_completed"
	CriteriaPerfectScores    CriteriaType = "perfect_scores"
	CriteriaDailyGoal        CriteriaType = "daily_goal"
)

// IsValid checks that the criteria type is known.
func (c CriteriaType) IsValid() bool {
	switch c {
	case CriteriaXP, CriteriaWordsLearned, CriteriaStreak, CriteriaLevel,
		CriteriaLessonsCompleted, CriteriaPerfectScores, CriteriaDailyGoal:
		return true
	default:
		return false
	}
}

// Category is the badge tier shown in the UI.
type Category string

const (
	CategoryBronze   Category = "bronze"
	CategorySilver   Category = "silver"
	CategoryGold     Category = "gold"
	CategoryPlatinum Category = "platinum"
	CategorySpecial  Category = "special"
)

// Criteria is the threshold a learner statistic must reach.
type Criteria struct {
	Type   CriteriaType
	Target int
}

// Validate checks the criteria definition.
func (c Criteria) Validate() error {
	if !c.Type.IsValid() || c.Target <= 0 {
		return ErrInvalidCriteria
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE
// ══════════════════════════════════════════════════════════════════════════════

// Badge is one static badge definition.
type Badge struct {
	// ID - stable identifier (slug).
	ID string

	// Name and Description - display strings.
	Name        string
	Description string

	// Category - display tier.
	Category Category

	// Criteria - the threshold to earn the badge.
	Criteria Criteria

	// XPBonus - XP folded back into the learner on earning. May be 0.
	XPBonus int
}

// EarnedBadge is one row of a learner's earned-set. Membership is
// monotonic: rows are appended, never removed.
type EarnedBadge struct {
	LearnerID string
	BadgeID   string
	EarnedAt  time.Time
}
