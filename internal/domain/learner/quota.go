package learner

import (
	"fmt"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY KINDS
// ══════════════════════════════════════════════════════════════════════════════

// ActivityKind is the closed set of learning activities that consume
// daily quota. Each kind maps to exactly one counter.
type ActivityKind string

const (
	// ActivityVocabulary - a word learned in the vocabulary lesson flow.
	ActivityVocabulary ActivityKind = "vocabulary"
	// ActivityFlashcard - a word learned through flashcards.
	ActivityFlashcard ActivityKind = "flashcard"
	// ActivityPronunciation - a word learned through pronunciation practice.
	ActivityPronunciation ActivityKind = "pronunciation"
	// ActivityGrammar - a grammar question answered correctly (XP only).
	ActivityGrammar ActivityKind = "grammar"
)

// IsValid checks that the activity kind is one of the known values.
func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityVocabulary, ActivityFlashcard, ActivityPronunciation, ActivityGrammar:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ActivityKind) String() string {
	return string(k)
}

// LearnsWords reports whether the activity adds to the learned-word set.
// Grammar awards XP only.
func (k ActivityKind) LearnsWords() bool {
	return k == ActivityVocabulary || k == ActivityFlashcard || k == ActivityPronunciation
}

// ══════════════════════════════════════════════════════════════════════════════
// QUOTA CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// QuotaConfig holds the per-activity daily ceilings. These are product
// configuration, not engine constants.
type QuotaConfig struct {
	// TotalWords - ceiling for the shared total-words counter (gates the
	// vocabulary flow directly).
	TotalWords int

	// Flashcards - ceiling for flashcard learning.
	Flashcards int

	// Pronunciation - ceiling for pronunciation practice.
	Pronunciation int

	// Grammar - ceiling for grammar questions.
	Grammar int
}

// DefaultQuotaConfig returns the product default ceilings.
func DefaultQuotaConfig() QuotaConfig {
	return QuotaConfig{
		TotalWords:    30,
		Flashcards:    20,
		Pronunciation: 10,
		Grammar:       10,
	}
}

// CeilingFor returns the daily ceiling gating the given activity.
func (c QuotaConfig) CeilingFor(kind ActivityKind) int {
	switch kind {
	case ActivityVocabulary:
		return c.TotalWords
	case ActivityFlashcard:
		return c.Flashcards
	case ActivityPronunciation:
		return c.Pronunciation
	case ActivityGrammar:
		return c.Grammar
	default:
		return 0
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY COUNTERS
// ══════════════════════════════════════════════════════════════════════════════

// DailyCounters holds the per-activity counts for one calendar day.
// TotalWords is a superset counter: flashcard and pronunciation
// reservations increment it alongside their own counter.
type DailyCounters struct {
	TotalWords    int
	Flashcards    int
	Pronunciation int
	Grammar       int
}

// CountFor returns the counter gating the given activity.
func (d DailyCounters) CountFor(kind ActivityKind) int {
	switch kind {
	case ActivityVocabulary:
		return d.TotalWords
	case ActivityFlashcard:
		return d.Flashcards
	case ActivityPronunciation:
		return d.Pronunciation
	case ActivityGrammar:
		return d.Grammar
	default:
		return 0
	}
}

// Remaining returns how many reservations of the kind are left today.
func (d DailyCounters) Remaining(kind ActivityKind, cfg QuotaConfig) int {
	left := cfg.CeilingFor(kind) - d.CountFor(kind)
	if left < 0 {
		return 0
	}
	return left
}

// ══════════════════════════════════════════════════════════════════════════════
// QUOTA GATE
// ══════════════════════════════════════════════════════════════════════════════

// QuotaExceededError reports a rejected reservation with the counts the
// caller needs to render "come back tomorrow" messaging.
type QuotaExceededError struct {
	Kind    ActivityKind
	Current int
	Ceiling int
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota exceeded for %s: %d/%d", e.Kind, e.Current, e.Ceiling)
}

// Is makes the error match shared.ErrQuotaExceeded via errors.Is.
func (e *QuotaExceededError) Is(target error) bool {
	return target == shared.ErrQuotaExceeded
}

// CheckAndReserve enforces the activity's daily ceiling and, when
// allowed, increments the relevant counter(s). The check is strictly
// pre-increment: a rejected reservation mutates nothing.
func (l *Learner) CheckAndReserve(kind ActivityKind, cfg QuotaConfig) error {
	if !kind.IsValid() {
		return shared.ErrUnknownActivity
	}

	ceiling := cfg.CeilingFor(kind)
	current := l.Counters.CountFor(kind)
	if current >= ceiling {
		return &QuotaExceededError{Kind: kind, Current: current, Ceiling: ceiling}
	}

	switch kind {
	case ActivityVocabulary:
		l.Counters.TotalWords++
	case ActivityFlashcard:
		l.Counters.Flashcards++
		l.Counters.TotalWords++
	case ActivityPronunciation:
		l.Counters.Pronunciation++
		l.Counters.TotalWords++
	case ActivityGrammar:
		l.Counters.Grammar++
	}

	l.UpdatedAt = time.Now().UTC()
	return nil
}
