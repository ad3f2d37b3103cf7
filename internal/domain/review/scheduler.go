package review

import (
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SM-2 SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler applies the SM-2 update rule to item state. It is stateless;
// all state lives on ItemState.
type Scheduler struct{}

// NewScheduler creates a scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// RecordReview grades one review with quality 0..5 and updates the state
// in place.
//
// Quality >= 3 counts as correct: the interval progresses 1, 6, then
// round(interval * EF), and repetitions advance. Quality < 3 resets
// repetitions to 0 and the interval to 1 day. In both branches the
// easiness factor is adjusted by the standard SM-2 formula and floored
// at MinEasiness, then the next review date is set now + interval days.
func (sc *Scheduler) RecordReview(state *ItemState, quality int, now time.Time) error {
	if quality < 0 || quality > 5 {
		return ErrInvalidQuality
	}

	if quality >= 3 {
		state.CorrectCount++
		switch state.Repetitions {
		case 0:
			state.IntervalDays = 1
		case 1:
			state.IntervalDays = 6
		default:
			state.IntervalDays = int(math.Round(float64(state.IntervalDays) * state.EasinessFactor))
		}
		state.Repetitions++
	} else {
		state.IncorrectCount++
		state.Repetitions = 0
		state.IntervalDays = 1
	}

	q := float64(quality)
	ef := state.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < MinEasiness {
		ef = MinEasiness
	}
	state.EasinessFactor = ef

	state.NextReviewAt = now.AddDate(0, 0, state.IntervalDays)
	state.UpdatedAt = now
	return nil
}

// ToggleMemorized flips the manual "I know this" flag. The interval
// machinery is not touched.
func (sc *Scheduler) ToggleMemorized(state *ItemState, now time.Time) {
	state.IsMemorized = !state.IsMemorized
	if state.IsMemorized {
		state.MemorizedAt = now
	} else {
		state.MemorizedAt = time.Time{}
	}
	state.UpdatedAt = now
}

// DueForReview reports whether the word is due: never reviewed, or the
// next review date has passed.
func (sc *Scheduler) DueForReview(state *ItemState, now time.Time) bool {
	return state.NextReviewAt.IsZero() || !state.NextReviewAt.After(now)
}
