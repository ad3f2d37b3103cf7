// Package lesson selects the words a learner sees "today". Selection is
// deterministic per calendar day: every learner gets the same relative
// ordering of candidate words on a given day without a materialized
// "today's list" being persisted anywhere.
package lesson

import (
	"errors"
	"math/rand"

	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
)

// ErrAllLearnedAtLevel - every candidate at the learner's level is
// already learned. Distinct from an empty lesson so the caller can
// render a proper message.
var ErrAllLearnedAtLevel = errors.New("all available words at this level have been learned")

// ══════════════════════════════════════════════════════════════════════════════
// BAND TABLE
// ══════════════════════════════════════════════════════════════════════════════

// BandRule maps a learner-level range onto a catalogue filter. Rules are
// checked in order; the first rule whose MaxLevel covers the learner
// wins. MaxLevel 0 marks the catch-all rule.
type BandRule struct {
	MaxLevel shared.Level
	Filter   catalogue.CandidateFilter
}

// BandTable is the ordered difficulty-band configuration. Boundaries are
// product configuration, not engine constants.
type BandTable []BandRule

// DefaultBandTable returns the product default banding.
func DefaultBandTable() BandTable {
	return BandTable{
		{
			MaxLevel: 2,
			Filter: catalogue.CandidateFilter{
				Bands:           []catalogue.DifficultyBand{catalogue.BandBeginner},
				MaxNumericLevel: 3,
			},
		},
		{
			MaxLevel: 5,
			Filter: catalogue.CandidateFilter{
				Bands:           []catalogue.DifficultyBand{catalogue.BandBeginner, catalogue.BandIntermediate},
				MaxNumericLevel: 6,
			},
		},
		{
			MaxLevel: 8,
			Filter: catalogue.CandidateFilter{
				Bands:           []catalogue.DifficultyBand{catalogue.BandIntermediate, catalogue.BandAdvanced},
				MinNumericLevel: 4,
				MaxNumericLevel: 9,
			},
		},
		// Top tier: no filter at all.
		{MaxLevel: 0, Filter: catalogue.CandidateFilter{}},
	}
}

// FilterFor returns the catalogue filter for a learner level.
func (t BandTable) FilterFor(level shared.Level) catalogue.CandidateFilter {
	for _, rule := range t {
		if rule.MaxLevel == 0 || level <= rule.MaxLevel {
			return rule.Filter
		}
	}
	return catalogue.CandidateFilter{}
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY SAMPLER
// ══════════════════════════════════════════════════════════════════════════════

// Sampler picks the daily word selection for a learner.
type Sampler struct {
	table BandTable
}

// NewSampler creates a sampler with the given band table.
func NewSampler(table BandTable) *Sampler {
	if len(table) == 0 {
		table = DefaultBandTable()
	}
	return &Sampler{table: table}
}

// FilterFor exposes the band filter for a learner level, so callers can
// narrow the candidate fetch before sampling.
func (s *Sampler) FilterFor(level shared.Level) catalogue.CandidateFilter {
	return s.table.FilterFor(level)
}

// Selection holds the inputs for one daily-word pick.
type Selection struct {
	// LearnerLevel drives the difficulty band filter.
	LearnerLevel shared.Level

	// Pool is the full candidate pool from the catalogue.
	Pool []*catalogue.Item

	// Learned is the learner's lifetime learned-set (word IDs).
	Learned map[string]bool

	// LearnedToday holds word IDs learned earlier today.
	LearnedToday map[string]bool

	// DayIndex is the integer day count since the Unix epoch; it seeds
	// the deterministic shuffle.
	DayIndex int64

	// DailyCeiling is the activity's daily limit. Today's pool is the
	// first DailyCeiling items of the shuffled ordering.
	DailyCeiling int

	// QuotaRemaining caps how many items are returned. Zero yields an
	// empty selection; negative lifts the cap.
	QuotaRemaining int
}

// SelectDailyWords runs the five-step selection:
//
//  1. drop words already in the learned-set
//  2. filter by the level's difficulty band
//  3. shuffle deterministically, seeded by the day index
//  4. cut today's pool to the first DailyCeiling items
//  5. drop words learned earlier today, cap at QuotaRemaining
//
// Returns ErrAllLearnedAtLevel when step 1+2 leave nothing.
func (s *Sampler) SelectDailyWords(sel Selection) ([]*catalogue.Item, error) {
	filter := s.table.FilterFor(sel.LearnerLevel)

	candidates := make([]*catalogue.Item, 0, len(sel.Pool))
	for _, item := range sel.Pool {
		if sel.Learned[item.ID] {
			continue
		}
		if !filter.Matches(item) {
			continue
		}
		candidates = append(candidates, item)
	}

	if len(candidates) == 0 {
		return nil, ErrAllLearnedAtLevel
	}

	shuffleForDay(candidates, sel.DayIndex)

	todays := candidates
	if sel.DailyCeiling > 0 && len(todays) > sel.DailyCeiling {
		todays = todays[:sel.DailyCeiling]
	}

	// An exhausted quota means an empty lesson, not an uncapped one.
	// Negative means unbounded.
	out := make([]*catalogue.Item, 0, len(todays))
	if sel.QuotaRemaining == 0 {
		return out, nil
	}
	for _, item := range todays {
		if sel.LearnedToday[item.ID] {
			continue
		}
		out = append(out, item)
		if sel.QuotaRemaining > 0 && len(out) >= sel.QuotaRemaining {
			break
		}
	}
	return out, nil
}

// shuffleForDay runs a Fisher-Yates pass where each position draws from
// a generator seeded by dayIndex+position. The ordering is therefore a
// pure function of the day index and the input order.
func shuffleForDay(items []*catalogue.Item, dayIndex int64) {
	for i := len(items) - 1; i > 0; i-- {
		r := rand.New(rand.NewSource(dayIndex + int64(i)))
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
