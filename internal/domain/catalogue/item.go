// Package catalogue models the word catalogue consumed by the progress
// engine. Items are read-only from the engine's perspective: the
// catalogue is owned by the content pipeline, the engine only samples
// from it.
package catalogue

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DIFFICULTY BANDS
// ══════════════════════════════════════════════════════════════════════════════

// DifficultyBand is the coarse difficulty label carried by every item.
type DifficultyBand string

const (
	BandBeginner     DifficultyBand = "beginner"
	BandIntermediate DifficultyBand = "intermediate"
	BandAdvanced     DifficultyBand = "advanced"
)

// IsValid checks that the band is one of the known values.
func (b DifficultyBand) IsValid() bool {
	switch b {
	case BandBeginner, BandIntermediate, BandAdvanced:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b DifficultyBand) String() string {
	return string(b)
}

// ══════════════════════════════════════════════════════════════════════════════
// ITEM
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrItemNotFound - word does not exist in the catalogue.
	ErrItemNotFound = errors.New("catalogue item not found")

	// ErrInvalidBand - unknown difficulty band.
	ErrInvalidBand = errors.New("invalid difficulty band")

	// ErrInvalidNumericLevel - numeric level outside 1..10.
	ErrInvalidNumericLevel = errors.New("invalid numeric level: must be 1-10")
)

// Item is one catalogue word. It carries both the coarse band and a
// finer numeric difficulty (1-10) used by the sampler's band table.
type Item struct {
	// ID - unique identifier (UUID in string form).
	ID string

	// Text - the word itself.
	Text string

	// Band - coarse difficulty label.
	Band DifficultyBand

	// NumericLevel - fine-grained difficulty, 1 (easiest) to 10.
	NumericLevel int

	// AddedAt - when the word entered the catalogue.
	AddedAt time.Time
}

// NewItem creates a catalogue item with validation.
func NewItem(id, text string, band DifficultyBand, numericLevel int) (*Item, error) {
	if id == "" {
		return nil, errors.New("item id is required")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("item text is required")
	}

	if !band.IsValid() {
		return nil, ErrInvalidBand
	}

	if numericLevel < 1 || numericLevel > 10 {
		return nil, ErrInvalidNumericLevel
	}

	return &Item{
		ID:           id,
		Text:         text,
		Band:         band,
		NumericLevel: numericLevel,
		AddedAt:      time.Now().UTC(),
	}, nil
}
