package catalogue

import "context"

// CandidateFilter narrows a candidate fetch. Zero values mean "no
// constraint" for that dimension.
type CandidateFilter struct {
	// Bands restricts to the listed coarse bands. Empty = all bands.
	Bands []DifficultyBand

	// MinNumericLevel / MaxNumericLevel bound the fine difficulty.
	// Both zero = unbounded.
	MinNumericLevel int
	MaxNumericLevel int
}

// Unfiltered reports whether the filter places no constraints.
func (f CandidateFilter) Unfiltered() bool {
	return len(f.Bands) == 0 && f.MinNumericLevel == 0 && f.MaxNumericLevel == 0
}

// Matches checks an item against the filter.
func (f CandidateFilter) Matches(item *Item) bool {
	if len(f.Bands) > 0 {
		found := false
		for _, b := range f.Bands {
			if item.Band == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinNumericLevel > 0 && item.NumericLevel < f.MinNumericLevel {
		return false
	}
	if f.MaxNumericLevel > 0 && item.NumericLevel > f.MaxNumericLevel {
		return false
	}
	return true
}

// Repository is the read-only view of the word catalogue.
type Repository interface {
	// GetByID returns one item.
	// Returns ErrItemNotFound if the word does not exist.
	GetByID(ctx context.Context, id string) (*Item, error)

	// FetchCandidates returns items matching the filter in stable
	// (insertion) order. The sampler applies its own shuffle.
	FetchCandidates(ctx context.Context, filter CandidateFilter) ([]*Item, error)

	// Count returns the catalogue size.
	Count(ctx context.Context) (int, error)
}
