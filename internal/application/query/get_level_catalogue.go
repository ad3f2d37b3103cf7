package query

import (
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL CATALOGUE QUERY
// Static data, no handler state needed.
// ══════════════════════════════════════════════════════════════════════════════

// LevelRequirementView is one row of the level table.
type LevelRequirementView struct {
	Level      int  `json:"level"`
	RequiredXP int  `json:"required_xp"`
	NextXP     *int `json:"next_xp,omitempty"`
}

// GetLevelCatalogue exposes the full level threshold table.
func GetLevelCatalogue() []LevelRequirementView {
	reqs := shared.LevelCatalogue()
	views := make([]LevelRequirementView, 0, len(reqs))
	for _, r := range reqs {
		view := LevelRequirementView{
			Level:      r.Level.Int(),
			RequiredXP: r.RequiredXP,
		}
		if next, ok := r.Level.NextThreshold(); ok {
			view.NextXP = &next
		}
		views = append(views, view)
	}
	return views
}
