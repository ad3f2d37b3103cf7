package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
)

func TestGetBadges_SplitsEarnedAndInFlight(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lrn, err := learner.NewLearner(learner.NewLearnerParams{
		ID:          queryLearnerID,
		DisplayName: "Dana",
		InitialXP:   75,
	})
	require.NoError(t, err)
	lrn.TotalWordsLearned = 6
	lrn.Streak = learner.Streak{Current: 2, Longest: 2}

	catalogueRepo := &memBadgeCatalogue{badges: []badge.Badge{
		mustBadge(t, "newbie", "Newbie", badge.CriteriaXP, 50, 10),
		mustBadge(t, "explorer", "Explorer", badge.CriteriaXP, 100, 20),
		mustBadge(t, "word-collector", "Word Collector", badge.CriteriaWordsLearned, 10, 10),
	}}

	earnedRepo := newMemEarnedRepo()
	require.NoError(t, earnedRepo.Append(context.Background(), badge.EarnedBadge{
		LearnerID: queryLearnerID,
		BadgeID:   "newbie",
		EarnedAt:  now.AddDate(0, 0, -2),
	}))

	h := NewGetBadgesHandler(catalogueRepo, earnedRepo, newMemLearnerRepo(lrn), testLogger())

	overview, err := h.Handle(context.Background(), GetBadgesQuery{LearnerID: queryLearnerID})
	require.NoError(t, err)

	require.Len(t, overview.Earned, 1)
	assert.Equal(t, "newbie", overview.Earned[0].BadgeID)
	assert.Equal(t, 10, overview.Earned[0].XPBonus)

	require.Len(t, overview.InFlight, 2)

	byID := make(map[string]BadgeProgressView)
	for _, v := range overview.InFlight {
		byID[v.BadgeID] = v
	}

	explorer := byID["explorer"]
	assert.Equal(t, 75, explorer.Current)
	assert.Equal(t, 100, explorer.Target)
	assert.Equal(t, 75, explorer.Percentage)
	assert.Equal(t, 25, explorer.Remaining)

	collector := byID["word-collector"]
	assert.Equal(t, 6, collector.Current)
	assert.Equal(t, 4, collector.Remaining)
}

func TestGetBadges_UnknownLearner(t *testing.T) {
	h := NewGetBadgesHandler(&memBadgeCatalogue{}, newMemEarnedRepo(), newMemLearnerRepo(), testLogger())

	_, err := h.Handle(context.Background(), GetBadgesQuery{LearnerID: "missing"})
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}

func mustBadge(t *testing.T, id, name string, ct badge.CriteriaType, target, bonus int) badge.Badge {
	t.Helper()
	b := badge.Badge{
		ID:          id,
		Name:        name,
		Description: name,
		Category:    badge.CategoryBronze,
		Criteria:    badge.Criteria{Type: ct, Target: target},
		XPBonus:     bonus,
	}
	require.NoError(t, b.Criteria.Validate())
	return b
}
