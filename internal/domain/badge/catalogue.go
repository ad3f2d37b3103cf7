package badge

// DefaultCatalogue returns the built-in badge set. The catalogue is
// seeded into storage on startup; IDs are stable slugs so reseeding is
// idempotent.
func DefaultCatalogue() []Badge {
	return []Badge{
		// XP milestones
		{
			ID: "newbie", Name: "Newbie",
			Description: "Earn your first 50 XP",
			Category:    CategoryBronze,
			Criteria:    Criteria{Type: CriteriaXP, Target: 50},
			XPBonus:     10,
		},
		{
			ID: "explorer", Name: "Explorer",
			Description: "Reach 100 XP",
			Category:    CategoryBronze,
			Criteria:    Criteria{Type: CriteriaXP, Target: 100},
			XPBonus:     20,
		},
		{
			ID: "adventurer", Name: "Adventurer",
			Description: "Reach 500 XP",
			Category:    CategorySilver,
			Criteria:    Criteria{Type: CriteriaXP, Target: 500},
			XPBonus:     50,
		},
		{
			ID: "champion", Name: "Champion",
			Description: "Reach 1000 XP",
			Category:    CategoryGold,
			Criteria:    Criteria{Type: CriteriaXP, Target: 1000},
			XPBonus:     100,
		},
		{
			ID: "legend", Name: "Legend",
			Description: "Reach 5000 XP",
			Category:    CategoryPlatinum,
			Criteria:    Criteria{Type: CriteriaXP, Target: 5000},
			XPBonus:     500,
		},

		// Vocabulary milestones
		{
			ID: "word-collector", Name: "Word Collector",
			Description: "Learn 10 words",
			Category:    CategoryBronze,
			Criteria:    Criteria{Type: CriteriaWordsLearned, Target: 10},
			XPBonus:     10,
		},
		{
			ID: "vocabulary-builder", Name: "Vocabulary Builder",
			Description: "Learn 50 words",
			Category:    CategorySilver,
			Criteria:    Criteria{Type: CriteriaWordsLearned, Target: 50},
			XPBonus:     25,
		},
		{
			ID: "word-master", Name: "Word Master",
			Description: "Learn 100 words",
			Category:    CategoryGold,
			Criteria:    Criteria{Type: CriteriaWordsLearned, Target: 100},
			XPBonus:     50,
		},
		{
			ID: "vocabulary-expert", Name: "Vocabulary Expert",
			Description: "Learn 500 words",
			Category:    CategoryGold,
			Criteria:    Criteria{Type: CriteriaWordsLearned, Target: 500},
			XPBonus:     200,
		},
		{
			ID: "polyglot", Name: "Polyglot",
			Description: "Learn 1000 words",
			Category:    CategoryPlatinum,
			Criteria:    Criteria{Type: CriteriaWordsLearned, Target: 1000},
			XPBonus:     500,
		},

		// Streak milestones
		{
			ID: "consistent-learner", Name: "Consistent Learner",
			Description: "Keep a 3-day streak",
			Category:    CategoryBronze,
			Criteria:    Criteria{Type: CriteriaStreak, Target: 3},
			XPBonus:     15,
		},
		{
			ID: "week-warrior", Name: "Week Warrior",
			Description: "Keep a 7-day streak",
			Category:    CategorySilver,
			Criteria:    Criteria{Type: CriteriaStreak, Target: 7},
			XPBonus:     30,
		},
		{
			ID: "dedication-master", Name: "Dedication Master",
			Description: "Keep a 30-day streak",
			Category:    CategoryGold,
			Criteria:    Criteria{Type: CriteriaStreak, Target: 30},
			XPBonus:     100,
		},
		{
			ID: "unstoppable", Name: "Unstoppable",
			Description: "Keep a 100-day streak",
			Category:    CategoryPlatinum,
			Criteria:    Criteria{Type: CriteriaStreak, Target: 100},
			XPBonus:     500,
		},
	}
}
