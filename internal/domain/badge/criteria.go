package badge

// ══════════════════════════════════════════════════════════════════════════════
// STATS SNAPSHOT & PREDICATES
// ══════════════════════════════════════════════════════════════════════════════

// Stats is the snapshot of learner statistics badges are judged against.
// The caller assembles it once per evaluation so every predicate sees
// the same numbers.
type Stats struct {
	XP               int
	Level            int
	WordsLearned     int
	Streak           int
	LessonsCompleted int
	PerfectScores    int
	DailyGoalsMet    int
}

// For returns the statistic a criteria type reads.
func (s Stats) For(t CriteriaType) int {
	switch t {
	case CriteriaXP:
		return s.XP
	case CriteriaLevel:
		return s.Level
	case CriteriaWordsLearned:
		return s.WordsLearned
	case CriteriaStreak:
		return s.Streak
	case CriteriaLessonsCompleted:
		return s.LessonsCompleted
	case CriteriaPerfectScores:
		return s.PerfectScores
	case CriteriaDailyGoal:
		return s.DailyGoalsMet
	default:
		return 0
	}
}

// Satisfied reports whether the stats meet the criteria threshold.
func (c Criteria) Satisfied(stats Stats) bool {
	return stats.For(c.Type) >= c.Target
}

// Progress returns how close the stats are to the threshold, as a
// percentage capped at 100.
func (c Criteria) Progress(stats Stats) int {
	if c.Target <= 0 {
		return 0
	}
	pct := stats.For(c.Type) * 100 / c.Target
	if pct > 100 {
		return 100
	}
	return pct
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY HINTS
// ══════════════════════════════════════════════════════════════════════════════

// ActivityHint narrows which badge criteria an evaluation bothers to
// check. It is a performance pre-filter only, never a correctness
// filter: an empty hint checks everything.
type ActivityHint string

const (
	HintLearnWord      ActivityHint = "learn_word"
	HintDailyPractice  ActivityHint = "daily_practice"
	HintCompleteLesson ActivityHint = "complete_lesson"
	HintPerfectScore   ActivityHint = "perfect_score"
)

var hintCriteria = map[ActivityHint][]CriteriaType{
	HintLearnWord:      {CriteriaWordsLearned, CriteriaXP, CriteriaLevel},
	HintDailyPractice:  {CriteriaStreak, CriteriaDailyGoal, CriteriaXP},
	HintCompleteLesson: {CriteriaLessonsCompleted, CriteriaXP, CriteriaLevel},
	HintPerfectScore:   {CriteriaPerfectScores, CriteriaXP},
}

// Covers reports whether the hint includes the given criteria type.
// Unknown hints cover every type.
func (h ActivityHint) Covers(t CriteriaType) bool {
	types, ok := hintCriteria[h]
	if !ok {
		return true
	}
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
