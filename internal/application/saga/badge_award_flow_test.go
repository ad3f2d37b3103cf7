package saga

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

const flowLearnerID = "9b2e6d41-3a5c-4f7e-8d0b-2c4a6e8f1d39"

// --- in-memory fakes ---

type memLearnerRepo struct {
	mu       sync.Mutex
	learners map[string]*learner.Learner
}

func newMemLearnerRepo(learners ...*learner.Learner) *memLearnerRepo {
	r := &memLearnerRepo{learners: make(map[string]*learner.Learner)}
	for _, l := range learners {
		r.learners[l.ID] = l.Clone()
	}
	return r
}

func (r *memLearnerRepo) Create(_ context.Context, l *learner.Learner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.learners[l.ID]; ok {
		return learner.ErrLearnerAlreadyExists
	}
	r.learners[l.ID] = l.Clone()
	return nil
}

func (r *memLearnerRepo) GetByID(_ context.Context, id string) (*learner.Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.learners[id]
	if !ok {
		return nil, learner.ErrLearnerNotFound
	}
	return l.Clone(), nil
}

func (r *memLearnerRepo) Update(_ context.Context, l *learner.Learner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.learners[l.ID]
	if !ok {
		return learner.ErrLearnerNotFound
	}
	if current.Version != l.Version {
		return shared.ErrOptimisticLock
	}
	saved := l.Clone()
	saved.Version++
	r.learners[l.ID] = saved
	return nil
}

func (r *memLearnerRepo) GetTopByXP(_ context.Context, limit int) ([]*learner.Learner, error) {
	return nil, nil
}

func (r *memLearnerRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.learners), nil
}

func (r *memLearnerRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.learners[id]
	return ok, nil
}

type memCatalogue struct {
	badges []badge.Badge
}

func (c *memCatalogue) ListAll(_ context.Context) ([]badge.Badge, error) {
	return c.badges, nil
}

func (c *memCatalogue) GetByID(_ context.Context, id string) (*badge.Badge, error) {
	for i := range c.badges {
		if c.badges[i].ID == id {
			b := c.badges[i]
			return &b, nil
		}
	}
	return nil, badge.ErrBadgeNotFound
}

func (c *memCatalogue) Seed(_ context.Context, badges []badge.Badge) error {
	c.badges = append(c.badges, badges...)
	return nil
}

type memEarnedRepo struct {
	mu     sync.Mutex
	earned map[string][]badge.EarnedBadge
}

func newMemEarnedRepo() *memEarnedRepo {
	return &memEarnedRepo{earned: make(map[string][]badge.EarnedBadge)}
}

func (r *memEarnedRepo) ListByLearner(_ context.Context, learnerID string) ([]badge.EarnedBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]badge.EarnedBadge(nil), r.earned[learnerID]...), nil
}

func (r *memEarnedRepo) Append(_ context.Context, e badge.EarnedBadge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.earned[e.LearnerID] {
		if existing.BadgeID == e.BadgeID {
			return badge.ErrAlreadyEarned
		}
	}
	r.earned[e.LearnerID] = append(r.earned[e.LearnerID], e)
	return nil
}

func (r *memEarnedRepo) Has(_ context.Context, learnerID, badgeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.earned[learnerID] {
		if existing.BadgeID == badgeID {
			return true, nil
		}
	}
	return false, nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *memPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) countOf(t shared.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType() == t {
			n++
		}
	}
	return n
}

// --- fixtures ---

func xpBadge(id string, target, bonus int) badge.Badge {
	return badge.Badge{
		ID:          id,
		Name:        id,
		Description: id,
		Category:    badge.CategoryBronze,
		Criteria:    badge.Criteria{Type: badge.CriteriaXP, Target: target},
		XPBonus:     bonus,
	}
}

func streakBadge(id string, target, bonus int) badge.Badge {
	return badge.Badge{
		ID:          id,
		Name:        id,
		Description: id,
		Category:    badge.CategorySilver,
		Criteria:    badge.Criteria{Type: badge.CriteriaStreak, Target: target},
		XPBonus:     bonus,
	}
}

type flowFixture struct {
	flow        *BadgeAwardFlow
	learnerRepo *memLearnerRepo
	earnedRepo  *memEarnedRepo
	publisher   *memPublisher
}

func newFlowFixture(t *testing.T, xp int, badges ...badge.Badge) *flowFixture {
	t.Helper()

	lrn, err := learner.NewLearner(learner.NewLearnerParams{
		ID:          flowLearnerID,
		DisplayName: "Aruzhan",
		InitialXP:   shared.XP(xp),
	})
	require.NoError(t, err)

	learnerRepo := newMemLearnerRepo(lrn)
	earnedRepo := newMemEarnedRepo()
	publisher := &memPublisher{}
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})

	flow := NewBadgeAwardFlow(
		&memCatalogue{badges: badges},
		earnedRepo,
		learnerRepo,
		publisher,
		log,
		DefaultBadgeAwardFlowConfig(),
	)

	return &flowFixture{flow: flow, learnerRepo: learnerRepo, earnedRepo: earnedRepo, publisher: publisher}
}

// --- tests ---

func TestBadgeAwardFlow_AwardsSatisfiedBadges(t *testing.T) {
	fx := newFlowFixture(t, 120,
		xpBadge("newbie", 50, 10),
		xpBadge("explorer", 100, 20),
		xpBadge("champion", 1000, 100))

	awarded, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)

	require.Len(t, awarded, 2)
	assert.Equal(t, "newbie", awarded[0].ID)
	assert.Equal(t, "explorer", awarded[1].ID)

	earned, err := fx.earnedRepo.ListByLearner(context.Background(), flowLearnerID)
	require.NoError(t, err)
	assert.Len(t, earned, 2)

	assert.Equal(t, 2, fx.publisher.countOf(shared.EventBadgeEarned))
}

func TestBadgeAwardFlow_FoldsXPBonusBack(t *testing.T) {
	fx := newFlowFixture(t, 120, xpBadge("newbie", 50, 10), xpBadge("explorer", 100, 20))

	_, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)

	lrn, err := fx.learnerRepo.GetByID(context.Background(), flowLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 150, lrn.XP.Int(), "both bonuses applied in one update")

	assert.Equal(t, 1, fx.publisher.countOf(shared.EventXPGained))
}

func TestBadgeAwardFlow_BonusCanCrossLevelThreshold(t *testing.T) {
	// 95 XP is level 1; the 10-point bonus lifts past the 100 XP mark.
	fx := newFlowFixture(t, 95, xpBadge("newbie", 50, 10))

	_, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)

	lrn, err := fx.learnerRepo.GetByID(context.Background(), flowLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 105, lrn.XP.Int())
	assert.Equal(t, 2, lrn.Level().Int())

	assert.Equal(t, 1, fx.publisher.countOf(shared.EventLevelUp))
}

func TestBadgeAwardFlow_EarnedBadgesAreNotReAwarded(t *testing.T) {
	fx := newFlowFixture(t, 120, xpBadge("newbie", 50, 10))

	first, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)
	assert.Empty(t, second)

	lrn, err := fx.learnerRepo.GetByID(context.Background(), flowLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 130, lrn.XP.Int(), "bonus applied exactly once")
}

func TestBadgeAwardFlow_HintSkipsUncoveredCriteria(t *testing.T) {
	// Streak badges are outside the learn_word hint even when satisfied.
	fx := newFlowFixture(t, 120, streakBadge("week-warrior", 0, 30))

	awarded, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	awarded, err = fx.flow.CheckAndAward(context.Background(), flowLearnerID, "")
	require.NoError(t, err)
	assert.Len(t, awarded, 1, "an unknown hint checks everything")
}

func TestBadgeAwardFlow_DisabledBonusesStillAward(t *testing.T) {
	fx := newFlowFixture(t, 120, xpBadge("newbie", 50, 10))
	fx.flow.config.EnableXPBonuses = false

	awarded, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)
	require.Len(t, awarded, 1)

	lrn, err := fx.learnerRepo.GetByID(context.Background(), flowLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 120, lrn.XP.Int(), "badge recorded but no XP folded back")
}

func TestBadgeAwardFlow_MaxAwardsPerRunBoundsOneTrigger(t *testing.T) {
	badges := []badge.Badge{
		xpBadge("b1", 1, 0), xpBadge("b2", 2, 0), xpBadge("b3", 3, 0),
	}
	fx := newFlowFixture(t, 120, badges...)
	fx.flow.config.MaxAwardsPerRun = 2

	awarded, err := fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)
	assert.Len(t, awarded, 2)

	awarded, err = fx.flow.CheckAndAward(context.Background(), flowLearnerID, badge.HintLearnWord)
	require.NoError(t, err)
	assert.Len(t, awarded, 1, "the remainder lands on the next trigger")
}

func TestBadgeAwardFlow_UnknownLearner(t *testing.T) {
	fx := newFlowFixture(t, 0)

	_, err := fx.flow.CheckAndAward(context.Background(), "0c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e5f", badge.HintLearnWord)
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}
