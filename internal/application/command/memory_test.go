package command

import (
	"context"
	"sync"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/review"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/timeutil"
)

// In-memory repository fakes shared by the command and saga tests.

type memLearnerRepo struct {
	mu       sync.Mutex
	learners map[string]*learner.Learner
}

func newMemLearnerRepo() *memLearnerRepo {
	return &memLearnerRepo{learners: make(map[string]*learner.Learner)}
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
	stored, ok := r.learners[l.ID]
	if !ok {
		return learner.ErrLearnerNotFound
	}
	if stored.Version != l.Version {
		return shared.ErrOptimisticLock
	}
	updated := l.Clone()
	updated.Version++
	r.learners[l.ID] = updated
	l.Version = updated.Version
	return nil
}

func (r *memLearnerRepo) GetTopByXP(_ context.Context, limit int) ([]*learner.Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*learner.Learner, 0, len(r.learners))
	for _, l := range r.learners {
		out = append(out, l.Clone())
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].XP.Int() > out[i].XP.Int() {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
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

type memLearnedWordRepo struct {
	mu      sync.Mutex
	entries map[string]map[string]learner.LearnedWord
	appends int
	removes int
}

func newMemLearnedWordRepo() *memLearnedWordRepo {
	return &memLearnedWordRepo{entries: make(map[string]map[string]learner.LearnedWord)}
}

func (r *memLearnedWordRepo) Append(_ context.Context, entry learner.LearnedWord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appends++
	set, ok := r.entries[entry.LearnerID]
	if !ok {
		set = make(map[string]learner.LearnedWord)
		r.entries[entry.LearnerID] = set
	}
	if _, exists := set[entry.WordID]; exists {
		return learner.ErrWordAlreadyLearned
	}
	set[entry.WordID] = entry
	return nil
}

func (r *memLearnedWordRepo) Remove(_ context.Context, learnerID, wordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removes++
	if set, ok := r.entries[learnerID]; ok {
		delete(set, wordID)
	}
	return nil
}

func (r *memLearnedWordRepo) Contains(_ context.Context, learnerID, wordID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.entries[learnerID]
	if !ok {
		return false, nil
	}
	_, exists := set[wordID]
	return exists, nil
}

func (r *memLearnedWordRepo) ListWordIDs(_ context.Context, learnerID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.entries[learnerID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memLearnedWordRepo) ListLearnedOn(_ context.Context, learnerID string, day time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, entry := range r.entries[learnerID] {
		if timeutil.SameDay(entry.LearnedAt, day) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memLearnedWordRepo) CountByLearner(_ context.Context, learnerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[learnerID]), nil
}

type memCatalogueRepo struct {
	items map[string]*catalogue.Item
}

func newMemCatalogueRepo(items ...*catalogue.Item) *memCatalogueRepo {
	repo := &memCatalogueRepo{items: make(map[string]*catalogue.Item)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *memCatalogueRepo) GetByID(_ context.Context, id string) (*catalogue.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, catalogue.ErrItemNotFound
	}
	return item, nil
}

func (r *memCatalogueRepo) FetchCandidates(_ context.Context, filter catalogue.CandidateFilter) ([]*catalogue.Item, error) {
	var out []*catalogue.Item
	for _, item := range r.items {
		if filter.Matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memCatalogueRepo) Count(_ context.Context) (int, error) {
	return len(r.items), nil
}

type memReviewRepo struct {
	mu     sync.Mutex
	states map[string]*review.ItemState
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{states: make(map[string]*review.ItemState)}
}

func reviewKey(learnerID, wordID string) string {
	return learnerID + "/" + wordID
}

func (r *memReviewRepo) Get(_ context.Context, learnerID, wordID string) (*review.ItemState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[reviewKey(learnerID, wordID)]
	if !ok {
		return nil, review.ErrStateNotFound
	}
	return state.Clone(), nil
}

func (r *memReviewRepo) Save(_ context.Context, state *review.ItemState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[reviewKey(state.LearnerID, state.WordID)] = state.Clone()
	return nil
}

func (r *memReviewRepo) ListDue(_ context.Context, learnerID string, now time.Time, limit int) ([]*review.ItemState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*review.ItemState
	for _, state := range r.states {
		if state.LearnerID != learnerID {
			continue
		}
		if state.NextReviewAt.IsZero() || !state.NextReviewAt.After(now) {
			due = append(due, state.Clone())
		}
	}
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *memReviewRepo) CountDue(_ context.Context, learnerID string, now time.Time) (int, error) {
	due, err := r.ListDue(context.Background(), learnerID, now, 1<<30)
	return len(due), err
}

func (r *memReviewRepo) Stats(_ context.Context, learnerID string) (review.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats review.Stats
	for _, state := range r.states {
		if state.LearnerID != learnerID {
			continue
		}
		stats.TotalWords++
		if state.IsMemorized {
			stats.MemorizedWords++
		}
		stats.CorrectTotal += state.CorrectCount
		stats.IncorrectTotal += state.IncorrectCount
	}
	return stats, nil
}

type memBadgeCatalogue struct {
	badges []badge.Badge
}

func (r *memBadgeCatalogue) ListAll(_ context.Context) ([]badge.Badge, error) {
	return r.badges, nil
}

func (r *memBadgeCatalogue) GetByID(_ context.Context, id string) (*badge.Badge, error) {
	for i := range r.badges {
		if r.badges[i].ID == id {
			b := r.badges[i]
			return &b, nil
		}
	}
	return nil, badge.ErrBadgeNotFound
}

func (r *memBadgeCatalogue) Seed(_ context.Context, badges []badge.Badge) error {
	r.badges = badges
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

func (p *memPublisher) typesSeen() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}
