package command

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/application/saga"
	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

const (
	testLearnerID = "2f5d4a31-9c6e-4f0a-8b1d-3e7c5a9f2b41"
	testWordID    = "7a1b3c5d-2e4f-4a6b-8c0d-1e3f5a7b9c2d"
)

type fixture struct {
	learnerRepo *memLearnerRepo
	learnedRepo *memLearnedWordRepo
	reviewRepo  *memReviewRepo
	earnedRepo  *memEarnedRepo
	publisher   *memPublisher
	handler     *RecordWordLearnedHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	lrn, err := learner.NewLearner(learner.NewLearnerParams{
		ID:          testLearnerID,
		DisplayName: "Aruzhan",
	})
	require.NoError(t, err)

	learnerRepo := newMemLearnerRepo()
	require.NoError(t, learnerRepo.Create(context.Background(), lrn))

	word, err := catalogue.NewItem(testWordID, "serendipity", catalogue.BandBeginner, 2)
	require.NoError(t, err)

	learnedRepo := newMemLearnedWordRepo()
	reviewRepo := newMemReviewRepo()
	earnedRepo := newMemEarnedRepo()
	publisher := &memPublisher{}
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})

	badgeFlow := saga.NewBadgeAwardFlow(
		&memBadgeCatalogue{badges: badge.DefaultCatalogue()},
		earnedRepo,
		learnerRepo,
		publisher,
		log,
		saga.DefaultBadgeAwardFlowConfig(),
	)

	handler := NewRecordWordLearnedHandler(
		learnerRepo,
		learnedRepo,
		newMemCatalogueRepo(word),
		reviewRepo,
		badgeFlow,
		nil,
		publisher,
		log,
		DefaultRecordWordLearnedConfig(),
	)

	return &fixture{
		learnerRepo: learnerRepo,
		learnedRepo: learnedRepo,
		reviewRepo:  reviewRepo,
		earnedRepo:  earnedRepo,
		publisher:   publisher,
		handler:     handler,
	}
}

func TestRecordWordLearned_AwardsXPAndConsumesQuota(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	result, err := f.handler.Handle(context.Background(), RecordWordLearnedCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Activity:  learner.ActivityVocabulary,
		Timestamp: now,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.XPGained)
	assert.Equal(t, 5, result.NewXP)
	assert.Equal(t, 1, result.NewLevel)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.Counters.TotalWords)
	assert.Equal(t, 29, result.RemainingQuota)

	learned, err := f.learnedRepo.Contains(context.Background(), testLearnerID, testWordID)
	require.NoError(t, err)
	assert.True(t, learned)

	// Review state is created lazily on first encounter.
	state, err := f.reviewRepo.Get(context.Background(), testLearnerID, testWordID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Repetitions)
}

func TestRecordWordLearned_SecondCallIsRejected(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cmd := RecordWordLearnedCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Activity:  learner.ActivityVocabulary,
		Timestamp: now,
	}

	_, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = f.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, learner.ErrWordAlreadyLearned)

	// XP unchanged by the rejected replay.
	lrn, err := f.learnerRepo.GetByID(context.Background(), testLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 5, lrn.XP.Int())
	assert.Equal(t, 1, lrn.Counters.TotalWords)
}

func TestRecordWordLearned_QuotaExhaustedRejectsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Exhaust the flashcard ceiling (20) plus one more attempt.
	// No badge flow here: XP bonuses would obscure the quota arithmetic.
	f.handler.badgeFlow = nil

	words := make([]*catalogue.Item, 0, 21)
	repo := newMemCatalogueRepo()
	for i := 0; i < 21; i++ {
		id := testWordID[:len(testWordID)-2] + string(rune('a'+i/10)) + string(rune('a'+i%10))
		word, err := catalogue.NewItem(id, "word", catalogue.BandBeginner, 2)
		require.NoError(t, err)
		words = append(words, word)
		repo.items[word.ID] = word
	}
	f.handler.catalogueRepo = repo

	for i := 0; i < 20; i++ {
		_, err := f.handler.Handle(context.Background(), RecordWordLearnedCommand{
			LearnerID: testLearnerID,
			WordID:    words[i].ID,
			Activity:  learner.ActivityFlashcard,
			Timestamp: now,
		})
		require.NoError(t, err, "flashcard %d should fit the ceiling", i+1)
	}

	_, err := f.handler.Handle(context.Background(), RecordWordLearnedCommand{
		LearnerID: testLearnerID,
		WordID:    words[20].ID,
		Activity:  learner.ActivityFlashcard,
		Timestamp: now,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)

	var quotaErr *learner.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, learner.ActivityFlashcard, quotaErr.Kind)
	assert.Equal(t, 20, quotaErr.Ceiling)

	// The rejected word never entered the learned-set, and no XP moved.
	learned, err := f.learnedRepo.Contains(context.Background(), testLearnerID, words[20].ID)
	require.NoError(t, err)
	assert.False(t, learned)
	assert.Equal(t, 20, f.learnedRepo.appends, "the rejection must not write the learned-set")
	assert.Equal(t, 0, f.learnedRepo.removes, "the rejection must not need compensation")

	lrn, err := f.learnerRepo.GetByID(context.Background(), testLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 20, lrn.Counters.Flashcards)
	assert.Equal(t, 20, lrn.Counters.TotalWords)
	assert.Equal(t, 100, lrn.XP.Int())
}

func TestRecordWordLearnedConfig_FieldsDefaultIndependently(t *testing.T) {
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	tight := learner.QuotaConfig{TotalWords: 3, Flashcards: 2, Pronunciation: 1, Grammar: 1}

	h := NewRecordWordLearnedHandler(
		newMemLearnerRepo(), newMemLearnedWordRepo(), newMemCatalogueRepo(),
		newMemReviewRepo(), nil, nil, &memPublisher{}, log,
		RecordWordLearnedConfig{Quotas: tight})
	assert.Equal(t, tight, h.quotas, "a zero XPPerWord must not discard caller quotas")
	assert.Equal(t, 5, h.xpPerWord)

	h = NewRecordWordLearnedHandler(
		newMemLearnerRepo(), newMemLearnedWordRepo(), newMemCatalogueRepo(),
		newMemReviewRepo(), nil, nil, &memPublisher{}, log,
		RecordWordLearnedConfig{XPPerWord: 7})
	assert.Equal(t, learner.DefaultQuotaConfig(), h.quotas)
	assert.Equal(t, 7, h.xpPerWord)
}

func TestRecordWordLearned_UnknownWordFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), RecordWordLearnedCommand{
		LearnerID: testLearnerID,
		WordID:    "00000000-0000-4000-8000-0000000000ff",
		Activity:  learner.ActivityVocabulary,
	})
	assert.ErrorIs(t, err, catalogue.ErrItemNotFound)
}

func TestRecordWordLearned_GrammarIsRejectedByValidation(t *testing.T) {
	cmd := RecordWordLearnedCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Activity:  learner.ActivityGrammar,
	}
	assert.ErrorIs(t, cmd.Validate(), shared.ErrUnknownActivity)
}

func TestRecordWordLearned_AwardsBadges(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Ten learned words satisfy Word Collector (10 words) and Newbie
	// (50 XP at 5 XP per word).
	repo := newMemCatalogueRepo()
	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		id := testWordID[:len(testWordID)-2] + string(rune('a'+i)) + "f"
		word, err := catalogue.NewItem(id, "word", catalogue.BandBeginner, 2)
		require.NoError(t, err)
		repo.items[word.ID] = word
		ids = append(ids, id)
	}
	f.handler.catalogueRepo = repo

	var lastResult *RecordWordLearnedResult
	for _, id := range ids {
		result, err := f.handler.Handle(context.Background(), RecordWordLearnedCommand{
			LearnerID: testLearnerID,
			WordID:    id,
			Activity:  learner.ActivityVocabulary,
			Timestamp: now,
		})
		require.NoError(t, err)
		lastResult = result
	}

	badgeIDs := make([]string, 0, len(lastResult.NewBadges))
	for _, b := range lastResult.NewBadges {
		badgeIDs = append(badgeIDs, b.ID)
	}
	assert.Contains(t, badgeIDs, "newbie")
	assert.Contains(t, badgeIDs, "word-collector")

	// Badge XP bonuses fold back into the learner's total.
	lrn, err := f.learnerRepo.GetByID(context.Background(), testLearnerID)
	require.NoError(t, err)
	assert.Equal(t, 70, lrn.XP.Int())
}

func TestRecordWordLearned_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := f.handler.Handle(context.Background(), RecordWordLearnedCommand{
		LearnerID: testLearnerID,
		WordID:    testWordID,
		Activity:  learner.ActivityVocabulary,
		Timestamp: now,
	})
	require.NoError(t, err)

	types := f.publisher.typesSeen()
	assert.Contains(t, types, shared.EventWordLearned)
	assert.Contains(t, types, shared.EventXPGained)
	assert.Contains(t, types, shared.EventDailyStreakUpdated)
}
