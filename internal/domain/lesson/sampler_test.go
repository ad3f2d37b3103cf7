package lesson

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
)

func makePool(t *testing.T, n int, band catalogue.DifficultyBand, numeric int) []*catalogue.Item {
	t.Helper()
	pool := make([]*catalogue.Item, 0, n)
	for i := 0; i < n; i++ {
		item, err := catalogue.NewItem(
			fmt.Sprintf("00000000-0000-4000-8000-%012d", i),
			fmt.Sprintf("word-%d", i),
			band, numeric,
		)
		require.NoError(t, err)
		pool = append(pool, item)
	}
	return pool
}

func ids(items []*catalogue.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBandTable_FilterFor(t *testing.T) {
	table := DefaultBandTable()

	low := table.FilterFor(1)
	assert.Equal(t, []catalogue.DifficultyBand{catalogue.BandBeginner}, low.Bands)
	assert.Equal(t, 3, low.MaxNumericLevel)

	mid := table.FilterFor(4)
	assert.Len(t, mid.Bands, 2)
	assert.Equal(t, 6, mid.MaxNumericLevel)

	high := table.FilterFor(7)
	assert.Equal(t, 4, high.MinNumericLevel)
	assert.Equal(t, 9, high.MaxNumericLevel)

	top := table.FilterFor(12)
	assert.True(t, top.Unfiltered())
}

func TestSelectDailyWords_DeterministicWithinDay(t *testing.T) {
	sampler := NewSampler(nil)
	sel := Selection{
		LearnerLevel:   1,
		Pool:           makePool(t, 60, catalogue.BandBeginner, 2),
		DayIndex:       20513,
		DailyCeiling:   30,
		QuotaRemaining: 30,
	}

	first, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)

	sel.Pool = makePool(t, 60, catalogue.BandBeginner, 2)
	second, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)

	assert.Equal(t, ids(first), ids(second))
}

func TestSelectDailyWords_DifferentDaysDiffer(t *testing.T) {
	sampler := NewSampler(nil)
	base := Selection{
		LearnerLevel:   1,
		Pool:           makePool(t, 60, catalogue.BandBeginner, 2),
		DayIndex:       20513,
		DailyCeiling:   30,
		QuotaRemaining: 30,
	}

	today, err := sampler.SelectDailyWords(base)
	require.NoError(t, err)

	base.Pool = makePool(t, 60, catalogue.BandBeginner, 2)
	base.DayIndex = 20514
	tomorrow, err := sampler.SelectDailyWords(base)
	require.NoError(t, err)

	assert.NotEqual(t, ids(today), ids(tomorrow))
}

func TestSelectDailyWords_ExcludesLearnedAndBandMismatches(t *testing.T) {
	sampler := NewSampler(nil)
	pool := makePool(t, 10, catalogue.BandBeginner, 2)
	advanced := makePool(t, 5, catalogue.BandAdvanced, 8)

	sel := Selection{
		LearnerLevel:   1,
		Pool:           append(pool, advanced...),
		Learned:        map[string]bool{pool[0].ID: true, pool[1].ID: true},
		DayIndex:       100,
		DailyCeiling:   30,
		QuotaRemaining: 30,
	}

	items, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)

	assert.Len(t, items, 8)
	for _, item := range items {
		assert.False(t, sel.Learned[item.ID])
		assert.Equal(t, catalogue.BandBeginner, item.Band)
	}
}

func TestSelectDailyWords_CeilingAndQuota(t *testing.T) {
	sampler := NewSampler(nil)
	sel := Selection{
		LearnerLevel:   1,
		Pool:           makePool(t, 100, catalogue.BandBeginner, 1),
		DayIndex:       7,
		DailyCeiling:   20,
		QuotaRemaining: 5,
	}

	items, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestSelectDailyWords_ExhaustedQuotaYieldsNothing(t *testing.T) {
	sampler := NewSampler(nil)
	sel := Selection{
		LearnerLevel:   1,
		Pool:           makePool(t, 3, catalogue.BandBeginner, 1),
		DayIndex:       7,
		DailyCeiling:   30,
		QuotaRemaining: 0,
	}

	items, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)
	assert.Empty(t, items, "a spent quota means an empty lesson")
}

func TestSelectDailyWords_NegativeQuotaLiftsCap(t *testing.T) {
	sampler := NewSampler(nil)
	sel := Selection{
		LearnerLevel:   1,
		Pool:           makePool(t, 40, catalogue.BandBeginner, 1),
		DayIndex:       7,
		DailyCeiling:   20,
		QuotaRemaining: -1,
	}

	items, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)
	assert.Len(t, items, 20, "only the daily ceiling applies")
}

func TestSelectDailyWords_SkipsWordsLearnedToday(t *testing.T) {
	sampler := NewSampler(nil)
	pool := makePool(t, 20, catalogue.BandBeginner, 1)

	sel := Selection{
		LearnerLevel:   1,
		Pool:           pool,
		DayIndex:       7,
		DailyCeiling:   20,
		QuotaRemaining: 20,
	}
	all, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)

	sel.Pool = makePool(t, 20, catalogue.BandBeginner, 1)
	sel.LearnedToday = map[string]bool{all[0].ID: true, all[1].ID: true}
	remaining, err := sampler.SelectDailyWords(sel)
	require.NoError(t, err)

	assert.Len(t, remaining, 18)
	assert.NotContains(t, ids(remaining), all[0].ID)
	assert.NotContains(t, ids(remaining), all[1].ID)
}

func TestSelectDailyWords_AllLearnedAtLevel(t *testing.T) {
	sampler := NewSampler(nil)
	pool := makePool(t, 3, catalogue.BandBeginner, 1)

	sel := Selection{
		LearnerLevel:   1,
		Pool:           pool,
		Learned:        map[string]bool{pool[0].ID: true, pool[1].ID: true, pool[2].ID: true},
		DayIndex:       7,
		DailyCeiling:   30,
		QuotaRemaining: 30,
	}

	_, err := sampler.SelectDailyWords(sel)
	assert.ErrorIs(t, err, ErrAllLearnedAtLevel)
}
