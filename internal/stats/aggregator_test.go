package stats

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/internal/ledger"
	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type sliceLoader []models.Drill

func (l sliceLoader) Load() ([]models.Drill, error) { return l, nil }

func newFixture(t *testing.T) (*Aggregator, *ledger.Ledger, *drills.Store) {
	t.Helper()

	store := drills.NewStore()
	require.NoError(t, store.Reload(sliceLoader{
		{Category: "go", Question: "q1", Answer: "a1"},
		{Category: "go", Question: "q2", Answer: "a2"},
		{Category: "sql", Question: "q3", Answer: "a3"},
	}))

	backend, err := ledger.NewJSONStore(filepath.Join(t.TempDir(), "ledger.json"))
	require.NoError(t, err)
	l, err := ledger.New(backend, spaced_repetition.NewSM2(), store)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	return New(store, l), l, store
}

func answer(t *testing.T, l *ledger.Ledger, key string, correct bool, at time.Time) {
	t.Helper()
	_, err := l.RecordAnswer(key, correct, at)
	require.NoError(t, err)
}

func TestCategoryStats(t *testing.T) {
	agg, l, _ := newFixture(t)

	// q1: 3/3 correct (easy). q2 never seen (new).
	for i := 0; i < 3; i++ {
		answer(t, l, "go::q1", true, t0)
	}

	cs := agg.CategoryStats("go")
	assert.Equal(t, "go", cs.Category)
	assert.Equal(t, 2, cs.TotalDrills)
	assert.Equal(t, 1, cs.SeenCount)
	assert.InDelta(t, 1.0, cs.Accuracy, 1e-9)
	assert.Equal(t, 1, cs.Breakdown[models.Easy])
	assert.Equal(t, 1, cs.Breakdown[models.New])
}

func TestCategoryStatsEmptyCategory(t *testing.T) {
	agg, _, _ := newFixture(t)

	cs := agg.CategoryStats("missing")
	assert.Equal(t, 0, cs.TotalDrills)
	assert.Equal(t, 0.0, cs.Accuracy)
}

func TestAllCategoryStatsSorted(t *testing.T) {
	agg, _, _ := newFixture(t)

	all := agg.AllCategoryStats()
	require.Len(t, all, 2)
	assert.Equal(t, "go", all[0].Category)
	assert.Equal(t, "sql", all[1].Category)
}

func TestGlobalStats(t *testing.T) {
	agg, l, _ := newFixture(t)

	answer(t, l, "go::q1", true, t0)
	answer(t, l, "sql::q3", false, t0)

	gs := agg.GlobalStats()
	assert.Equal(t, 3, gs.TotalDrills)
	assert.Equal(t, 2, gs.SeenCount)
	assert.InDelta(t, 0.5, gs.Accuracy, 1e-9)
	assert.Equal(t, 1, gs.Breakdown[models.New])
}

func TestProgressData(t *testing.T) {
	agg, l, _ := newFixture(t)

	answer(t, l, "go::q1", true, t0)
	answer(t, l, "go::q1", false, t0.Add(time.Hour))
	answer(t, l, "go::q2", true, t0.AddDate(0, 0, 1))

	var points []ProgressPoint
	for p := range agg.ProgressData(t0.AddDate(0, 0, 2), 7) {
		points = append(points, p)
	}

	require.Len(t, points, 2)
	assert.Equal(t, "2025-03-10", points[0].Date)
	assert.Equal(t, 1, points[0].Correct)
	assert.Equal(t, 2, points[0].Total)
	assert.InDelta(t, 0.5, points[0].Accuracy, 1e-9)
	assert.Equal(t, "2025-03-11", points[1].Date)
	assert.Equal(t, 1, points[1].Total)
}

func TestProgressDataWindow(t *testing.T) {
	agg, l, _ := newFixture(t)

	answer(t, l, "go::q1", true, t0)
	answer(t, l, "go::q2", true, t0.AddDate(0, 0, 10))

	var points []ProgressPoint
	for p := range agg.ProgressData(t0.AddDate(0, 0, 10), 7) {
		points = append(points, p)
	}
	require.Len(t, points, 1, "events outside the window are excluded")
	assert.Equal(t, "2025-03-20", points[0].Date)
}

func TestProgressDataRestartable(t *testing.T) {
	agg, l, _ := newFixture(t)

	answer(t, l, "go::q1", true, t0)
	answer(t, l, "go::q2", true, t0.AddDate(0, 0, 1))

	seq := agg.ProgressData(t0.AddDate(0, 0, 2), 7)

	// Break out of the first iteration, then iterate again from the top.
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestSourceStats(t *testing.T) {
	agg, l, _ := newFixture(t)

	_, err := l.RecordSession("drills.xlsx", 7, 10, t0)
	require.NoError(t, err)
	_, err = l.RecordSession("drills.xlsx", 9, 10, t0.AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = l.RecordSession("extra.csv", 2, 5, t0)
	require.NoError(t, err)

	ss := agg.SourceStats("drills.xlsx")
	assert.Equal(t, 2, ss.Sessions)
	assert.Equal(t, 16, ss.Correct)
	assert.Equal(t, 20, ss.Total)
	assert.InDelta(t, 0.8, ss.Accuracy, 1e-9)
	assert.True(t, ss.LastPracticed.Equal(t0.AddDate(0, 0, 1)))
}

func TestSourceStatsUnknownSource(t *testing.T) {
	agg, _, _ := newFixture(t)

	ss := agg.SourceStats("never-practiced.csv")
	assert.Equal(t, 0, ss.Sessions)
	assert.Equal(t, 0.0, ss.Accuracy)
	assert.True(t, ss.LastPracticed.IsZero())
}

func TestAllSourceStatsSorted(t *testing.T) {
	agg, l, _ := newFixture(t)

	_, err := l.RecordSession("second.csv", 1, 2, t0)
	require.NoError(t, err)
	_, err = l.RecordSession("first.csv", 3, 3, t0)
	require.NoError(t, err)

	all := agg.AllSourceStats()
	require.Len(t, all, 2)
	assert.Equal(t, "first.csv", all[0].Source)
	assert.InDelta(t, 1.0, all[0].Accuracy, 1e-9)
	assert.Equal(t, "second.csv", all[1].Source)
	assert.InDelta(t, 0.5, all[1].Accuracy, 1e-9)
}

func TestWeakCategories(t *testing.T) {
	agg, l, _ := newFixture(t)

	// go: 1/4 correct. sql: 3/3 correct.
	answer(t, l, "go::q1", true, t0)
	answer(t, l, "go::q1", false, t0)
	answer(t, l, "go::q2", false, t0)
	answer(t, l, "go::q2", false, t0)
	for i := 0; i < 3; i++ {
		answer(t, l, "sql::q3", true, t0)
	}

	weak := agg.WeakCategories(5)
	require.Len(t, weak, 2)
	assert.Equal(t, "go", weak[0].Category)
	assert.InDelta(t, 0.25, weak[0].Accuracy, 1e-9)
	assert.Equal(t, 4, weak[0].Attempts)
	assert.Equal(t, "sql", weak[1].Category)
}

func TestWeakCategoriesMinimumAttempts(t *testing.T) {
	agg, l, _ := newFixture(t)

	answer(t, l, "go::q1", false, t0)
	answer(t, l, "go::q1", false, t0)

	assert.Empty(t, agg.WeakCategories(5), "fewer than three attempts is not enough signal")
}

func TestWeakCategoriesLimit(t *testing.T) {
	agg, l, _ := newFixture(t)

	for i := 0; i < 3; i++ {
		answer(t, l, "go::q1", false, t0)
		answer(t, l, "sql::q3", true, t0)
	}

	weak := agg.WeakCategories(1)
	require.Len(t, weak, 1)
	assert.Equal(t, "go", weak[0].Category)
}
