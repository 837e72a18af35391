// Package stats provides read-only progress views over the retention
// ledger. Everything here is recomputed on demand and never mutates
// ledger state.
package stats

import (
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/internal/ledger"
	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

// Aggregator computes per-category and global statistics from the drill
// store and the retention ledger.
type Aggregator struct {
	drills *drills.Store
	ledger *ledger.Ledger
}

// New creates an aggregator over the given drill store and ledger.
func New(store *drills.Store, l *ledger.Ledger) *Aggregator {
	return &Aggregator{drills: store, ledger: l}
}

// CategoryStats summarizes learning progress for one category.
type CategoryStats struct {
	Category    string                    `json:"category"`
	TotalDrills int                       `json:"total_drills"`
	SeenCount   int                       `json:"seen_count"`
	Accuracy    float64                   `json:"accuracy"`
	Breakdown   map[models.Difficulty]int `json:"difficulty_breakdown"`
}

// CategoryStats returns the stats for a single category, computed over
// the currently loaded drills.
func (a *Aggregator) CategoryStats(category string) CategoryStats {
	return a.categoryStats(category, a.ledger.AllRecords())
}

func (a *Aggregator) categoryStats(category string, records map[string]models.RetentionRecord) CategoryStats {
	cs := CategoryStats{
		Category:  category,
		Breakdown: make(map[models.Difficulty]int),
	}

	var correct, total int
	for _, d := range a.drills.ByCategory(category) {
		cs.TotalDrills++

		rec, ok := records[d.Key()]
		if !ok {
			cs.Breakdown[models.New]++
			continue
		}
		cs.SeenCount++
		cs.Breakdown[spaced_repetition.Classify(&rec)]++
		correct += rec.AttemptsCorrect
		total += rec.AttemptsTotal
	}
	if total > 0 {
		cs.Accuracy = float64(correct) / float64(total)
	}
	return cs
}

// AllCategoryStats returns stats for every loaded category, sorted by
// category name.
func (a *Aggregator) AllCategoryStats() []CategoryStats {
	records := a.ledger.AllRecords()
	categories := a.drills.Categories()
	out := make([]CategoryStats, 0, len(categories))
	for _, c := range categories {
		out = append(out, a.categoryStats(c, records))
	}
	return out
}

// GlobalStats summarizes progress across all loaded drills.
type GlobalStats struct {
	TotalDrills int                       `json:"total_drills"`
	SeenCount   int                       `json:"seen_count"`
	Accuracy    float64                   `json:"accuracy"`
	Breakdown   map[models.Difficulty]int `json:"difficulty_breakdown"`
}

// GlobalStats returns aggregate stats over the whole drill store.
func (a *Aggregator) GlobalStats() GlobalStats {
	records := a.ledger.AllRecords()
	gs := GlobalStats{Breakdown: make(map[models.Difficulty]int)}

	var correct, total int
	for _, d := range a.drills.All() {
		gs.TotalDrills++

		rec, ok := records[d.Key()]
		if !ok {
			gs.Breakdown[models.New]++
			continue
		}
		gs.SeenCount++
		gs.Breakdown[spaced_repetition.Classify(&rec)]++
		correct += rec.AttemptsCorrect
		total += rec.AttemptsTotal
	}
	if total > 0 {
		gs.Accuracy = float64(correct) / float64(total)
	}
	return gs
}

// ProgressPoint is one day of answer history for charting.
type ProgressPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// ProgressData returns a lazy, restartable sequence of per-day progress
// points covering the last days before now, ascending by date. Each
// iteration recomputes from the answer log; the ledger is never mutated.
func (a *Aggregator) ProgressData(now time.Time, days int) iter.Seq[ProgressPoint] {
	return func(yield func(ProgressPoint) bool) {
		since := now.AddDate(0, 0, -days)

		type tally struct{ correct, total int }
		daily := make(map[string]*tally)
		for _, ev := range a.ledger.Answers(since) {
			day := ev.Date.Format("2006-01-02")
			t, ok := daily[day]
			if !ok {
				t = &tally{}
				daily[day] = t
			}
			t.total++
			if ev.Correct {
				t.correct++
			}
		}

		dates := make([]string, 0, len(daily))
		for day := range daily {
			dates = append(dates, day)
		}
		sort.Strings(dates)

		for _, day := range dates {
			t := daily[day]
			p := ProgressPoint{
				Date:     day,
				Correct:  t.correct,
				Total:    t.total,
				Accuracy: float64(t.correct) / float64(t.total),
			}
			if !yield(p) {
				return
			}
		}
	}
}

// SourceStats summarizes session history for one drill source (the file
// or collection the drills were loaded from).
type SourceStats struct {
	Source        string    `json:"source"`
	Sessions      int       `json:"sessions"`
	Correct       int       `json:"correct"`
	Total         int       `json:"total"`
	Accuracy      float64   `json:"accuracy"`
	LastPracticed time.Time `json:"last_practiced"`
}

// SourceStats returns aggregate results for every recorded session with
// the given source.
func (a *Aggregator) SourceStats(source string) SourceStats {
	ss := SourceStats{Source: source}
	for _, sess := range a.ledger.Sessions() {
		if sess.Source != source {
			continue
		}
		ss.Sessions++
		ss.Correct += sess.Score
		ss.Total += sess.Total
		if sess.Date.After(ss.LastPracticed) {
			ss.LastPracticed = sess.Date
		}
	}
	if ss.Total > 0 {
		ss.Accuracy = float64(ss.Correct) / float64(ss.Total)
	}
	return ss
}

// AllSourceStats returns stats for every source seen in the session
// history, sorted by source name.
func (a *Aggregator) AllSourceStats() []SourceStats {
	bySource := make(map[string]*SourceStats)
	for _, sess := range a.ledger.Sessions() {
		ss, ok := bySource[sess.Source]
		if !ok {
			ss = &SourceStats{Source: sess.Source}
			bySource[sess.Source] = ss
		}
		ss.Sessions++
		ss.Correct += sess.Score
		ss.Total += sess.Total
		if sess.Date.After(ss.LastPracticed) {
			ss.LastPracticed = sess.Date
		}
	}

	out := make([]SourceStats, 0, len(bySource))
	for _, ss := range bySource {
		if ss.Total > 0 {
			ss.Accuracy = float64(ss.Correct) / float64(ss.Total)
		}
		out = append(out, *ss)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// CategoryAccuracy pairs a category with its all-time accuracy.
type CategoryAccuracy struct {
	Category string  `json:"category"`
	Accuracy float64 `json:"accuracy"`
	Attempts int     `json:"attempts"`
}

// WeakCategories returns up to limit categories with the lowest all-time
// accuracy, weakest first. Categories with fewer than three attempts are
// skipped; orphaned records still count toward their category.
func (a *Aggregator) WeakCategories(limit int) []CategoryAccuracy {
	type tally struct{ correct, total int }
	byCategory := make(map[string]*tally)
	for key, rec := range a.ledger.AllRecords() {
		category := key
		if i := strings.Index(key, "::"); i >= 0 {
			category = key[:i]
		}
		t, ok := byCategory[category]
		if !ok {
			t = &tally{}
			byCategory[category] = t
		}
		t.correct += rec.AttemptsCorrect
		t.total += rec.AttemptsTotal
	}

	var out []CategoryAccuracy
	for category, t := range byCategory {
		if t.total < 3 {
			continue
		}
		out = append(out, CategoryAccuracy{
			Category: category,
			Accuracy: float64(t.correct) / float64(t.total),
			Attempts: t.total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		return out[i].Category < out[j].Category
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
