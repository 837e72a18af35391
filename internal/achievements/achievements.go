// Package achievements awards badges for practice milestones based on
// the learner stats kept by the ledger.
package achievements

import (
	"time"

	"github.com/example/drillbot/internal/ledger"
)

// Achievement describes one earnable badge.
type Achievement struct {
	ID   string
	Icon string
	Name string
	Desc string
}

// Catalog lists every earnable achievement.
var Catalog = []Achievement{
	{ID: "first_blood", Icon: "🏆", Name: "First Blood", Desc: "First correct answer"},
	{ID: "on_fire", Icon: "🔥", Name: "On Fire", Desc: "10 correct answers in a row"},
	{ID: "perfectionist", Icon: "🎯", Name: "Perfectionist", Desc: "20 correct answers in a row"},
	{ID: "unstoppable", Icon: "⚡", Name: "Unstoppable", Desc: "25 correct answers in a row"},
	{ID: "big_brain", Icon: "🧠", Name: "Big Brain", Desc: "100 correct answers in one session"},
	{ID: "masochist", Icon: "💀", Name: "Masochist", Desc: "50 wrong answers in one session"},
	{ID: "night_owl", Icon: "🦉", Name: "Night Owl", Desc: "Practicing after midnight"},
	{ID: "early_bird", Icon: "☀️", Name: "Early Bird", Desc: "Practicing before 7:00"},
	{ID: "centurion", Icon: "💯", Name: "Centurion", Desc: "100 correct answers total"},
	{ID: "scholar", Icon: "📚", Name: "Scholar", Desc: "500 correct answers total"},
	{ID: "master", Icon: "🎓", Name: "Master", Desc: "1000 correct answers total"},
	{ID: "streak_week", Icon: "📅", Name: "Streaker", Desc: "Practiced 7 days in a row"},
	{ID: "comeback", Icon: "💪", Name: "Comeback Kid", Desc: "5 in a row after 5 mistakes"},
}

var catalogByID = func() map[string]Achievement {
	m := make(map[string]Achievement, len(Catalog))
	for _, a := range Catalog {
		m[a.ID] = a
	}
	return m
}()

// ByID looks up an achievement definition.
func ByID(id string) (Achievement, bool) {
	a, ok := catalogByID[id]
	return a, ok
}

// Evaluate checks every achievement rule against the current learner
// stats and unlocks the ones newly earned, returning them in catalog
// order. Already-unlocked achievements are skipped.
func Evaluate(l *ledger.Ledger, now time.Time) ([]Achievement, error) {
	st := l.Stats()
	hour := now.Hour()

	earned := map[string]bool{
		"first_blood":   st.TotalCorrect >= 1,
		"on_fire":       st.CurrentStreak >= 10,
		"perfectionist": st.CurrentStreak >= 20,
		"unstoppable":   st.CurrentStreak >= 25,
		"big_brain":     st.SessionCorrect >= 100,
		"masochist":     st.SessionIncorrect >= 50,
		"night_owl":     hour >= 0 && hour < 5,
		"early_bird":    hour >= 5 && hour < 7,
		"centurion":     st.TotalCorrect >= 100,
		"scholar":       st.TotalCorrect >= 500,
		"master":        st.TotalCorrect >= 1000,
		"streak_week":   st.DaysStreak >= 7,
		"comeback":      st.CurrentStreak >= 5 && st.SessionIncorrect >= 5,
	}

	var newly []Achievement
	for _, a := range Catalog {
		if !earned[a.ID] {
			continue
		}
		unlocked, err := l.Unlock(a.ID, now)
		if err != nil {
			return newly, err
		}
		if unlocked {
			newly = append(newly, a)
		}
	}
	return newly, nil
}
