// Package practice drives an interactive drill session: select a drill,
// present it, judge the answer, record the outcome. Answer judging here
// is a simple normalized comparison with a manual override; fancier
// matching belongs to the presentation layer.
package practice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/example/drillbot/internal/achievements"
	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/internal/ledger"
	"github.com/example/drillbot/internal/spaced_repetition"
)

// Session runs one interactive practice session over a reader/writer
// pair.
type Session struct {
	drills   *drills.Store
	ledger   *ledger.Ledger
	selector *spaced_repetition.Selector
	in       *bufio.Scanner
	out      io.Writer
	source   string
}

// New creates a practice session. source names the drill collection for
// the session history.
func New(store *drills.Store, l *ledger.Ledger, selector *spaced_repetition.Selector, in io.Reader, out io.Writer, source string) *Session {
	return &Session{
		drills:   store,
		ledger:   l,
		selector: selector,
		in:       bufio.NewScanner(in),
		out:      out,
		source:   source,
	}
}

// Run drives the session until the learner quits, input ends or the
// context is cancelled. The session score is recorded on exit.
func (s *Session) Run(ctx context.Context) error {
	if err := s.ledger.ResetSessionStats(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Loaded %d drills. Press Enter to answer, type \"quit\" to stop.\n\n", s.drills.Len())

	score, total := 0, 0
	for ctx.Err() == nil {
		now := time.Now()
		drill, err := s.selector.SelectDrill(s.drills.All(), s.ledger.AllRecords(), now)
		if err != nil {
			return err
		}

		fmt.Fprintf(s.out, "[%s] %s\n> ", drill.Category, drill.Question)
		answer, ok := s.readLine()
		if !ok || strings.EqualFold(answer, "quit") {
			break
		}

		correct := matchAnswer(answer, drill.Answer)
		if correct {
			fmt.Fprintln(s.out, "✅ Correct!")
		} else {
			fmt.Fprintf(s.out, "❌ Expected: %s\n", drill.Answer)
			fmt.Fprint(s.out, "Count it as correct anyway? [y/N] ")
			if override, ok := s.readLine(); ok && strings.EqualFold(strings.TrimSpace(override), "y") {
				correct = true
			}
		}

		rec, err := s.ledger.RecordAnswer(drill.Key(), correct, now)
		if err != nil {
			return err
		}

		total++
		if correct {
			score++
		}
		fmt.Fprintf(s.out, "Difficulty: %s | Next review in %d day(s)\n\n",
			spaced_repetition.Classify(&rec), rec.IntervalDays)

		newly, err := achievements.Evaluate(s.ledger, now)
		if err != nil {
			log.Printf("Error evaluating achievements: %v", err)
		}
		for _, a := range newly {
			fmt.Fprintf(s.out, "%s Achievement unlocked: %s (%s)\n\n", a.Icon, a.Name, a.Desc)
			if err := s.ledger.MarkUnlockSeen(a.ID); err != nil {
				log.Printf("Error marking achievement seen: %v", err)
			}
		}
	}

	if total > 0 {
		if _, err := s.ledger.RecordSession(s.source, score, total, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Session over: %d/%d correct.\n", score, total)
	}
	return ctx.Err()
}

// readLine reads one line of input, reporting false at end of input.
func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

// matchAnswer compares a given answer against the expected one after
// normalizing case and whitespace.
func matchAnswer(given, want string) bool {
	return normalize(given) != "" && normalize(given) == normalize(want)
}

// normalize lowercases and collapses interior whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
