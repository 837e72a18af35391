// Package quiz builds multiple-choice questions over the loaded drills
// for presentation layers that want structured options instead of free
// text input.
package quiz

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/pkg/models"
)

// Question is one multiple-choice question built from a drill.
type Question struct {
	Drill        models.Drill // The drill being tested
	Options      []string     // Possible answers, shuffled
	CorrectIndex int          // Index of the correct answer in Options
}

// Builder generates quiz questions from the drill store.
type Builder struct {
	store *drills.Store
	rng   *rand.Rand
}

// NewBuilder creates a builder seeded from the current time.
func NewBuilder(store *drills.Store) *Builder {
	return NewSeededBuilder(store, time.Now().UnixNano())
}

// NewSeededBuilder creates a builder with a fixed seed, for reproducible
// quizzes in tests.
func NewSeededBuilder(store *drills.Store, seed int64) *Builder {
	return &Builder{store: store, rng: rand.New(rand.NewSource(seed))}
}

// MultipleChoice builds a question for the drill with up to optionCount
// options. Distractors are drawn from sibling drills in the same
// category first, then from the rest of the store. Fewer options are
// returned when the store is too small to fill the count.
func (b *Builder) MultipleChoice(d models.Drill, optionCount int) (Question, error) {
	if optionCount < 2 {
		return Question{}, fmt.Errorf("quiz: option count %d too small", optionCount)
	}

	distractors := b.distractors(d, optionCount-1)
	options := append(distractors, d.Answer)
	b.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correct := 0
	for i, opt := range options {
		if opt == d.Answer {
			correct = i
			break
		}
	}
	return Question{Drill: d, Options: options, CorrectIndex: correct}, nil
}

// BuildQuiz builds up to count questions from the given category, or
// from the whole store when category is empty.
func (b *Builder) BuildQuiz(category string, count, optionCount int) ([]Question, error) {
	if count < 1 {
		return nil, fmt.Errorf("quiz: question count %d too small", count)
	}

	var pool []models.Drill
	if category != "" {
		pool = b.store.ByCategory(category)
	} else {
		pool = b.store.All()
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("quiz: no drills available for category %q", category)
	}

	b.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > count {
		pool = pool[:count]
	}

	questions := make([]Question, 0, len(pool))
	for _, d := range pool {
		q, err := b.MultipleChoice(d, optionCount)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// distractors collects up to n wrong answers for the drill, same
// category first.
func (b *Builder) distractors(d models.Drill, n int) []string {
	seen := map[string]struct{}{d.Answer: {}}
	var out []string

	collect := func(candidates []models.Drill) {
		b.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, c := range candidates {
			if len(out) >= n {
				return
			}
			if _, dup := seen[c.Answer]; dup {
				continue
			}
			seen[c.Answer] = struct{}{}
			out = append(out, c.Answer)
		}
	}

	collect(b.store.ByCategory(d.Category))
	if len(out) < n {
		collect(b.store.All())
	}
	return out
}
