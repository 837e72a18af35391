package practice

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/internal/ledger"
	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

type sliceLoader []models.Drill

func (l sliceLoader) Load() ([]models.Drill, error) { return l, nil }

func newSession(t *testing.T, input string) (*Session, *ledger.Ledger, *bytes.Buffer) {
	t.Helper()

	store := drills.NewStore()
	require.NoError(t, store.Reload(sliceLoader{
		{Category: "go", Question: "what is a goroutine", Answer: "a lightweight thread"},
	}))

	backend, err := ledger.NewJSONStore(filepath.Join(t.TempDir(), "ledger.json"))
	require.NoError(t, err)
	l, err := ledger.New(backend, spaced_repetition.NewSM2(), store)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	out := &bytes.Buffer{}
	selector := spaced_repetition.NewSeededSelector(spaced_repetition.NewSM2(), 1)
	return New(store, l, selector, strings.NewReader(input), out, "test.csv"), l, out
}

func TestRunCorrectAnswer(t *testing.T) {
	s, l, out := newSession(t, "a lightweight thread\nquit\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Correct!")
	assert.Contains(t, out.String(), "Session over: 1/1 correct.")

	rec, ok := l.GetRecord("go::what is a goroutine")
	require.True(t, ok)
	assert.Equal(t, 1, rec.AttemptsCorrect)

	history := l.Sessions()
	require.Len(t, history, 1)
	assert.Equal(t, "test.csv", history[0].Source)
	assert.Equal(t, 1, history[0].Score)
	assert.Equal(t, 1, history[0].Total)
}

func TestRunIncorrectAnswer(t *testing.T) {
	s, l, out := newSession(t, "no idea\nn\nquit\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Expected: a lightweight thread")
	assert.Contains(t, out.String(), "Session over: 0/1 correct.")

	rec, _ := l.GetRecord("go::what is a goroutine")
	assert.Equal(t, 0, rec.AttemptsCorrect)
	assert.Equal(t, 1, rec.AttemptsTotal)
}

func TestRunManualOverride(t *testing.T) {
	s, l, _ := newSession(t, "lightweight threads\ny\nquit\n")

	require.NoError(t, s.Run(context.Background()))

	rec, _ := l.GetRecord("go::what is a goroutine")
	assert.Equal(t, 1, rec.AttemptsCorrect, "override counts the answer as correct")
}

func TestRunQuitImmediately(t *testing.T) {
	s, l, _ := newSession(t, "quit\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, l.Sessions(), "an empty session is not recorded")
}

func TestRunEndOfInput(t *testing.T) {
	s, _, out := newSession(t, "")
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Loaded 1 drills")
}

func TestRunCancelledContext(t *testing.T) {
	s, _, _ := newSession(t, "quit\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestRunAchievementAnnouncement(t *testing.T) {
	s, l, out := newSession(t, "a lightweight thread\nquit\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Achievement unlocked: First Blood")
	u, ok := l.Unlocks()["first_blood"]
	require.True(t, ok)
	assert.True(t, u.Seen, "announced achievements are marked seen")
}

func TestMatchAnswer(t *testing.T) {
	tests := []struct {
		given, want string
		match       bool
	}{
		{"a lightweight thread", "a lightweight thread", true},
		{"A  Lightweight   Thread", "a lightweight thread", true},
		{"  a lightweight thread ", "a lightweight thread", true},
		{"a heavyweight thread", "a lightweight thread", false},
		{"", "a lightweight thread", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		if got := matchAnswer(tt.given, tt.want); got != tt.match {
			t.Errorf("matchAnswer(%q, %q) = %v, want %v", tt.given, tt.want, got, tt.match)
		}
	}
}
