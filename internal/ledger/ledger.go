// Package ledger owns all mutable learning state: one retention record
// per presented drill plus the answer log, session history, learner
// stats and achievement unlocks, all persisted write-through after every
// mutation so a crash loses at most the in-flight update.
package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

// Log caps carried over from the original tracker so the ledger file
// stays bounded.
const (
	maxAnswerLog = 5000
	maxSessions  = 1000
)

// State is the full persisted ledger state.
type State struct {
	Records  map[string]models.RetentionRecord `json:"drills"`
	Answers  []models.AnswerEvent              `json:"answers_log"`
	Sessions []models.Session                  `json:"sessions"`
	Stats    models.LearnerStats               `json:"stats"`
	Unlocks  map[string]models.Unlock          `json:"achievements"`
}

// NewState returns an empty ledger state with initialized maps.
func NewState() *State {
	return &State{
		Records: make(map[string]models.RetentionRecord),
		Unlocks: make(map[string]models.Unlock),
	}
}

// Clone returns a deep copy of the state. Record and unlock values are
// value types, so copying the containers is enough.
func (s *State) Clone() *State {
	out := &State{
		Records:  make(map[string]models.RetentionRecord, len(s.Records)),
		Answers:  append([]models.AnswerEvent(nil), s.Answers...),
		Sessions: append([]models.Session(nil), s.Sessions...),
		Stats:    s.Stats,
		Unlocks:  make(map[string]models.Unlock, len(s.Unlocks)),
	}
	for k, v := range s.Records {
		out.Records[k] = v
	}
	for k, v := range s.Unlocks {
		out.Unlocks[k] = v
	}
	return out
}

// Store is a durable backend for ledger state. Implementations must make
// each call atomic: either the whole mutation becomes durable or the
// previous durable state survives.
type Store interface {
	// Load returns the persisted state. A fresh backend returns an empty
	// state, never nil.
	Load() (*State, error)
	// ApplyAnswer durably writes one recorded answer: the updated
	// retention record, the appended answer event and the new stats.
	ApplyAnswer(key string, rec models.RetentionRecord, ev models.AnswerEvent, stats models.LearnerStats) error
	// AppendSession durably appends a completed session.
	AppendSession(sess models.Session) error
	// SaveStats durably replaces the learner stats.
	SaveStats(stats models.LearnerStats) error
	// PutUnlock durably upserts one achievement unlock.
	PutUnlock(id string, u models.Unlock) error
	// Reset durably clears all state.
	Reset() error
	Close() error
}

// KeySet answers whether a drill key is currently loaded. *drills.Store
// satisfies it.
type KeySet interface {
	Has(key string) bool
}

// Ledger is the single owner of retention state. Reads are served from
// memory; every mutation goes through the store first and is applied to
// memory only after the write succeeds. A mutex serializes mutations so
// no partial write is ever visible.
type Ledger struct {
	mu    sync.Mutex
	store Store
	sm2   *spaced_repetition.SM2
	keys  KeySet // nil → permissive (accept any key)
	state *State
}

// New loads the persisted state from the store and returns a ledger over
// it. A nil keys makes RecordAnswer permissive; passing the drill store
// enables the strict unknown-key policy.
func New(store Store, sm2 *spaced_repetition.SM2, keys KeySet) (*Ledger, error) {
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	if state.Records == nil {
		state.Records = make(map[string]models.RetentionRecord)
	}
	if state.Unlocks == nil {
		state.Unlocks = make(map[string]models.Unlock)
	}
	return &Ledger{store: store, sm2: sm2, keys: keys, state: state}, nil
}

// GetRecord returns the retention record for a drill key, if present.
// No side effects; an absent record means the drill is new.
func (l *Ledger) GetRecord(key string) (models.RetentionRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.state.Records[key]
	return rec, ok
}

// AllRecords returns a copy of the full drill key → record mapping,
// including orphaned records for drills no longer loaded.
func (l *Ledger) AllRecords() map[string]models.RetentionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]models.RetentionRecord, len(l.state.Records))
	for k, v := range l.state.Records {
		out[k] = v
	}
	return out
}

// RecordAnswer records one answer outcome for the drill key. The record
// is created with defaults on first presentation, updated with the SM-2
// rule, appended to the answer log and persisted write-through, then
// returned. With a key set configured, unknown keys return
// ErrUnknownDrill before any state changes.
func (l *Ledger) RecordAnswer(key string, correct bool, now time.Time) (models.RetentionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.keys != nil && !l.keys.Has(key) {
		return models.RetentionRecord{}, fmt.Errorf("%w: %q", ErrUnknownDrill, key)
	}

	rec, ok := l.state.Records[key]
	if !ok {
		rec = l.sm2.NewRecord()
	}
	l.sm2.Apply(&rec, correct, now)

	ev := models.AnswerEvent{
		Date:     now,
		Key:      key,
		Category: categoryOf(key),
		Correct:  correct,
	}

	stats := l.state.Stats
	updateStats(&stats, correct, now)

	if err := l.store.ApplyAnswer(key, rec, ev, stats); err != nil {
		return models.RetentionRecord{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	l.state.Records[key] = rec
	l.state.Answers = append(l.state.Answers, ev)
	if len(l.state.Answers) > maxAnswerLog {
		l.state.Answers = l.state.Answers[len(l.state.Answers)-maxAnswerLog:]
	}
	l.state.Stats = stats
	return rec, nil
}

// RecordSession appends a completed practice session to the history.
func (l *Ledger) RecordSession(source string, score, total int, now time.Time) (models.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess := models.Session{
		ID:     uuid.NewString(),
		Date:   now,
		Source: source,
		Score:  score,
		Total:  total,
	}
	if err := l.store.AppendSession(sess); err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	l.state.Sessions = append(l.state.Sessions, sess)
	if len(l.state.Sessions) > maxSessions {
		l.state.Sessions = l.state.Sessions[len(l.state.Sessions)-maxSessions:]
	}
	return sess, nil
}

// Answers returns the answer events recorded at or after since,
// oldest first.
func (l *Ledger) Answers(since time.Time) []models.AnswerEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.AnswerEvent
	for _, ev := range l.state.Answers {
		if !ev.Date.Before(since) {
			out = append(out, ev)
		}
	}
	return out
}

// Sessions returns a copy of the session history, oldest first.
func (l *Ledger) Sessions() []models.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Session(nil), l.state.Sessions...)
}

// Stats returns the current learner stats.
func (l *Ledger) Stats() models.LearnerStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Stats
}

// ResetSessionStats zeroes the per-session counters at the start of a
// new practice session.
func (l *Ledger) ResetSessionStats() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := l.state.Stats
	stats.SessionCorrect = 0
	stats.SessionIncorrect = 0
	if err := l.store.SaveStats(stats); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	l.state.Stats = stats
	return nil
}

// Unlocks returns a copy of the achievement unlock map.
func (l *Ledger) Unlocks() map[string]models.Unlock {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]models.Unlock, len(l.state.Unlocks))
	for k, v := range l.state.Unlocks {
		out[k] = v
	}
	return out
}

// Unlock records an achievement as earned. Unlocking an already-earned
// achievement is a no-op and reports false.
func (l *Ledger) Unlock(id string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, done := l.state.Unlocks[id]; done {
		return false, nil
	}
	u := models.Unlock{UnlockedAt: now}
	if err := l.store.PutUnlock(id, u); err != nil {
		return false, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	l.state.Unlocks[id] = u
	return true, nil
}

// MarkUnlockSeen marks an earned achievement as shown to the learner.
func (l *Ledger) MarkUnlockSeen(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.state.Unlocks[id]
	if !ok || u.Seen {
		return nil
	}
	u.Seen = true
	if err := l.store.PutUnlock(id, u); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	l.state.Unlocks[id] = u
	return nil
}

// Reset clears the whole ledger, durably and in memory. This is the only
// deletion path for retention records.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Reset(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	l.state = NewState()
	return nil
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

// updateStats applies one answer to the global counters, keeping the
// correct-answer streak and the daily practice streak.
func updateStats(st *models.LearnerStats, correct bool, now time.Time) {
	if correct {
		st.TotalCorrect++
		st.SessionCorrect++
		st.CurrentStreak++
		if st.CurrentStreak > st.BestStreak {
			st.BestStreak = st.CurrentStreak
		}
	} else {
		st.TotalIncorrect++
		st.SessionIncorrect++
		st.CurrentStreak = 0
	}

	today := now.Format("2006-01-02")
	if st.LastPracticeDate != today {
		yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
		if st.LastPracticeDate == yesterday {
			st.DaysStreak++
		} else {
			st.DaysStreak = 1
		}
		st.LastPracticeDate = today
	}
}

// categoryOf extracts the category half of a drill key.
func categoryOf(key string) string {
	if i := strings.Index(key, "::"); i >= 0 {
		return key[:i]
	}
	return key
}
