package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/drillbot/pkg/models"
)

// SQLStore persists ledger state in a relational database via sqlx.
// Supported drivers are "sqlite3" and "postgres".
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// NewSQLStore connects to the database and initializes the schema.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	if driver != "sqlite3" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported ledger driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initializeSchema creates necessary tables if they don't exist.
func (s *SQLStore) initializeSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS retention_records (
			drill_key TEXT PRIMARY KEY,
			attempts_correct INTEGER NOT NULL DEFAULT 0,
			attempts_total INTEGER NOT NULL DEFAULT 0,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			last_seen TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS answer_log (
			id %s,
			date TIMESTAMP NOT NULL,
			drill_key TEXT NOT NULL,
			category TEXT NOT NULL,
			correct BOOLEAN NOT NULL
		)`, serial),
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			date TIMESTAMP NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS learner_stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_correct INTEGER NOT NULL DEFAULT 0,
			total_incorrect INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			session_correct INTEGER NOT NULL DEFAULT 0,
			session_incorrect INTEGER NOT NULL DEFAULT 0,
			days_streak INTEGER NOT NULL DEFAULT 0,
			last_practice_date TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			unlocked_at TIMESTAMP NOT NULL,
			seen BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Load implements Store.
func (s *SQLStore) Load() (*State, error) {
	state := NewState()

	type recordRow struct {
		DrillKey string `db:"drill_key"`
		models.RetentionRecord
	}
	var records []recordRow
	if err := s.db.Select(&records, "SELECT * FROM retention_records"); err != nil {
		return nil, fmt.Errorf("failed to load retention records: %w", err)
	}
	for _, row := range records {
		state.Records[row.DrillKey] = row.RetentionRecord
	}

	if err := s.db.Select(&state.Answers,
		"SELECT date, drill_key, category, correct FROM answer_log ORDER BY date ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("failed to load answer log: %w", err)
	}

	if err := s.db.Select(&state.Sessions,
		"SELECT id, date, source, score, total FROM sessions ORDER BY date ASC"); err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	err := s.db.Get(&state.Stats, `
		SELECT total_correct, total_incorrect, current_streak, best_streak,
		       session_correct, session_incorrect, days_streak, last_practice_date
		FROM learner_stats WHERE id = 1
	`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load learner stats: %w", err)
	}

	type unlockRow struct {
		ID string `db:"id"`
		models.Unlock
	}
	var unlocks []unlockRow
	if err := s.db.Select(&unlocks, "SELECT * FROM achievements"); err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	for _, row := range unlocks {
		state.Unlocks[row.ID] = row.Unlock
	}

	return state, nil
}

// ApplyAnswer implements Store. The record upsert, the log append, the
// log prune and the stats update commit in one transaction.
func (s *SQLStore) ApplyAnswer(key string, rec models.RetentionRecord, ev models.AnswerEvent, stats models.LearnerStats) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO retention_records (
			drill_key, attempts_correct, attempts_total, ease_factor, interval_days, last_seen
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (drill_key) DO UPDATE SET
			attempts_correct = EXCLUDED.attempts_correct,
			attempts_total = EXCLUDED.attempts_total,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			last_seen = EXCLUDED.last_seen
	`, key, rec.AttemptsCorrect, rec.AttemptsTotal, rec.EaseFactor, rec.IntervalDays, rec.LastSeen)
	if err != nil {
		return fmt.Errorf("failed to upsert retention record: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO answer_log (date, drill_key, category, correct) VALUES ($1, $2, $3, $4)",
		ev.Date, ev.Key, ev.Category, ev.Correct,
	)
	if err != nil {
		return fmt.Errorf("failed to append answer event: %w", err)
	}

	_, err = tx.Exec(fmt.Sprintf(`
		DELETE FROM answer_log WHERE id NOT IN (
			SELECT id FROM answer_log ORDER BY date DESC, id DESC LIMIT %d
		)`, maxAnswerLog))
	if err != nil {
		return fmt.Errorf("failed to prune answer log: %w", err)
	}

	if err := saveStatsTx(tx, stats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer: %w", err)
	}
	return nil
}

// AppendSession implements Store.
func (s *SQLStore) AppendSession(sess models.Session) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO sessions (id, date, source, score, total) VALUES ($1, $2, $3, $4, $5)",
		sess.ID, sess.Date, sess.Source, sess.Score, sess.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	_, err = tx.Exec(fmt.Sprintf(`
		DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY date DESC LIMIT %d
		)`, maxSessions))
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// SaveStats implements Store.
func (s *SQLStore) SaveStats(stats models.LearnerStats) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveStatsTx(tx, stats); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats: %w", err)
	}
	return nil
}

func saveStatsTx(tx *sqlx.Tx, stats models.LearnerStats) error {
	_, err := tx.Exec(`
		INSERT INTO learner_stats (
			id, total_correct, total_incorrect, current_streak, best_streak,
			session_correct, session_incorrect, days_streak, last_practice_date
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			total_correct = EXCLUDED.total_correct,
			total_incorrect = EXCLUDED.total_incorrect,
			current_streak = EXCLUDED.current_streak,
			best_streak = EXCLUDED.best_streak,
			session_correct = EXCLUDED.session_correct,
			session_incorrect = EXCLUDED.session_incorrect,
			days_streak = EXCLUDED.days_streak,
			last_practice_date = EXCLUDED.last_practice_date
	`, stats.TotalCorrect, stats.TotalIncorrect, stats.CurrentStreak, stats.BestStreak,
		stats.SessionCorrect, stats.SessionIncorrect, stats.DaysStreak, stats.LastPracticeDate)
	if err != nil {
		return fmt.Errorf("failed to save learner stats: %w", err)
	}
	return nil
}

// PutUnlock implements Store.
func (s *SQLStore) PutUnlock(id string, u models.Unlock) error {
	_, err := s.db.Exec(`
		INSERT INTO achievements (id, unlocked_at, seen) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			unlocked_at = EXCLUDED.unlocked_at,
			seen = EXCLUDED.seen
	`, id, u.UnlockedAt, u.Seen)
	if err != nil {
		return fmt.Errorf("failed to upsert achievement: %w", err)
	}
	return nil
}

// Reset implements Store.
func (s *SQLStore) Reset() error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"retention_records", "answer_log", "sessions", "learner_stats", "achievements"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
