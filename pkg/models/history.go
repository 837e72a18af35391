package models

import "time"

// AnswerEvent is one entry in the answer log, used for progress charting.
type AnswerEvent struct {
	Date     time.Time `json:"date" db:"date"`
	Key      string    `json:"key" db:"drill_key"`
	Category string    `json:"category" db:"category"`
	Correct  bool      `json:"correct" db:"correct"`
}

// Session summarizes one completed practice session.
type Session struct {
	ID     string    `json:"id" db:"id"`
	Date   time.Time `json:"date" db:"date"`
	Source string    `json:"source" db:"source"` // file or collection the drills came from
	Score  int       `json:"score" db:"score"`
	Total  int       `json:"total" db:"total"`
}

// LearnerStats holds global counters used for streaks and achievements.
type LearnerStats struct {
	TotalCorrect     int    `json:"total_correct" db:"total_correct"`
	TotalIncorrect   int    `json:"total_incorrect" db:"total_incorrect"`
	CurrentStreak    int    `json:"current_streak" db:"current_streak"`
	BestStreak       int    `json:"best_streak" db:"best_streak"`
	SessionCorrect   int    `json:"session_correct" db:"session_correct"`
	SessionIncorrect int    `json:"session_incorrect" db:"session_incorrect"`
	DaysStreak       int    `json:"days_streak" db:"days_streak"`
	LastPracticeDate string `json:"last_practice_date" db:"last_practice_date"` // YYYY-MM-DD, empty if never practiced
}

// Unlock records when an achievement was earned.
type Unlock struct {
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
	Seen       bool      `json:"seen" db:"seen"`
}
