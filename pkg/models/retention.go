package models

import "time"

// RetentionRecord tracks repetition statistics for a single drill.
// A record exists only for drills that have been presented at least once;
// drills without a record are "new".
type RetentionRecord struct {
	AttemptsCorrect int        `json:"attempts_correct" db:"attempts_correct"`
	AttemptsTotal   int        `json:"attempts_total" db:"attempts_total"`
	EaseFactor      float64    `json:"ease_factor" db:"ease_factor"`     // SM-2 memory strength multiplier
	IntervalDays    int        `json:"interval_days" db:"interval_days"` // 0 means due now
	LastSeen        *time.Time `json:"last_seen" db:"last_seen"`         // nil before first review
}

// DueAt returns when the drill is next due for review.
// The zero time is returned for records that have never been seen.
func (r RetentionRecord) DueAt() time.Time {
	if r.LastSeen == nil {
		return time.Time{}
	}
	return r.LastSeen.AddDate(0, 0, r.IntervalDays)
}

// Due reports whether the drill is due for review at the given time.
// Never-seen records are always due.
func (r RetentionRecord) Due(now time.Time) bool {
	return !r.DueAt().After(now)
}

// Accuracy returns the fraction of correct answers, or 0 for an
// unattempted record.
func (r RetentionRecord) Accuracy() float64 {
	if r.AttemptsTotal == 0 {
		return 0
	}
	return float64(r.AttemptsCorrect) / float64(r.AttemptsTotal)
}
