package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// SM2 implements a simplified SuperMemo-2 update rule driven by a binary
// correct/incorrect signal instead of the full 0-5 quality scale.
type SM2 struct {
	// EaseFloor is the minimum ease factor a drill can reach.
	EaseFloor float64
	// EaseCap is the maximum ease factor a drill can reach.
	EaseCap float64
	// InitialEase is the ease factor assigned to a drill on first review.
	InitialEase float64
	// MaxIntervalDays caps the review interval.
	MaxIntervalDays int
	// NewDrillWeight is the selection weight given to never-seen drills,
	// so new material interleaves with review instead of dominating it.
	NewDrillWeight float64
}

// NewSM2 creates a new SM2 instance with default settings.
func NewSM2() *SM2 {
	return &SM2{
		EaseFloor:       1.3,
		EaseCap:         3.0,
		InitialEase:     2.5,
		MaxIntervalDays: 365,
		NewDrillWeight:  0.4, // 1 / InitialEase
	}
}

// NewRecord returns the retention record assigned to a drill on first
// presentation: initial ease, interval 0 (due now), never seen.
func (sm *SM2) NewRecord() models.RetentionRecord {
	return models.RetentionRecord{
		EaseFactor:   sm.InitialEase,
		IntervalDays: 0,
	}
}

// Apply updates a retention record in place for a recorded answer.
//
// A correct answer bumps the ease factor by 0.1 (capped) and scales the
// interval by it, so consecutive correct answers grow the interval
// geometrically. An incorrect answer drops the ease factor by 0.2
// (floored) and collapses the interval back to one day.
func (sm *SM2) Apply(rec *models.RetentionRecord, correct bool, now time.Time) {
	rec.AttemptsTotal++

	if correct {
		rec.AttemptsCorrect++
		rec.EaseFactor = math.Min(sm.EaseCap, rec.EaseFactor+0.1)

		// Interval 0 means the drill is due immediately; scale from a
		// one-day base.
		base := rec.IntervalDays
		if base == 0 {
			base = 1
		}
		next := int(math.Round(float64(base) * rec.EaseFactor))
		if next < 1 {
			next = 1
		}
		if next > sm.MaxIntervalDays {
			next = sm.MaxIntervalDays
		}
		rec.IntervalDays = next
	} else {
		rec.EaseFactor = math.Max(sm.EaseFloor, rec.EaseFactor-0.2)
		rec.IntervalDays = 1
	}

	seen := now
	rec.LastSeen = &seen
}

// Classify returns the difficulty bucket for a retention record.
// A nil or unattempted record is New. Otherwise accuracy decides:
// above 80% easy, 50-80% medium, below 50% hard.
func Classify(rec *models.RetentionRecord) models.Difficulty {
	if rec == nil || rec.AttemptsTotal == 0 {
		return models.New
	}
	switch acc := rec.Accuracy(); {
	case acc > 0.8:
		return models.Easy
	case acc >= 0.5:
		return models.Medium
	default:
		return models.Hard
	}
}
