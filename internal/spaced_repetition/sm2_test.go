package spaced_repetition

import (
	"math"
	"testing"
	"time"

	"github.com/example/drillbot/pkg/models"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	sm2 := NewSM2()
	rec := sm2.NewRecord()

	if rec.EaseFactor != sm2.InitialEase {
		t.Errorf("EaseFactor = %v, want %v", rec.EaseFactor, sm2.InitialEase)
	}
	if rec.IntervalDays != 0 {
		t.Errorf("IntervalDays = %d, want 0", rec.IntervalDays)
	}
	if rec.LastSeen != nil {
		t.Errorf("LastSeen = %v, want nil", rec.LastSeen)
	}
	if !rec.Due(t0) {
		t.Error("new record should be due immediately")
	}
}

func TestApplyIncorrectThenCorrect(t *testing.T) {
	sm2 := NewSM2()
	rec := sm2.NewRecord()

	sm2.Apply(&rec, false, t0)

	if rec.AttemptsCorrect != 0 || rec.AttemptsTotal != 1 {
		t.Errorf("after incorrect: attempts = %d/%d, want 0/1", rec.AttemptsCorrect, rec.AttemptsTotal)
	}
	if math.Abs(rec.EaseFactor-2.3) > 1e-9 {
		t.Errorf("after incorrect: EaseFactor = %v, want 2.3", rec.EaseFactor)
	}
	if rec.IntervalDays != 1 {
		t.Errorf("after incorrect: IntervalDays = %d, want 1", rec.IntervalDays)
	}
	if rec.LastSeen == nil || !rec.LastSeen.Equal(t0) {
		t.Errorf("after incorrect: LastSeen = %v, want %v", rec.LastSeen, t0)
	}

	t1 := t0.AddDate(0, 0, 1)
	sm2.Apply(&rec, true, t1)

	if rec.AttemptsCorrect != 1 || rec.AttemptsTotal != 2 {
		t.Errorf("after correct: attempts = %d/%d, want 1/2", rec.AttemptsCorrect, rec.AttemptsTotal)
	}
	if math.Abs(rec.EaseFactor-2.4) > 1e-9 {
		t.Errorf("after correct: EaseFactor = %v, want 2.4", rec.EaseFactor)
	}
	// round(1 * 2.4) = 2
	if rec.IntervalDays != 2 {
		t.Errorf("after correct: IntervalDays = %d, want 2", rec.IntervalDays)
	}
	if got := rec.DueAt(); !got.Equal(t1.AddDate(0, 0, 2)) {
		t.Errorf("DueAt = %v, want %v", got, t1.AddDate(0, 0, 2))
	}
}

func TestApplyCorrectFromNew(t *testing.T) {
	sm2 := NewSM2()
	rec := sm2.NewRecord()

	sm2.Apply(&rec, true, t0)

	if math.Abs(rec.EaseFactor-2.6) > 1e-9 {
		t.Errorf("EaseFactor = %v, want 2.6", rec.EaseFactor)
	}
	// Interval 0 scales from a one-day base: round(1 * 2.6) = 3.
	if rec.IntervalDays != 3 {
		t.Errorf("IntervalDays = %d, want 3", rec.IntervalDays)
	}
}

func TestApplyEaseBounds(t *testing.T) {
	sm2 := NewSM2()

	rec := sm2.NewRecord()
	for i := 0; i < 20; i++ {
		sm2.Apply(&rec, false, t0)
	}
	if rec.EaseFactor < sm2.EaseFloor {
		t.Errorf("EaseFactor = %v fell below floor %v", rec.EaseFactor, sm2.EaseFloor)
	}
	if math.Abs(rec.EaseFactor-sm2.EaseFloor) > 1e-9 {
		t.Errorf("EaseFactor = %v, want the floor %v after repeated failures", rec.EaseFactor, sm2.EaseFloor)
	}

	rec = sm2.NewRecord()
	for i := 0; i < 20; i++ {
		sm2.Apply(&rec, true, t0)
	}
	if rec.EaseFactor > sm2.EaseCap {
		t.Errorf("EaseFactor = %v exceeded cap %v", rec.EaseFactor, sm2.EaseCap)
	}
}

func TestApplyIntervalBounds(t *testing.T) {
	sm2 := NewSM2()
	rec := sm2.NewRecord()

	for i := 0; i < 50; i++ {
		sm2.Apply(&rec, true, t0)
		if rec.IntervalDays < 1 {
			t.Fatalf("IntervalDays = %d, want >= 1", rec.IntervalDays)
		}
		if rec.IntervalDays > sm2.MaxIntervalDays {
			t.Fatalf("IntervalDays = %d exceeded cap %d", rec.IntervalDays, sm2.MaxIntervalDays)
		}
	}
	if rec.IntervalDays != sm2.MaxIntervalDays {
		t.Errorf("IntervalDays = %d, want the cap %d after sustained success", rec.IntervalDays, sm2.MaxIntervalDays)
	}

	sm2.Apply(&rec, false, t0)
	if rec.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d after failure, want 1", rec.IntervalDays)
	}
}

func TestApplyIncorrectResetsInterval(t *testing.T) {
	sm2 := NewSM2()
	rec := sm2.NewRecord()

	sm2.Apply(&rec, true, t0)
	sm2.Apply(&rec, true, t0)
	if rec.IntervalDays <= 1 {
		t.Fatalf("setup: IntervalDays = %d, want > 1", rec.IntervalDays)
	}

	sm2.Apply(&rec, false, t0)
	if rec.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", rec.IntervalDays)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		rec     *models.RetentionRecord
		want    models.Difficulty
	}{
		{"nil record", nil, models.New},
		{"unattempted", &models.RetentionRecord{EaseFactor: 2.5}, models.New},
		{"perfect", &models.RetentionRecord{AttemptsCorrect: 5, AttemptsTotal: 5}, models.Easy},
		{"above 80%", &models.RetentionRecord{AttemptsCorrect: 9, AttemptsTotal: 10}, models.Easy},
		{"exactly 80%", &models.RetentionRecord{AttemptsCorrect: 4, AttemptsTotal: 5}, models.Medium},
		{"exactly 50%", &models.RetentionRecord{AttemptsCorrect: 1, AttemptsTotal: 2}, models.Medium},
		{"below 50%", &models.RetentionRecord{AttemptsCorrect: 2, AttemptsTotal: 5}, models.Hard},
		{"all wrong", &models.RetentionRecord{AttemptsCorrect: 0, AttemptsTotal: 3}, models.Hard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.rec); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
