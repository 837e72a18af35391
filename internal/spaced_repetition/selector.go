package spaced_repetition

import (
	"errors"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// ErrNoCandidates is returned when drill selection is attempted over an
// empty candidate set. The caller must supply a non-empty drill store.
var ErrNoCandidates = errors.New("spaced_repetition: no candidate drills")

// Selector chooses the next drill to present using weighted random
// sampling over the candidate set.
type Selector struct {
	sm2    *SM2
	picker *Picker
}

// NewSelector creates a selector using the given SM2 settings, seeded
// from the current time.
func NewSelector(sm2 *SM2) *Selector {
	return NewSeededSelector(sm2, time.Now().UnixNano())
}

// NewSeededSelector creates a selector with a fixed seed, for
// reproducible draws in tests.
func NewSeededSelector(sm2 *SM2, seed int64) *Selector {
	return &Selector{sm2: sm2, picker: NewPicker(seed)}
}

// SelectDrill picks the next drill to present.
//
// Never-seen and due drills are eligible; a seen drill's weight is
// 1/ease_factor (harder drills get picked more often) and a never-seen
// drill gets the fixed NewDrillWeight. When nothing is due and nothing is
// new, the draw falls back to the full not-due set weighted the same way,
// so a session never stalls on an empty queue.
func (s *Selector) SelectDrill(drills []models.Drill, records map[string]models.RetentionRecord, now time.Time) (models.Drill, error) {
	if len(drills) == 0 {
		return models.Drill{}, ErrNoCandidates
	}

	eligible := make([]int, 0, len(drills))
	for i, d := range drills {
		rec, ok := records[d.Key()]
		if !ok || rec.Due(now) {
			eligible = append(eligible, i)
		}
	}

	// Nothing new or due: review ahead of schedule rather than stall.
	if len(eligible) == 0 {
		for i := range drills {
			eligible = append(eligible, i)
		}
	}

	weights := make([]float64, len(eligible))
	for i, idx := range eligible {
		weights[i] = s.weight(records, drills[idx])
	}

	picked := s.picker.Pick(weights)
	return drills[eligible[picked]], nil
}

// weight returns the selection weight for a single drill.
func (s *Selector) weight(records map[string]models.RetentionRecord, d models.Drill) float64 {
	rec, ok := records[d.Key()]
	if !ok {
		return s.sm2.NewDrillWeight
	}
	if rec.EaseFactor <= 0 {
		// A record with no valid ease cannot produce a finite weight.
		return s.sm2.NewDrillWeight
	}
	return 1 / rec.EaseFactor
}
