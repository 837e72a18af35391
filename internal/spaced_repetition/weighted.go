package spaced_repetition

import "math/rand"

// Picker performs weighted random draws over a slice of weights using a
// cumulative-weight array and a single uniform sample. It is independent
// of drill or ledger types so selection logic can be tested on its own.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a Picker seeded from the given source.
func NewPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns an index drawn with probability proportional to its weight.
// Non-positive and NaN weights contribute nothing. If the total weight is
// zero the draw falls back to a uniform choice. Returns -1 for an empty
// slice.
func (p *Picker) Pick(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w > 0 && w == w { // skip negatives and NaN
			total += w
		}
		cumulative[i] = total
	}

	if total <= 0 {
		return p.rng.Intn(len(weights))
	}

	r := p.rng.Float64() * total
	for i, c := range cumulative {
		if r < c {
			return i
		}
	}
	return len(weights) - 1
}
