package models

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Difficulty classifies how well a drill is retained, derived from its
// retention record's accuracy.
type Difficulty int

const (
	New    Difficulty = iota // Never attempted.
	Easy                     // Accuracy above 80%.
	Medium                   // Accuracy between 50% and 80%.
	Hard                     // Accuracy below 50%.
)

var (
	difficultyNames  = [...]string{New: "new", Easy: "easy", Medium: "medium", Hard: "hard"}
	difficultyByName = map[string]Difficulty{
		"new":    New,
		"easy":   Easy,
		"medium": Medium,
		"hard":   Hard,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Difficulty(0)
	_ json.Marshaler           = Difficulty(0)
	_ json.Unmarshaler         = (*Difficulty)(nil)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	return d >= New && d <= Hard
}

// String returns the lowercase name of the difficulty ("new", "easy",
// "medium", "hard"). For invalid values it returns "Difficulty(n)".
func (d Difficulty) String() string {
	if d.IsValid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("models: invalid difficulty: %d", int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, ok := difficultyByName[string(text)]
	if !ok {
		return fmt.Errorf("models: invalid difficulty: %q", text)
	}
	*d = v
	return nil
}

// MarshalJSON implements json.Marshaler. Difficulty serializes as a JSON string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("models: invalid difficulty: %s", data)
	}
	return d.UnmarshalText([]byte(s))
}
