package models

// Drill is a single question/answer learning item within a category.
// Drills are immutable once loaded and carry no learning state of their own.
type Drill struct {
	Category string `json:"category" db:"category"`
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer" db:"answer"`
}

// Key returns the stable identity of the drill used by the retention ledger.
func (d Drill) Key() string {
	return d.Category + "::" + d.Question
}
