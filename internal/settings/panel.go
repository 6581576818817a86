package settings

import "github.com/starford/tscanvas/internal/timefmt"

// Field describes one input of the settings panel.
type Field struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Panel returns the settings panel bound to the current values.
func (s *Store) Panel() []Field {
	return []Field{{
		Key:         "dateFormat",
		Name:        "Date format",
		Description: "Default date format",
		Placeholder: timefmt.DefaultPattern,
		Value:       s.DateFormat(),
	}}
}

// Apply writes a panel edit back. Unknown keys are ignored; the pattern is not validated.
func (s *Store) Apply(key, value string) bool {
	switch key {
	case "dateFormat":
		s.SetDateFormat(value)
		return true
	default:
		return false
	}
}
