package srs

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Grade is the learner's answer quality for one review. The set is closed:
// the reference request shape also names a "hard" grade, but no transition is
// defined for it, so it is rejected at parse time rather than given invented
// semantics.
type Grade int

const (
	Again Grade = iota + 1 // failed to recall
	Good                   // recalled
	Easy                   // recalled effortlessly
)

var (
	gradeNames  = [...]string{Again: "again", Good: "good", Easy: "easy"}
	gradeByName = map[string]Grade{
		"again": Again,
		"good":  Good,
		"easy":  Easy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Grade(0)
	_ json.Marshaler           = Grade(0)
	_ json.Unmarshaler         = (*Grade)(nil)
	_ encoding.TextMarshaler   = Grade(0)
	_ encoding.TextUnmarshaler = (*Grade)(nil)
)

// ParseGrade converts a wire string ("again", "good", "easy") to a Grade.
func ParseGrade(s string) (Grade, error) {
	g, ok := gradeByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// String returns the wire name of the grade. For invalid values it returns
// "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// IsValid reports whether g is one of Again, Good, Easy.
func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MarshalJSON implements json.Marshaler. Grade serializes as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	text, err := g.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidGrade, data)
	}
	return g.UnmarshalText([]byte(s))
}
