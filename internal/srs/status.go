package srs

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the scheduling phase of a card.
//
// Lapsed exists only as a legacy storage value: older rows may carry
// "lapsed", and the scheduler treats it exactly like Learning. Newly
// computed states never use it.
type Status int

const (
	StatusNew      Status = iota + 1 // created, never reviewed
	StatusLearning                   // inside the minute-scale learning steps
	StatusReview                     // graduated to day-scale intervals
	StatusLapsed                     // legacy alias of Learning after a failed review
)

var (
	statusNames  = [...]string{StatusNew: "new", StatusLearning: "learning", StatusReview: "review", StatusLapsed: "lapsed"}
	statusByName = map[string]Status{
		"new":      StatusNew,
		"learning": StatusLearning,
		"review":   StatusReview,
		"lapsed":   StatusLapsed,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Status(0)
	_ json.Marshaler           = Status(0)
	_ json.Unmarshaler         = (*Status)(nil)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
	_ driver.Valuer            = Status(0)
	_ sql.Scanner              = (*Status)(nil)
)

// ParseStatus converts a storage/wire string to a Status.
func ParseStatus(s string) (Status, error) {
	v, ok := statusByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return v, nil
}

// String returns the storage name of the status. For invalid values it
// returns "Status(n)".
func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsValid reports whether s is a known status, including the legacy Lapsed.
func (s Status) IsValid() bool {
	return s >= StatusNew && s <= StatusLapsed
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. Status serializes as a JSON string.
func (s Status) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, data)
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer; statuses persist as their string names.
func (s Status) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return statusNames[s], nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidStatus, src)
	}
}
