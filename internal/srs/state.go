package srs

import "time"

// CardState is the minimal per-card record the scheduler operates on. It is
// a value: Schedule never mutates its input, it returns a successor. Creation
// and deletion belong to the persistence layer.
type CardState struct {
	Status       Status  `json:"status"`
	LearningStep int     `json:"learning_step"`
	IntervalDays float64 `json:"interval_days"`
	EaseFactor   float64 `json:"ease_factor"`
	// Due is the absolute instant the card next becomes reviewable, in epoch
	// seconds.
	Due int64 `json:"due_timestamp"`
}

// NewCardState is the initial state for freshly created content: due
// immediately, no interval yet, ease at the configured default.
func NewCardState(cfg Config, now time.Time) CardState {
	return CardState{
		Status:       StatusNew,
		LearningStep: 0,
		IntervalDays: 0.0,
		EaseFactor:   cfg.DefaultEaseFactor,
		Due:          now.Unix(),
	}
}

// IsDue reports whether the card is reviewable at the given instant.
func (s CardState) IsDue(now time.Time) bool {
	return s.Due <= now.Unix()
}
