// Package srs implements the deterministic spaced-repetition scheduler: the
// state machine and interval arithmetic that turn (current card state, grade,
// now) into the next card state. It is pure (no clock, no I/O, no globals),
// so callers own the read-compute-write cycle around it.
package srs

import (
	"fmt"
	"time"
)

// Engine-fixed constants. Unlike Config these are not tunables: they are part
// of the algorithm itself.
const (
	// graduatingIntervalDays is the first review interval granted when a card
	// finishes its learning steps with a good.
	graduatingIntervalDays = 1.0
	// lapseEasePenalty is subtracted from ease when a review-phase card is
	// failed. A learning-phase again carries no penalty.
	lapseEasePenalty = 0.20
	// easyEaseGain is added to ease on a review-phase easy.
	easyEaseGain = 0.15
	// minIntervalDays is the unconditional floor applied to stored intervals.
	minIntervalDays = 0.01

	secondsPerDay = 86400
)

// Schedule applies one graded review and returns the complete successor
// state. It is total over valid (Status, Grade) pairs; both switches below
// are exhaustive on purpose, so an invalid enum value (which the API boundary
// must reject before ever calling the engine) panics instead of silently
// scheduling.
//
// now is caller-supplied and cfg must have passed Validate.
func Schedule(state CardState, grade Grade, now time.Time, cfg Config) CardState {
	next := state

	switch state.Status {
	case StatusNew, StatusLearning, StatusLapsed:
		next = scheduleLearning(state, grade, now, cfg)
	case StatusReview:
		next = scheduleReview(state, grade, now, cfg)
	default:
		panic(fmt.Sprintf("srs: Schedule called with invalid status %d", int(state.Status)))
	}

	// Unconditional floors: stored interval is strictly positive and ease
	// never drops below the configured minimum, whatever path produced them.
	if next.IntervalDays < minIntervalDays {
		next.IntervalDays = minIntervalDays
	}
	if next.EaseFactor < cfg.MinEaseFactor {
		next.EaseFactor = cfg.MinEaseFactor
	}
	return next
}

// scheduleLearning handles cards inside the learning steps. New and the
// legacy Lapsed value behave identically to Learning here.
func scheduleLearning(state CardState, grade Grade, now time.Time, cfg Config) CardState {
	next := state

	switch grade {
	case Again:
		next.Status = StatusLearning
		next.LearningStep = 0
		next.Due = dueAfterStep(now, cfg.LearningSteps[0])
	case Good:
		step := state.LearningStep + 1
		if step >= len(cfg.LearningSteps) {
			// Graduation: day-scale intervals from here on.
			next.Status = StatusReview
			next.LearningStep = 0
			next.IntervalDays = graduatingIntervalDays
			next.Due = dueAfterDays(now, next.IntervalDays)
		} else {
			next.Status = StatusLearning
			next.LearningStep = step
			next.Due = dueAfterStep(now, cfg.LearningSteps[step])
		}
	case Easy:
		// Immediate graduation regardless of remaining steps.
		next.Status = StatusReview
		next.LearningStep = 0
		next.IntervalDays = cfg.EasyIntervalDays
		next.Due = dueAfterDays(now, next.IntervalDays)
	default:
		panic(fmt.Sprintf("srs: Schedule called with invalid grade %d", int(grade)))
	}
	return next
}

// scheduleReview handles graduated cards: multiplicative interval growth on
// success, lapse back into the learning steps on failure.
func scheduleReview(state CardState, grade Grade, now time.Time, cfg Config) CardState {
	next := state

	switch grade {
	case Again:
		// Lapse: back to step zero with an ease penalty. The prior interval
		// is scaled by the lapse multiplier (zero discards it).
		next.Status = StatusLearning
		next.LearningStep = 0
		next.EaseFactor = state.EaseFactor - lapseEasePenalty
		next.IntervalDays = state.IntervalDays * cfg.LapseIntervalMultiplier
		next.Due = dueAfterStep(now, cfg.LearningSteps[0])
	case Good:
		next.IntervalDays = state.IntervalDays * state.EaseFactor * cfg.IntervalModifier
		next.Due = dueAfterDays(now, next.IntervalDays)
	case Easy:
		next.IntervalDays = state.IntervalDays * state.EaseFactor * cfg.IntervalModifier * cfg.EasyBonus
		next.EaseFactor = state.EaseFactor + easyEaseGain
		next.Due = dueAfterDays(now, next.IntervalDays)
	default:
		panic(fmt.Sprintf("srs: Schedule called with invalid grade %d", int(grade)))
	}
	return next
}

func dueAfterStep(now time.Time, step time.Duration) int64 {
	return now.Unix() + int64(step/time.Second)
}

// dueAfterDays truncates toward zero, matching the reference system's
// integer timestamp arithmetic.
func dueAfterDays(now time.Time, days float64) int64 {
	return now.Unix() + int64(days*secondsPerDay)
}
