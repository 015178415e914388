package srs

import (
	"fmt"
	"time"
)

// Config is the immutable set of scheduling tunables. It is built once at
// startup and passed explicitly into every engine call; the engine never
// reads ambient state.
type Config struct {
	// LearningSteps are the minute-scale delays a card walks through before
	// graduating, indexed by CardState.LearningStep. Must be non-empty.
	LearningSteps []time.Duration
	// EasyIntervalDays is the review interval granted when a learning-phase
	// card is graded easy (immediate graduation).
	EasyIntervalDays float64
	// MinEaseFactor is the floor below which ease never drops.
	MinEaseFactor float64
	// LapseIntervalMultiplier scales the prior interval when a review-phase
	// card is failed. Zero discards the interval entirely.
	LapseIntervalMultiplier float64
	// IntervalModifier scales every review-phase interval growth.
	IntervalModifier float64
	// EasyBonus is the extra multiplier applied on top of ease for a
	// review-phase easy.
	EasyBonus float64
	// DefaultEaseFactor is the ease assigned to newly created cards.
	DefaultEaseFactor float64
}

// DefaultConfig returns the scheduling constants the system ships with.
func DefaultConfig() Config {
	return Config{
		LearningSteps:           []time.Duration{1 * time.Minute, 10 * time.Minute},
		EasyIntervalDays:        4.0,
		MinEaseFactor:           1.3,
		LapseIntervalMultiplier: 0.0,
		IntervalModifier:        1.0,
		EasyBonus:               1.3,
		DefaultEaseFactor:       2.5,
	}
}

// Validate rejects configurations the scheduler cannot be total over. It is
// meant to run once at startup; Schedule assumes a validated Config.
func (c Config) Validate() error {
	if len(c.LearningSteps) == 0 {
		return fmt.Errorf("%w: learning steps must be non-empty", ErrInvalidConfig)
	}
	for i, step := range c.LearningSteps {
		if step <= 0 {
			return fmt.Errorf("%w: learning step %d is not positive", ErrInvalidConfig, i)
		}
	}
	if c.MinEaseFactor <= 0 {
		return fmt.Errorf("%w: min ease factor must be positive", ErrInvalidConfig)
	}
	if c.DefaultEaseFactor < c.MinEaseFactor {
		return fmt.Errorf("%w: default ease factor below min ease factor", ErrInvalidConfig)
	}
	if c.EasyIntervalDays <= 0 {
		return fmt.Errorf("%w: easy interval days must be positive", ErrInvalidConfig)
	}
	if c.LapseIntervalMultiplier < 0 {
		return fmt.Errorf("%w: lapse interval multiplier must not be negative", ErrInvalidConfig)
	}
	if c.IntervalModifier <= 0 {
		return fmt.Errorf("%w: interval modifier must be positive", ErrInvalidConfig)
	}
	if c.EasyBonus <= 0 {
		return fmt.Errorf("%w: easy bonus must be positive", ErrInvalidConfig)
	}
	return nil
}
