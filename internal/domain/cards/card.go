package cards

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/domain/user"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

// Card is one schedulable flashcard: Spanish front, English back, plus the
// scheduling columns the srs engine operates on. Scheduling fields are only
// ever written through ApplyScheduling so the row and the engine's view of
// it cannot drift.
type Card struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"index;not null" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Front string `gorm:"not null;column:front" json:"front"`
	Back  string `gorm:"not null;column:back" json:"back"`
	// Tags is a space-separated tag list, the same shape Anki stores.
	Tags string `gorm:"column:tags" json:"tags"`
	// Source records which flow created the card.
	Source string `gorm:"not null;default:'manual';column:source" json:"source"`

	Status       srs.Status `gorm:"type:text;not null;default:'new';column:status" json:"status"`
	LearningStep int        `gorm:"not null;default:0;column:learning_step" json:"learning_step"`
	IntervalDays float64    `gorm:"not null;default:0;column:interval_days" json:"interval_days"`
	EaseFactor   float64    `gorm:"not null;default:2.5;column:ease_factor" json:"ease_factor"`
	DueTimestamp int64      `gorm:"not null;default:0;column:due_timestamp" json:"due_timestamp"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Card) TableName() string { return "card" }

const (
	SourceManual     = "manual"
	SourceChat       = "chat"
	SourceWhatsapp   = "whatsapp"
	SourceAnkiImport = "anki_import"
)

// Scheduling extracts the engine's view of the card.
func (c *Card) Scheduling() srs.CardState {
	return srs.CardState{
		Status:       c.Status,
		LearningStep: c.LearningStep,
		IntervalDays: c.IntervalDays,
		EaseFactor:   c.EaseFactor,
		Due:          c.DueTimestamp,
	}
}

// ApplyScheduling writes an engine-computed state back onto the row.
func (c *Card) ApplyScheduling(state srs.CardState) {
	c.Status = state.Status
	c.LearningStep = state.LearningStep
	c.IntervalDays = state.IntervalDays
	c.EaseFactor = state.EaseFactor
	c.DueTimestamp = state.Due
}

// New builds a card in the initial scheduling state: due immediately, ease at
// the configured default.
func New(userID uuid.UUID, front, back, tags, source string, cfg srs.Config, now time.Time) *Card {
	if source == "" {
		source = SourceManual
	}
	c := &Card{
		UserID: userID,
		Front:  front,
		Back:   back,
		Tags:   tags,
		Source: source,
	}
	c.ApplyScheduling(srs.NewCardState(cfg, now))
	return c
}
