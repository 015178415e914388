package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/domain/user"
)

// Message is one turn of a tutor conversation, in the shape LLM chat APIs
// expect.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is a persisted tutor conversation. The transcript lives in one JSON
// column: sessions are small (they are trimmed to a recent window before each
// model call) and are always loaded whole.
type Session struct {
	ID       uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User     *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Messages datatypes.JSON `gorm:"column:messages" json:"messages"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string { return "chat_session" }

// Transcript decodes the stored message list. A nil column is an empty
// transcript.
func (s *Session) Transcript() ([]Message, error) {
	if len(s.Messages) == 0 {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal(s.Messages, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SetTranscript encodes the message list back into the stored column.
func (s *Session) SetTranscript(msgs []Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	s.Messages = datatypes.JSON(raw)
	return nil
}
