// Package domain re-exports the persisted model types so migration and
// wiring code can name them from one place.
package domain

import (
	"github.com/yungbote/lingobridge-backend/internal/domain/auth"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	"github.com/yungbote/lingobridge-backend/internal/domain/chat"
	"github.com/yungbote/lingobridge-backend/internal/domain/feedback"
	"github.com/yungbote/lingobridge-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken
type Card = cards.Card
type ChatSession = chat.Session
type ChatMessage = chat.Message
type Feedback = feedback.Feedback
