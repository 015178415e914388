// Package repos re-exports the per-area repository interfaces and
// constructors so wiring code imports one package instead of six.
package repos

import (
	authrepo "github.com/yungbote/lingobridge-backend/internal/data/repos/auth"
	cardrepo "github.com/yungbote/lingobridge-backend/internal/data/repos/cards"
	chatrepo "github.com/yungbote/lingobridge-backend/internal/data/repos/chat"
	feedbackrepo "github.com/yungbote/lingobridge-backend/internal/data/repos/feedback"
	userrepo "github.com/yungbote/lingobridge-backend/internal/data/repos/user"
)

type (
	UserRepo      = userrepo.UserRepo
	UserTokenRepo = authrepo.UserTokenRepo
	CardRepo      = cardrepo.CardRepo
	CardList      = cardrepo.ListFilter
	SessionRepo   = chatrepo.SessionRepo
	FeedbackRepo  = feedbackrepo.FeedbackRepo
)

var (
	NewUserRepo      = userrepo.New
	NewUserTokenRepo = authrepo.New
	NewCardRepo      = cardrepo.New
	NewSessionRepo   = chatrepo.New
	NewFeedbackRepo  = feedbackrepo.New
)
