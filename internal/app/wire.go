package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/handlers"
	"github.com/yungbote/lingobridge-backend/internal/middleware"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/openai"
	"github.com/yungbote/lingobridge-backend/internal/platform/redis"
	"github.com/yungbote/lingobridge-backend/internal/platform/twilio"
	"github.com/yungbote/lingobridge-backend/internal/prompts"
	"github.com/yungbote/lingobridge-backend/internal/server"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type Clients struct {
	LLM       openai.Client
	Twilio    twilio.Client
	LinkCodes redis.LinkCodeStore
	Prompts   *prompts.Set
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	codes, err := redis.NewLinkCodeStore(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init link code store: %w", err)
	}

	llm, err := openai.NewFromEnv(log)
	if err != nil {
		_ = codes.Close()
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}

	tw, err := twilio.NewFromEnv(log)
	if err != nil {
		_ = codes.Close()
		return Clients{}, fmt.Errorf("init twilio client: %w", err)
	}

	promptSet, err := prompts.Load(log)
	if err != nil {
		_ = codes.Close()
		return Clients{}, fmt.Errorf("load prompts: %w", err)
	}

	return Clients{
		LLM:       llm,
		Twilio:    tw,
		LinkCodes: codes,
		Prompts:   promptSet,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.LinkCodes != nil {
		_ = c.LinkCodes.Close()
	}
}

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	Card      repos.CardRepo
	Session   repos.SessionRepo
	Feedback  repos.FeedbackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Card:      repos.NewCardRepo(db, log),
		Session:   repos.NewSessionRepo(db, log),
		Feedback:  repos.NewFeedbackRepo(db, log),
	}
}

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Card       services.CardService
	Review     services.ReviewService
	Composer   services.ComposerService
	Chat       services.ChatService
	Whatsapp   services.WhatsappService
	AnkiImport services.AnkiImportService
	Feedback   services.FeedbackService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	user := services.NewUserService(log, r.User)
	card := services.NewCardService(log, r.Card, cfg.SRS)
	review := services.NewReviewService(log, r.Card, cfg.SRS)
	composer := services.NewComposerService(log, c.LLM, c.Prompts)
	chat := services.NewChatService(log, c.LLM, c.Prompts, r.Card, r.Session)
	whatsapp := services.NewWhatsappService(log, r.User, card, composer, chat, c.LinkCodes)
	ankiImport := services.NewAnkiImportService(log, r.Card, cfg.SRS)
	feedback := services.NewFeedbackService(log, r.Feedback)

	return Services{
		Auth:       auth,
		User:       user,
		Card:       card,
		Review:     review,
		Composer:   composer,
		Chat:       chat,
		Whatsapp:   whatsapp,
		AnkiImport: ankiImport,
		Feedback:   feedback,
	}
}

type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Card     *handlers.CardHandler
	Chat     *handlers.ChatHandler
	Whatsapp *handlers.WhatsappHandler
	Import   *handlers.ImportHandler
	Feedback *handlers.FeedbackHandler
}

func wireHandlers(log *logger.Logger, s Services, c Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   handlers.NewHealthHandler(),
		Auth:     handlers.NewAuthHandler(s.Auth),
		User:     handlers.NewUserHandler(s.User, s.Whatsapp),
		Card:     handlers.NewCardHandler(s.Card, s.Review, s.Composer),
		Chat:     handlers.NewChatHandler(s.Chat),
		Whatsapp: handlers.NewWhatsappHandler(log, s.Whatsapp, c.Twilio),
		Import:   handlers.NewImportHandler(log, s.AnkiImport),
		Feedback: handlers.NewFeedbackHandler(s.Feedback),
	}
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, s.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	log.Info("Wiring router...")
	return server.NewRouter(server.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		AuthMiddleware:  mw.Auth,
		HealthHandler:   h.Health,
		AuthHandler:     h.Auth,
		UserHandler:     h.User,
		CardHandler:     h.Card,
		ChatHandler:     h.Chat,
		WhatsappHandler: h.Whatsapp,
		ImportHandler:   h.Import,
		FeedbackHandler: h.Feedback,
	})
}
