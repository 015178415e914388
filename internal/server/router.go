package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/lingobridge-backend/internal/handlers"
	"github.com/yungbote/lingobridge-backend/internal/middleware"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string

	AuthMiddleware *middleware.AuthMiddleware

	HealthHandler   *handlers.HealthHandler
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	CardHandler     *handlers.CardHandler
	ChatHandler     *handlers.ChatHandler
	WhatsappHandler *handlers.WhatsappHandler
	ImportHandler   *handlers.ImportHandler
	FeedbackHandler *handlers.FeedbackHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "lingobridge-backend"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Public
	if cfg.AuthHandler != nil {
		r.POST("/register", cfg.AuthHandler.Register)
		r.POST("/login", cfg.AuthHandler.Login)
	}
	if cfg.WhatsappHandler != nil {
		// Authenticated by the Twilio signature, not a bearer token.
		r.POST("/twilio/whatsapp", cfg.WhatsappHandler.Webhook)
	}

	protected := r.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.POST("/users/me/whatsapp-link-code", cfg.UserHandler.CreateWhatsappLinkCode)
		}

		if cfg.CardHandler != nil {
			protected.POST("/cards", cfg.CardHandler.Create)
			protected.GET("/cards", cfg.CardHandler.List)
			protected.GET("/cards/due", cfg.CardHandler.Due)
			protected.POST("/cards/:card_id/grade", cfg.CardHandler.Grade)
			protected.PATCH("/cards/:card_id", cfg.CardHandler.Update)
			protected.DELETE("/cards/:card_id", cfg.CardHandler.Delete)

			protected.POST("/cards/propose_sentence", cfg.CardHandler.ProposeSentence)
			protected.POST("/cards/validate_translate_sentence", cfg.CardHandler.ValidateSentence)
			protected.POST("/cards/save_final_card", cfg.CardHandler.SaveFinalCard)
		}

		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Converse)
			protected.POST("/explain", cfg.ChatHandler.Explain)
		}

		if cfg.ImportHandler != nil {
			protected.POST("/import/anki", cfg.ImportHandler.ImportAnki)
		}

		if cfg.FeedbackHandler != nil {
			protected.POST("/feedback", cfg.FeedbackHandler.Submit)
			protected.GET("/feedback", cfg.FeedbackHandler.List)
		}
	}

	return r
}
