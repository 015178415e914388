package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/requestdata"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// POST /chat
// body: { "message": "...", "session_id": "..."? }
func (ch *ChatHandler) Converse(c *gin.Context) {
	var req struct {
		Message   string  `json:"message"`
		SessionID *string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != nil && *req.SessionID != "" {
		parsed, err := uuid.Parse(*req.SessionID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
			return
		}
		sessionID = &parsed
	}

	userID := requestdata.UserID(c.Request.Context())
	reply, sid, err := ch.chatService.Converse(c.Request.Context(), userID, sessionID, req.Message)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"reply":      reply,
		"session_id": sid,
	})
}

// POST /explain
// body: { "topic": "...", "context": "..."? }
func (ch *ChatHandler) Explain(c *gin.Context) {
	var req struct {
		Topic   string `json:"topic"`
		Context string `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	explanation, err := ch.chatService.Explain(c.Request.Context(), userID, req.Topic, req.Context)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, explanation)
}
