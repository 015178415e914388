package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/requestdata"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// POST /feedback
// body: { "content": "..." }
func (fh *FeedbackHandler) Submit(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	row, err := fh.feedbackService.Submit(c.Request.Context(), userID, req.Content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"feedback": row})
}

// GET /feedback?limit=
func (fh *FeedbackHandler) List(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	rows, err := fh.feedbackService.List(c.Request.Context(), userID, intQuery(c, "limit", 0))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": rows})
}
