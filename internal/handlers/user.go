package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/requestdata"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type UserHandler struct {
	userService     services.UserService
	whatsappService services.WhatsappService
}

func NewUserHandler(userService services.UserService, whatsappService services.WhatsappService) *UserHandler {
	return &UserHandler{userService: userService, whatsappService: whatsappService}
}

// GET /users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"me": me})
}

// POST /users/me/whatsapp-link-code
func (uh *UserHandler) CreateWhatsappLinkCode(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	code, err := uh.whatsappService.GenerateLinkCode(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"link_code":          code.Code,
		"expires_in_seconds": code.ExpiresInSeconds,
	})
}
