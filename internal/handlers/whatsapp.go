package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/twilio"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

const webhookErrorReply = "Sorry, something went wrong. Please try again in a moment."

type WhatsappHandler struct {
	log             *logger.Logger
	whatsappService services.WhatsappService
	twilioClient    twilio.Client
}

func NewWhatsappHandler(log *logger.Logger, whatsappService services.WhatsappService, twilioClient twilio.Client) *WhatsappHandler {
	return &WhatsappHandler{
		log:             log.With("handler", "WhatsappHandler"),
		whatsappService: whatsappService,
		twilioClient:    twilioClient,
	}
}

// POST /twilio/whatsapp
// Twilio webhook. The reply travels back in the TwiML response body, so this
// endpoint never calls the Messages API itself.
func (wh *WhatsappHandler) Webhook(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form", err)
		return
	}

	signature := c.GetHeader("X-Twilio-Signature")
	if !wh.twilioClient.ValidateSignature(signature, webhookURL(c), c.Request.PostForm) {
		wh.log.Warn("Rejected webhook with bad signature", "url", webhookURL(c))
		RespondError(c, http.StatusForbidden, "invalid_signature", fmt.Errorf("signature mismatch"))
		return
	}

	from := strings.TrimSpace(c.PostForm("From"))
	body := c.PostForm("Body")
	if from == "" {
		RespondError(c, http.StatusBadRequest, "missing_sender", fmt.Errorf("From is required"))
		return
	}

	reply, err := wh.whatsappService.HandleInbound(c.Request.Context(), from, body)
	if err != nil {
		wh.log.Error("Inbound message handling failed", "from", from, "error", err)
		reply = webhookErrorReply
	}

	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(twilio.MessagingResponse(reply)))
}

// webhookURL rebuilds the public URL Twilio signed. The scheme comes from the
// proxy header when the app sits behind nginx.
func webhookURL(c *gin.Context) string {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		if c.Request.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.RequestURI())
}
