package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	"github.com/yungbote/lingobridge-backend/internal/requestdata"
	"github.com/yungbote/lingobridge-backend/internal/services"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

type CardHandler struct {
	cardService     services.CardService
	reviewService   services.ReviewService
	composerService services.ComposerService
}

func NewCardHandler(
	cardService services.CardService,
	reviewService services.ReviewService,
	composerService services.ComposerService,
) *CardHandler {
	return &CardHandler{
		cardService:     cardService,
		reviewService:   reviewService,
		composerService: composerService,
	}
}

// POST /cards
func (ch *CardHandler) Create(c *gin.Context) {
	var req struct {
		Front string   `json:"front"`
		Back  string   `json:"back"`
		Tags  []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	card, err := ch.cardService.Create(c.Request.Context(), userID, req.Front, req.Back, req.Tags, cards.SourceManual)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"card": card})
}

// GET /cards?status=&tag=&limit=&offset=
func (ch *CardHandler) List(c *gin.Context) {
	filter := repos.CardList{
		Tag:    c.Query("tag"),
		Limit:  intQuery(c, "limit", 0),
		Offset: intQuery(c, "offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := srs.ParseStatus(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_status", err)
			return
		}
		filter.Status = &status
	}
	userID := requestdata.UserID(c.Request.Context())
	items, err := ch.cardService.List(c.Request.Context(), userID, filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cards": items})
}

// GET /cards/due?limit=
func (ch *CardHandler) Due(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	summary, err := ch.reviewService.DueCards(c.Request.Context(), userID, intQuery(c, "limit", 0))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"cards":  summary.Cards,
		"counts": summary.Counts,
	})
}

// POST /cards/:card_id/grade
// body: { "grade": "again" | "good" | "easy" }
func (ch *CardHandler) Grade(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_card_id", err)
		return
	}
	var req struct {
		Grade string `json:"grade"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	grade, err := srs.ParseGrade(req.Grade)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	if _, err := ch.reviewService.GradeCard(c.Request.Context(), userID, cardID, grade); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /cards/:card_id
func (ch *CardHandler) Update(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_card_id", err)
		return
	}
	var req struct {
		Front *string   `json:"front"`
		Back  *string   `json:"back"`
		Tags  *[]string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	card, err := ch.cardService.UpdateContent(c.Request.Context(), userID, cardID, req.Front, req.Back, req.Tags)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"card": card})
}

// DELETE /cards/:card_id
func (ch *CardHandler) Delete(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_card_id", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	if err := ch.cardService.Delete(c.Request.Context(), userID, cardID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /cards/propose_sentence
// body: { "target_word": "..." }
func (ch *CardHandler) ProposeSentence(c *gin.Context) {
	var req struct {
		TargetWord string `json:"target_word"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	proposal, err := ch.composerService.ProposeSentence(c.Request.Context(), req.TargetWord)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, proposal)
}

// POST /cards/validate_translate_sentence
// body: { "target_word": "...", "user_sentence": "...", "language": "es"|"en" }
func (ch *CardHandler) ValidateSentence(c *gin.Context) {
	var req struct {
		TargetWord   string `json:"target_word"`
		UserSentence string `json:"user_sentence"`
		Language     string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	verdict, err := ch.composerService.ValidateSentence(c.Request.Context(), req.TargetWord, req.UserSentence, req.Language)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, verdict)
}

// POST /cards/save_final_card
// body: { "spanish_front": "...", "english_back": "...", "tags": [...] }
func (ch *CardHandler) SaveFinalCard(c *gin.Context) {
	var req struct {
		SpanishFront string   `json:"spanish_front"`
		EnglishBack  string   `json:"english_back"`
		Tags         []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	card, err := ch.cardService.Create(c.Request.Context(), userID, req.SpanishFront, req.EnglishBack, req.Tags, cards.SourceChat)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"success": true,
		"card_id": card.ID,
		"message": "Card saved successfully.",
	})
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
