package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/requestdata"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type ImportHandler struct {
	log           *logger.Logger
	importService services.AnkiImportService
}

func NewImportHandler(log *logger.Logger, importService services.AnkiImportService) *ImportHandler {
	return &ImportHandler{
		log:           log.With("handler", "ImportHandler"),
		importService: importService,
	}
}

// POST /import/anki (multipart/form-data)
// field: "file" (.apkg export)
func (ih *ImportHandler) ImportAnki(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".apkg") {
		RespondError(c, http.StatusBadRequest, "invalid_file_type", fmt.Errorf("expected a .apkg file, got %q", fh.Filename))
		return
	}

	tmp, err := os.CreateTemp("", "anki-upload-*.apkg")
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "temp_file_failed", err)
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fh, tmpPath); err != nil {
		RespondError(c, http.StatusInternalServerError, "save_upload_failed", err)
		return
	}

	userID := requestdata.UserID(c.Request.Context())
	summary, err := ih.importService.ImportDeck(c.Request.Context(), userID, tmpPath)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	ih.log.Info("Imported Anki deck",
		"user_id", userID,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
	)
	RespondCreated(c, summary)
}
