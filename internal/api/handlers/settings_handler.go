package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lpiteam/autoorder/internal/ingest"
	"github.com/lpiteam/autoorder/internal/service"
)

type SettingsHandler struct {
	service *service.OrderService
}

func NewSettingsHandler(svc *service.OrderService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// Upload replaces the store configuration from a supplier settings
// workbook.
func (h *SettingsHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("settings")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "settings file is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded settings"})
		return
	}
	defer src.Close()

	parsed, err := ingest.ReadSettings(src)
	if err != nil {
		var missing *ingest.MissingColumnsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":           "settings schema is incomplete",
				"missing_columns": missing.Columns,
			})
			return
		}
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("settings ingestion failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read settings workbook"})
		return
	}

	h.service.ApplySettingsWorkbook(parsed)

	c.JSON(http.StatusOK, gin.H{
		"master_loaded":  parsed.Master != nil,
		"item_overrides": len(parsed.Overrides),
	})
}

// Get returns the current three-tier configuration.
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Store().Snapshot())
}

// ClearOverrides drops all supplier defaults and item overrides.
func (h *SettingsHandler) ClearOverrides(c *gin.Context) {
	h.service.ClearOverrides()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
