package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lpiteam/autoorder/internal/domain"
	"github.com/lpiteam/autoorder/internal/ingest"
	"github.com/lpiteam/autoorder/internal/service"
)

const dateLayout = "2006-01-02"

type OrderHandler struct {
	service        *service.OrderService
	urgentRatioPct int
}

func NewOrderHandler(svc *service.OrderService, urgentRatioPct int) *OrderHandler {
	return &OrderHandler{service: svc, urgentRatioPct: urgentRatioPct}
}

// Calculate runs a calculation over an uploaded snapshot workbook.
// Form fields: snapshot (file), start, end (2006-01-02, default last 30
// days), urgent_ratio (optional percent).
func (h *OrderHandler) Calculate(c *gin.Context) {
	fileHeader, err := c.FormFile("snapshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot file is required"})
		return
	}

	period, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urgentRatio := h.urgentRatioPct
	if raw := strings.TrimSpace(c.PostForm("urgent_ratio")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			urgentRatio = v
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded snapshot"})
		return
	}
	defer src.Close()

	items, err := ingest.ReadSnapshot(src)
	if err != nil {
		var missing *ingest.MissingColumnsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":           "snapshot schema is incomplete",
				"missing_columns": missing.Columns,
			})
			return
		}
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("snapshot ingestion failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read snapshot workbook"})
		return
	}

	run, err := h.service.Run(c.Request.Context(), fileHeader.Filename, items, period.Days(), service.RunOptions{
		UrgentRatioPct: urgentRatio,
	})
	if err != nil {
		log.Error().Err(err).Msg("calculation run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "calculation failed"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// Summary serves the cached metrics of a previous run.
func (h *OrderHandler) Summary(c *gin.Context) {
	snapshotID := strings.TrimSpace(c.Query("snapshot_id"))
	if snapshotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_id is required"})
		return
	}

	periodDays, err := strconv.Atoi(c.DefaultQuery("period_days", "30"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_days"})
		return
	}

	summary, ok := h.service.CachedSummary(c.Request.Context(), snapshotID, periodDays)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached summary for this snapshot and period"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func parsePeriod(c *gin.Context) (domain.Period, error) {
	now := time.Now()
	period := domain.Period{Start: now.AddDate(0, 0, -29), End: now}

	if raw := strings.TrimSpace(c.PostForm("start")); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.Period{}, errors.New("invalid start date, expected YYYY-MM-DD")
		}
		period.Start = start
	}
	if raw := strings.TrimSpace(c.PostForm("end")); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.Period{}, errors.New("invalid end date, expected YYYY-MM-DD")
		}
		period.End = end
	}

	// An inverted range is not rejected: the run proceeds and marks
	// every row period-invalid so counts still report.
	return period, nil
}
