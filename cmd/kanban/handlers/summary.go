package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/floorhand/kanban/cmd/kanban/service"
	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
)

// SummaryHandler handles delivery status report requests
type SummaryHandler struct {
	summaries *service.SummaryService
	log       *logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaries *service.SummaryService, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, log: log}
}

// GetSummary returns total/sent/remaining per (model, lot)
// GET /api/v1/summary?model=&lot=
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	filter := models.SummaryFilter{
		Model: c.QueryParam("model"),
		LotNo: c.QueryParam("lot"),
	}

	rows, err := h.summaries.Summarize(c.Request().Context(), filter)
	if err != nil {
		h.log.Error("summary failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "system_error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rows": rows,
	})
}
