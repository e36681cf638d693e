package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/floorhand/kanban/cmd/kanban/service"
	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
)

// ScanHandler handles scan confirmation requests
type ScanHandler struct {
	scans     *service.ScanService
	summaries *service.SummaryService
	log       *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scans *service.ScanService, summaries *service.SummaryService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scans:     scans,
		summaries: summaries,
		log:       log,
	}
}

// scanResponse is the operator-facing result of one scan
type scanResponse struct {
	*models.ScanOutcome
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ConfirmScan confirms one scanned kanban card
// POST /api/v1/scan
func (h *ScanHandler) ConfirmScan(c echo.Context) error {
	var req service.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	outcome, err := h.scans.Confirm(c.Request().Context(), &req)
	if err != nil {
		// Infrastructure fault: distinct from "not found" so the station
		// shows "please rescan" instead of rejecting the part.
		h.log.Error("scan failed", "error", err, "station", req.Station)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error":   "system_error",
			"message": "System error, please rescan",
		})
	}

	if outcome.Kind == models.ScanDelivered {
		h.summaries.Invalidate(c.Request().Context(), outcome.Model, outcome.LotNo)
	}

	return c.JSON(http.StatusOK, &scanResponse{
		ScanOutcome: outcome,
		OK:          outcome.Kind == models.ScanDelivered,
		Message:     scanMessage(outcome),
	})
}

// scanMessage renders the calm operator-facing text for each outcome.
// Duplicate messages distinguish a solo re-scan from a joint group that is
// already complete; operators respond differently to the two.
func scanMessage(outcome *models.ScanOutcome) string {
	switch outcome.Kind {
	case models.ScanEmpty:
		return "Nothing scanned"
	case models.ScanNotFound:
		return "Part is not in standard"
	case models.ScanAmbiguous:
		return "Kanban exists in multiple lots, rescan with lot number"
	case models.ScanAlreadyDelivered:
		if outcome.GroupSize > 1 {
			return fmt.Sprintf("Joint group of %d already complete", outcome.GroupSize)
		}
		return "Kanban already confirmed"
	case models.ScanDelivered:
		if outcome.Count > 1 {
			return fmt.Sprintf("Confirmed joint bundle of %d cards", outcome.Count)
		}
		return "Confirmed 1 card"
	default:
		return string(outcome.Kind)
	}
}
