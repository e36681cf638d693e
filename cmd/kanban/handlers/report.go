package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/floorhand/kanban/cmd/kanban/service"
	"github.com/floorhand/kanban/common/logger"
)

// ReportHandler handles delivery report requests
type ReportHandler struct {
	reports *service.ReportService
	log     *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// ListDeliveries returns delivery records matching the filter
// GET /api/v1/deliveries?model=&lot=&date=&from=&to=&format=csv
func (h *ReportHandler) ListDeliveries(c echo.Context) error {
	filter := service.ReportFilter{
		Model: c.QueryParam("model"),
		LotNo: c.QueryParam("lot"),
	}

	if date := c.QueryParam("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid date, expected YYYY-MM-DD",
			})
		}
		filter.From = day.UTC()
		filter.To = filter.From.Add(24 * time.Hour)
	} else {
		var err error
		if filter.From, err = parseTimeParam(c.QueryParam("from")); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from timestamp"})
		}
		if filter.To, err = parseTimeParam(c.QueryParam("to")); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid to timestamp"})
		}
	}

	recs, err := h.reports.ListDeliveries(c.Request().Context(), filter)
	if err != nil {
		h.log.Error("delivery report failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "system_error",
		})
	}

	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="confirm_report.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		return h.reports.WriteCSV(c.Response(), recs)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"deliveries": recs,
		"count":      len(recs),
	})
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
