package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/floorhand/kanban/cmd/kanban/service"
	"github.com/floorhand/kanban/common/logger"
)

// CatalogHandler handles master catalog bulk loads
type CatalogHandler struct {
	catalogs *service.CatalogService
	log      *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogs *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs, log: log}
}

type bulkLoadRequest struct {
	Rows []service.CatalogRow `json:"rows"`
}

// BulkLoad replaces master catalog rows from an upload
// POST /api/v1/catalog/bulk
func (h *CatalogHandler) BulkLoad(c echo.Context) error {
	var req bulkLoadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if len(req.Rows) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "rows is required",
		})
	}

	loaded, err := h.catalogs.BulkReplace(c.Request().Context(), req.Rows)
	if err != nil {
		h.log.Error("catalog bulk load failed", "error", err)
		// A malformed upload is the uploader's fault, not a system fault
		if errors.Is(err, service.ErrInvalidRow) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": err.Error(),
			})
		}
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "system_error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"loaded": loaded,
	})
}
