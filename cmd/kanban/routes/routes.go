package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/floorhand/kanban/cmd/kanban/container"
	"github.com/floorhand/kanban/cmd/kanban/handlers"
	"github.com/floorhand/kanban/cmd/kanban/middleware"
)

// RegisterScanRoutes registers the scan confirmation endpoint
func RegisterScanRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewScanHandler(c.ScanService, c.SummaryService, c.Components.Logger)
	gate := middleware.RequireGateKey(c.Components.Config.Service.GateKey)

	e.POST("/api/v1/scan", h.ConfirmScan, gate)
}

// RegisterReportRoutes registers the read-only report endpoints
func RegisterReportRoutes(e *echo.Echo, c *container.Container) {
	summary := handlers.NewSummaryHandler(c.SummaryService, c.Components.Logger)
	report := handlers.NewReportHandler(c.ReportService, c.Components.Logger)

	e.GET("/api/v1/summary", summary.GetSummary)
	e.GET("/api/v1/deliveries", report.ListDeliveries)
}

// RegisterCatalogRoutes registers the master catalog bulk load endpoint
func RegisterCatalogRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewCatalogHandler(c.CatalogService, c.Components.Logger)
	gate := middleware.RequireGateKey(c.Components.Config.Service.GateKey)

	e.POST("/api/v1/catalog/bulk", h.BulkLoad, gate)
}
