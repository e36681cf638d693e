package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/floorhand/kanban/cmd/kanban/container"
	"github.com/floorhand/kanban/cmd/kanban/routes"
	"github.com/floorhand/kanban/common/bootstrap"
	"github.com/floorhand/kanban/common/server"
)

func main() {
	ctx := context.Background()

	// Local development convenience; env vars win over .env
	_ = godotenv.Load()

	// Bootstrap common components (config, logger, DB, migrations, redis)
	components, err := bootstrap.Setup(ctx, "kanban")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap kanban: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e)

	// Setup health check
	setupHealthCheck(e, serviceContainer)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server with graceful shutdown
	srv := server.New("kanban", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		if err := c.Components.DB.Health(ec.Request().Context()); err != nil {
			return ec.JSON(503, map[string]string{
				"status":  "degraded",
				"service": "kanban",
			})
		}
		return ec.JSON(200, map[string]string{
			"status":  "ok",
			"service": "kanban",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterScanRoutes(e, serviceContainer)
	routes.RegisterReportRoutes(e, serviceContainer)
	routes.RegisterCatalogRoutes(e, serviceContainer)
}
