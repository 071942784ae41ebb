package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/metahub-labs/platform/cmd/metahub/container"
	"github.com/metahub-labs/platform/cmd/metahub/middleware"
	"github.com/metahub-labs/platform/cmd/metahub/routes"
	"github.com/metahub-labs/platform/common/bootstrap"
	"github.com/metahub-labs/platform/common/server"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, DB, redis, cache, events)
	components, err := bootstrap.Setup(ctx, "metahub",
		bootstrap.WithDBInitHook(runMigrations),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap metahub service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, components)
	registerRoutes(e, serviceContainer)

	// Start with graceful shutdown
	srv := server.New("metahub", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server error", "error", err)
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
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())
	e.Use(middleware.ExtractUser())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"service": "metahub",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterMetahubRoutes(e, serviceContainer)
	routes.RegisterBranchRoutes(e, serviceContainer)
}
