package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/metahub-labs/platform/cmd/metahub/container"
	"github.com/metahub-labs/platform/cmd/metahub/handlers"
)

// RegisterMetahubRoutes registers metahub provisioning routes
func RegisterMetahubRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewMetahubHandler(c.MetahubService, c.Components.Logger)

	metahubs := e.Group("/api/v1/metahubs")
	{
		metahubs.POST("", h.CreateMetahub)           // POST /api/v1/metahubs
		metahubs.GET("/:metahubId", h.GetMetahub)    // GET  /api/v1/metahubs/:metahubId
	}
}
