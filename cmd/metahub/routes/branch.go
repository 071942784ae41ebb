package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/metahub-labs/platform/cmd/metahub/container"
	"github.com/metahub-labs/platform/cmd/metahub/handlers"
)

// RegisterBranchRoutes registers all branch lifecycle routes
func RegisterBranchRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewBranchHandler(c.BranchService, c.Components.Logger)

	metahub := e.Group("/api/v1/metahub/:metahubId")
	{
		metahub.GET("/branches", h.ListBranches)            // GET    /api/v1/metahub/:metahubId/branches
		metahub.GET("/branches/options", h.BranchOptions)   // GET    /api/v1/metahub/:metahubId/branches/options
		metahub.POST("/branches", h.CreateBranch)           // POST   /api/v1/metahub/:metahubId/branches
		metahub.GET("/branch/:branchId", h.GetBranch)       // GET    /api/v1/metahub/:metahubId/branch/:branchId
		metahub.PATCH("/branch/:branchId", h.UpdateBranch)  // PATCH  /api/v1/metahub/:metahubId/branch/:branchId
		metahub.DELETE("/branch/:branchId", h.DeleteBranch) // DELETE /api/v1/metahub/:metahubId/branch/:branchId

		metahub.POST("/branch/:branchId/activate", h.ActivateBranch)         // POST /api/v1/metahub/:metahubId/branch/:branchId/activate
		metahub.POST("/branch/:branchId/default", h.SetDefaultBranch)        // POST /api/v1/metahub/:metahubId/branch/:branchId/default
		metahub.GET("/branch/:branchId/blocking-users", h.GetBlockingUsers)  // GET  /api/v1/metahub/:metahubId/branch/:branchId/blocking-users
	}
}
