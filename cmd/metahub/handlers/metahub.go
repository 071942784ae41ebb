package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/metahub-labs/platform/cmd/metahub/middleware"
	"github.com/metahub-labs/platform/cmd/metahub/service"
	"github.com/metahub-labs/platform/common/logger"
)

// MetahubHandler handles metahub provisioning requests
type MetahubHandler struct {
	metahubs *service.MetahubService
	log      *logger.Logger
}

// NewMetahubHandler creates a new metahub handler
func NewMetahubHandler(metahubs *service.MetahubService, log *logger.Logger) *MetahubHandler {
	return &MetahubHandler{
		metahubs: metahubs,
		log:      log,
	}
}

// CreateMetahub provisions an empty metahub
// POST /api/v1/metahubs
func (h *MetahubHandler) CreateMetahub(c echo.Context) error {
	metahub, err := h.metahubs.CreateMetahub(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, metahub)
}

// GetMetahub retrieves a metahub
// GET /api/v1/metahubs/:metahubId
func (h *MetahubHandler) GetMetahub(c echo.Context) error {
	metahubID, err := pathUUID(c, "metahubId")
	if err != nil {
		return err
	}

	metahub, err := h.metahubs.GetMetahub(c.Request().Context(), metahubID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, metahub)
}
