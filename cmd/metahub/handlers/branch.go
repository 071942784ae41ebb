package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/metahub-labs/platform/cmd/metahub/middleware"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/cmd/metahub/service"
	"github.com/metahub-labs/platform/common/logger"
)

// BranchHandler handles branch lifecycle requests
type BranchHandler struct {
	branches *service.BranchService
	log      *logger.Logger
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branches *service.BranchService, log *logger.Logger) *BranchHandler {
	return &BranchHandler{
		branches: branches,
		log:      log,
	}
}

type createBranchPayload struct {
	Codename       string                `json:"codename"`
	Name           models.LocalizedText  `json:"name"`
	Description    *models.LocalizedText `json:"description,omitempty"`
	SourceBranchID *uuid.UUID            `json:"source_branch_id,omitempty"`
	Initial        bool                  `json:"initial,omitempty"`
}

type updateBranchPayload struct {
	Codename        *string               `json:"codename,omitempty"`
	Name            *models.LocalizedText `json:"name,omitempty"`
	Description     *models.LocalizedText `json:"description,omitempty"`
	ExpectedVersion *int64                `json:"expected_version,omitempty"`
}

// ListBranches lists branches with filtering, sorting and pagination
// GET /api/v1/metahub/:metahubId/branches
func (h *BranchHandler) ListBranches(c echo.Context) error {
	metahubID, err := pathUUID(c, "metahubId")
	if err != nil {
		return err
	}

	opts := listOptions(c)
	result, err := h.branches.ListBranches(c.Request().Context(), metahubID, opts, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	opts = opts.Sanitize()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": emptyIfNil(result.Items),
		"pagination": map[string]interface{}{
			"total":  result.Total,
			"limit":  opts.Limit,
			"offset": opts.Offset,
		},
		"meta": map[string]interface{}{
			"default_branch_id": result.DefaultBranchID,
			"active_branch_id":  result.ActiveBranchID,
		},
	})
}

// BranchOptions lists branches without pagination, for selector UIs
// GET /api/v1/metahub/:metahubId/branches/options
func (h *BranchHandler) BranchOptions(c echo.Context) error {
	metahubID, err := pathUUID(c, "metahubId")
	if err != nil {
		return err
	}

	result, err := h.branches.BranchOptions(c.Request().Context(), metahubID, listOptions(c), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": emptyIfNil(result.Items),
		"meta": map[string]interface{}{
			"default_branch_id": result.DefaultBranchID,
			"active_branch_id":  result.ActiveBranchID,
		},
	})
}

// GetBranch returns branch detail plus lineage
// GET /api/v1/metahub/:metahubId/branch/:branchId
func (h *BranchHandler) GetBranch(c echo.Context) error {
	metahubID, branchID, err := pathIDs(c)
	if err != nil {
		return err
	}

	branch, lineage, err := h.branches.GetBranch(c.Request().Context(), metahubID, branchID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"branch":  branch,
		"lineage": lineage,
	})
}

// CreateBranch creates a branch, optionally cloned from a source branch.
// The first branch of a metahub is created with "initial": true.
// POST /api/v1/metahub/:metahubId/branches
func (h *BranchHandler) CreateBranch(c echo.Context) error {
	metahubID, err := pathUUID(c, "metahubId")
	if err != nil {
		return err
	}

	var payload createBranchPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := middleware.GetUserID(c)
	ctx := c.Request().Context()

	var branch *models.Branch
	if payload.Initial {
		branch, err = h.branches.CreateInitialBranch(ctx, &service.CreateInitialBranchRequest{
			MetahubID:   metahubID,
			Codename:    payload.Codename,
			Name:        payload.Name,
			Description: payload.Description,
			CreatedBy:   userID,
		})
	} else {
		branch, err = h.branches.CreateBranch(ctx, &service.CreateBranchRequest{
			MetahubID:      metahubID,
			Codename:       payload.Codename,
			Name:           payload.Name,
			Description:    payload.Description,
			SourceBranchID: payload.SourceBranchID,
			CreatedBy:      userID,
		})
	}
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, branch)
}

// UpdateBranch applies metadata edits with optional optimistic-version gating
// PATCH /api/v1/metahub/:metahubId/branch/:branchId
func (h *BranchHandler) UpdateBranch(c echo.Context) error {
	metahubID, branchID, err := pathIDs(c)
	if err != nil {
		return err
	}

	var payload updateBranchPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	branch, err := h.branches.UpdateBranch(c.Request().Context(), &service.UpdateBranchRequest{
		MetahubID:       metahubID,
		BranchID:        branchID,
		Codename:        payload.Codename,
		Name:            payload.Name,
		Description:     payload.Description,
		ExpectedVersion: payload.ExpectedVersion,
		UpdatedBy:       middleware.GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, branch)
}

// ActivateBranch makes a branch the requesting user's working branch
// POST /api/v1/metahub/:metahubId/branch/:branchId/activate
func (h *BranchHandler) ActivateBranch(c echo.Context) error {
	metahubID, branchID, err := pathIDs(c)
	if err != nil {
		return err
	}

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	if err := h.branches.ActivateBranch(c.Request().Context(), metahubID, branchID, userID); err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_branch_id": branchID,
	})
}

// SetDefaultBranch designates the metahub-wide default branch
// POST /api/v1/metahub/:metahubId/branch/:branchId/default
func (h *BranchHandler) SetDefaultBranch(c echo.Context) error {
	metahubID, branchID, err := pathIDs(c)
	if err != nil {
		return err
	}

	if err := h.branches.SetDefaultBranch(c.Request().Context(), metahubID, branchID); err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"default_branch_id": branchID,
	})
}

// GetBlockingUsers lists users actively working on a branch
// GET /api/v1/metahub/:metahubId/branch/:branchId/blocking-users
func (h *BranchHandler) GetBlockingUsers(c echo.Context) error {
	metahubID, branchID, err := pathIDs(c)
	if err != nil {
		return err
	}

	blockers, err := h.branches.GetBlockingUsers(c.Request().Context(), metahubID, branchID, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": blockers,
	})
}

// DeleteBranch deletes a branch and drops its namespace
// DELETE /api/v1/metahub/:metahubId/branch/:branchId
func (h *BranchHandler) DeleteBranch(c echo.Context) error {
	metahubID, branchID, err := pathIDs(c)
	if err != nil {
		return err
	}

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	if err := h.branches.DeleteBranch(c.Request().Context(), metahubID, branchID, userID); err != nil {
		return respondError(c, h.log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Helpers

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a UUID")
	}
	return id, nil
}

func pathIDs(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	metahubID, err := pathUUID(c, "metahubId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	branchID, err := pathUUID(c, "branchId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return metahubID, branchID, nil
}

func listOptions(c echo.Context) models.BranchListOptions {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	return models.BranchListOptions{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Search:    c.QueryParam("search"),
	}
}

func emptyIfNil(items []*models.Branch) []*models.Branch {
	if items == nil {
		return []*models.Branch{}
	}
	return items
}
