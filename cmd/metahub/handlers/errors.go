package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/metahub-labs/platform/common/apperr"
	"github.com/metahub-labs/platform/common/logger"
)

// statusOf maps domain error codes onto HTTP statuses. This is the only place
// the taxonomy touches transport.
func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeMetahubNotFound, apperr.CodeBranchNotFound, apperr.CodeSourceBranchNotFound:
		return http.StatusNotFound
	case apperr.CodeMembershipNotFound:
		return http.StatusForbidden
	case apperr.CodeCodenameExists,
		apperr.CodeNumberConflict,
		apperr.CodeCreationInProgress,
		apperr.CodeDeletionInProgress,
		apperr.CodeBranchActiveForOtherUsers,
		apperr.CodeDefaultBranchDelete,
		apperr.CodeDefaultBranchExists,
		apperr.CodeOptimisticLockMismatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders a domain error. Unexpected failures are logged with
// their cause and surfaced generically.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	code := apperr.CodeOf(err)
	status := statusOf(code)

	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(status, map[string]interface{}{
			"error":   apperr.CodeInternal,
			"message": "internal server error",
		})
	}

	body := map[string]interface{}{
		"error": code,
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body["message"] = appErr.Message
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
	}
	if apperr.Retryable(err) {
		body["retryable"] = true
	}

	return c.JSON(status, body)
}
