package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user id
	UserIDKey ContextKey = "user_id"
)

// ExtractUser extracts the X-User-ID header (set by the platform's session
// layer upstream) and stores the parsed id in the request context. Requests
// without the header pass through; operations that need an identity enforce
// it themselves.
func ExtractUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("X-User-ID")
			if header == "" {
				return next(c)
			}

			userID, err := uuid.Parse(header)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error":   "validation",
					"message": "X-User-ID must be a UUID",
				})
			}

			c.Set(string(UserIDKey), userID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id, or nil when anonymous
func GetUserID(c echo.Context) *uuid.UUID {
	if v, ok := c.Get(string(UserIDKey)).(uuid.UUID); ok {
		return &v
	}
	return nil
}

// RequireUserID returns the authenticated user id or an error response
func RequireUserID(c echo.Context) (uuid.UUID, error) {
	if v, ok := c.Get(string(UserIDKey)).(uuid.UUID); ok {
		return v, nil
	}
	return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "X-User-ID header is required")
}
