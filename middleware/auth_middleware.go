// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/models"
)

// RequireAccountType checks that the authenticated session belongs to one of
// the allowed account types.
func RequireAccountType(allowedTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountType := ExtractAccountType(c)
			if accountType == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: account type not found",
				})
			}

			for _, allowed := range allowedTypes {
				if accountType == allowed {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your account type",
			})
		}
	}
}
