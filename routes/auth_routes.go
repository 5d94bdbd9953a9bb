package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/controllers"
)

// RegisterAuthRoutes sets up authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/admin-login", authController.AdminLogin)
}
