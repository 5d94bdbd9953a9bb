package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/controllers"
	"github.com/betzone/affiliate_backend/middleware"
)

// RegisterAdminRoutes sets up the back-office payout and account routes
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminPayoutController) {
	adminGroup := e.Group("/api/admin", middleware.JWTMiddleware(), middleware.AdminOnly())

	adminGroup.GET("/payouts", adminController.ListPayouts)
	adminGroup.POST("/payouts/:id/processing", adminController.MarkProcessing)
	adminGroup.POST("/payouts/:id/complete", adminController.CompletePayout)
	adminGroup.POST("/payouts/:id/fail", adminController.FailPayout)
	adminGroup.POST("/payouts/:id/retry", adminController.RetryPayout)

	adminGroup.POST("/accounts/:id/activate", adminController.ActivateAccount)
	adminGroup.POST("/accounts/:id/replay-overrides", adminController.ReplayOverrides)
	adminGroup.POST("/commissions/withdrawal", adminController.RecordWithdrawalCommission)
}
