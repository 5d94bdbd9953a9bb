package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/controllers"
	"github.com/betzone/affiliate_backend/middleware"
	"github.com/betzone/affiliate_backend/models"
)

// RegisterPayoutRoutes sets up the account-facing payout routes
func RegisterPayoutRoutes(e *echo.Echo, payoutController *controllers.PayoutController) {
	payoutGroup := e.Group("/api/payouts", middleware.JWTMiddleware(),
		middleware.RequireAccountType(string(models.AccountKindAffiliate), string(models.AccountKindMaster)))

	payoutGroup.POST("", payoutController.RequestPayout)
	payoutGroup.GET("", payoutController.GetPayouts)
	payoutGroup.POST("/:id/cancel", payoutController.CancelPayout)
}
