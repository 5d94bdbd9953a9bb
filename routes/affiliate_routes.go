package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/controllers"
	"github.com/betzone/affiliate_backend/middleware"
	"github.com/betzone/affiliate_backend/models"
)

// RegisterAffiliateRoutes sets up the account dashboard routes. Both
// affiliates and master affiliates use the same surface.
func RegisterAffiliateRoutes(e *echo.Echo, affiliateController *controllers.AffiliateController) {
	affiliateGroup := e.Group("/api/affiliate", middleware.JWTMiddleware(),
		middleware.RequireAccountType(string(models.AccountKindAffiliate), string(models.AccountKindMaster)))

	affiliateGroup.GET("/referral", affiliateController.GetReferralData)
	affiliateGroup.GET("/referral/qrcode", affiliateController.GetReferralQRCode)
	affiliateGroup.GET("/earnings", affiliateController.GetEarnings)
	affiliateGroup.GET("/referred-users", affiliateController.GetReferredUsers)
	affiliateGroup.PUT("/payment-details", affiliateController.UpdatePaymentDetails)
}
