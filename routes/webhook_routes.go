package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/controllers"
)

// RegisterWebhookRoutes sets up the platform callback routes. These are
// authenticated with a shared secret header rather than a JWT.
func RegisterWebhookRoutes(e *echo.Echo, webhookController *controllers.WebhookController) {
	webhooks := e.Group("/webhooks", controllers.VerifyWebhookSecret())
	webhooks.POST("/registration", webhookController.HandleRegistration)
	webhooks.POST("/deposit", webhookController.HandleDeposit)
	webhooks.POST("/bet", webhookController.HandleBet)
}
