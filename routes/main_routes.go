package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/betzone/affiliate_backend/controllers"
	"github.com/betzone/affiliate_backend/services"
	"github.com/betzone/affiliate_backend/websocket"
)

// SetupRoutes wires services, controllers and route groups onto the Echo
// instance. The hub must already be running.
func SetupRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	ledger := services.NewLedgerService(db)
	resolver := services.NewResolverService(db)
	commissions := services.NewCommissionService(db, ledger, resolver)
	payouts := services.NewPayoutService(db, ledger)
	notifications := services.NewNotificationService(db)

	authController := controllers.NewAuthController(db)
	webhookController := controllers.NewWebhookController(commissions)
	payoutController := controllers.NewPayoutController(db, payouts, notifications, hub)
	affiliateController := controllers.NewAffiliateController(db)
	adminController := controllers.NewAdminPayoutController(db, payouts, commissions, notifications)

	RegisterAuthRoutes(e, authController)
	RegisterWebhookRoutes(e, webhookController)
	RegisterPayoutRoutes(e, payoutController)
	RegisterAffiliateRoutes(e, affiliateController)
	RegisterAdminRoutes(e, adminController)
	RegisterWebsocketRoutes(e, hub)
}
