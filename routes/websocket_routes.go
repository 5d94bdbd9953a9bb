package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/betzone/affiliate_backend/middleware"
	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/websocket"
)

// RegisterWebsocketRoutes sets up the live notification endpoint
func RegisterWebsocketRoutes(e *echo.Echo, hub *websocket.Hub) {
	e.GET("/ws", func(c echo.Context) error {
		accountType := middleware.ExtractAccountType(c)
		if accountType == "admin" {
			return websocket.HandleWebSocket(c, hub, primitive.NilObjectID, true)
		}

		idHex, err := middleware.ExtractAccountID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
		}
		accountID, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid account ID in token",
			})
		}
		return websocket.HandleWebSocket(c, hub, accountID, false)
	}, middleware.JWTMiddleware())
}
