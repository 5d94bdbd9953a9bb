package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/betzone/affiliate_backend/middleware"
	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/services"
	"github.com/betzone/affiliate_backend/websocket"
)

// PayoutController handles affiliate-facing payout requests, cancellation
// and history.
type PayoutController struct {
	DB            *mongo.Database
	Payouts       *services.PayoutService
	Notifications *services.NotificationService
	Hub           *websocket.Hub
}

func NewPayoutController(db *mongo.Database, payouts *services.PayoutService, notifications *services.NotificationService, hub *websocket.Hub) *PayoutController {
	return &PayoutController{DB: db, Payouts: payouts, Notifications: notifications, Hub: hub}
}

// sessionAccount extracts the authenticated account's ID and kind.
func sessionAccount(c echo.Context) (primitive.ObjectID, models.AccountKind, error) {
	accountID, err := middleware.ExtractAccountID(c)
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	objID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return primitive.NilObjectID, "", err
	}

	kind := models.AccountKindAffiliate
	if middleware.ExtractAccountType(c) == string(models.AccountKindMaster) {
		kind = models.AccountKindMaster
	}
	return objID, kind, nil
}

// RequestPayout creates a payout from the account's pending earnings. A
// missing amount requests the full pending balance.
func (pc *PayoutController) RequestPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, kind, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	var req models.PayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	payout, err := pc.Payouts.RequestPayout(ctx, accountID, services.RequestPayoutInput{
		Kind:   kind,
		Amount: req.Amount,
		Notes:  req.Notes,
	})
	if err != nil {
		return payoutError(c, err)
	}

	// Notification failures never fail the request
	email, _ := c.Get("email").(string)
	go func() {
		bgCtx, bgCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer bgCancel()
		pc.Notifications.NotifyAffiliate(bgCtx, payout, email,
			"Payout requested", services.PayoutRequestedBody(payout))
		pc.Notifications.NotifyAdmin(bgCtx, payout,
			"New payout request", services.PayoutRequestedBody(payout))
	}()
	pc.Hub.BroadcastToAdmins(websocket.Notification{
		Type:    websocket.NotificationTypePayoutRequested,
		Message: "New payout request",
		Data:    payout,
	})

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payout requested successfully",
		Data:    payout,
	})
}

// CancelPayout cancels the caller's own pending or processing payout.
func (pc *PayoutController) CancelPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, _, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	payoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payout ID format",
		})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		req.Reason = ""
	}

	payout, err := pc.Payouts.GetPayout(ctx, payoutID)
	if err != nil {
		return payoutError(c, err)
	}
	if payout.AccountID != accountID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Payout belongs to another account",
		})
	}

	if err := pc.Payouts.CancelPayout(ctx, payout, req.Reason); err != nil {
		return payoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout cancelled",
		Data:    payout,
	})
}

// GetPayouts returns the caller's payout history, newest first.
func (pc *PayoutController) GetPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, _, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	page := 1
	limit := 20
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	skip := (page - 1) * limit

	cursor, err := pc.DB.Collection("payouts").Find(ctx,
		bson.M{"accountId": accountID},
		options.Find().SetSort(bson.M{"requestedAt": -1}).SetSkip(int64(skip)).SetLimit(int64(limit)),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payouts",
		})
	}
	defer cursor.Close(ctx)

	var payouts []models.Payout
	if err = cursor.All(ctx, &payouts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode payouts",
		})
	}

	totalCount, err := pc.DB.Collection("payouts").CountDocuments(ctx, bson.M{"accountId": accountID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count payouts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts fetched successfully",
		Data: map[string]interface{}{
			"payouts": payouts,
			"pagination": map[string]interface{}{
				"page":       page,
				"limit":      limit,
				"total":      totalCount,
				"totalPages": (totalCount + int64(limit) - 1) / int64(limit),
			},
		},
	})
}

// payoutError maps service errors onto HTTP responses.
func payoutError(c echo.Context, err error) error {
	switch err {
	case services.ErrBelowMinimum, services.ErrInvalidAmount, services.ErrNegativeNetAmount,
		services.ErrMissingPaymentDetails, services.ErrInvalidRate:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	case services.ErrInsufficientBalance:
		return c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  http.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	case services.ErrInvalidTransition, services.ErrRetryExhausted:
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: err.Error(),
		})
	case services.ErrPayoutNotFound, services.ErrAccountNotFound:
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: err.Error(),
		})
	case services.ErrConcurrencyConflict:
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Concurrent payout activity, please retry",
		})
	default:
		log.Printf("Payout operation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Payout operation failed",
		})
	}
}
