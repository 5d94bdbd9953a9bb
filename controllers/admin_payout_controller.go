package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/services"
)

// AdminPayoutController drives payout lifecycle transitions and the
// override reconciliation surface. All routes sit behind admin auth.
type AdminPayoutController struct {
	DB            *mongo.Database
	Payouts       *services.PayoutService
	Commissions   *services.CommissionService
	Notifications *services.NotificationService
}

func NewAdminPayoutController(db *mongo.Database, payouts *services.PayoutService, commissions *services.CommissionService, notifications *services.NotificationService) *AdminPayoutController {
	return &AdminPayoutController{DB: db, Payouts: payouts, Commissions: commissions, Notifications: notifications}
}

// ListPayouts returns payouts across all accounts, filterable by status.
func (ac *AdminPayoutController) ListPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	page := 1
	limit := 50
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	skip := (page - 1) * limit

	cursor, err := ac.DB.Collection("payouts").Find(ctx, filter,
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

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts fetched successfully",
		Data:    payouts,
	})
}

func (ac *AdminPayoutController) loadPayout(ctx context.Context, c echo.Context) (*models.Payout, error) {
	payoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, services.ErrPayoutNotFound
	}
	return ac.Payouts.GetPayout(ctx, payoutID)
}

// MarkProcessing moves a pending payout into processing.
func (ac *AdminPayoutController) MarkProcessing(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payout, err := ac.loadPayout(ctx, c)
	if err != nil {
		return payoutError(c, err)
	}
	if err := ac.Payouts.MarkProcessing(ctx, payout); err != nil {
		return payoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout marked processing",
		Data:    payout,
	})
}

// CompletePayout finalizes a processing payout and settles the account.
func (ac *AdminPayoutController) CompletePayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payout, err := ac.loadPayout(ctx, c)
	if err != nil {
		return payoutError(c, err)
	}
	if err := ac.Payouts.CompletePayout(ctx, payout); err != nil {
		return payoutError(c, err)
	}

	go func() {
		bgCtx, bgCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer bgCancel()
		ac.notifyAccount(bgCtx, payout, "Payout completed")
	}()

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout completed",
		Data:    payout,
	})
}

// FailPayout records a disbursement failure on a processing payout.
func (ac *AdminPayoutController) FailPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failure reason is required",
		})
	}

	payout, err := ac.loadPayout(ctx, c)
	if err != nil {
		return payoutError(c, err)
	}
	if err := ac.Payouts.FailPayout(ctx, payout, req.Reason); err != nil {
		return payoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout marked failed",
		Data:    payout,
	})
}

// RetryPayout resets a failed payout to pending within the retry budget.
func (ac *AdminPayoutController) RetryPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		req.Notes = ""
	}

	payout, err := ac.loadPayout(ctx, c)
	if err != nil {
		return payoutError(c, err)
	}
	if err := ac.Payouts.RetryPayout(ctx, payout, req.Notes); err != nil {
		return payoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout reset to pending",
		Data:    payout,
	})
}

// ReplayOverrides reconciles missed override commissions for one affiliate.
func (ac *AdminPayoutController) ReplayOverrides(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	affiliateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid affiliate ID format",
		})
	}

	since := time.Time{}
	if sinceStr := c.QueryParam("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "since must be RFC3339",
			})
		}
		since = parsed
	}

	replayed, err := ac.Commissions.ReplayOverrides(ctx, affiliateID, since)
	if err != nil {
		return payoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Override reconciliation complete",
		Data:    map[string]interface{}{"replayed": replayed},
	})
}

// ActivateAccount flips a pending account to active.
func (ac *AdminPayoutController) ActivateAccount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid account ID format",
		})
	}

	collection := "affiliates"
	if c.QueryParam("kind") == string(models.AccountKindMaster) {
		collection = "master_affiliates"
	}

	result, err := ac.DB.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": accountID, "status": models.AccountStatusPending},
		bson.M{"$set": bson.M{"status": models.AccountStatusActive, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to activate account",
		})
	}
	if result.ModifiedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No pending account with that ID",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Account activated",
	})
}

// RecordWithdrawalCommission attributes a withdrawal commission at an
// admin-supplied rate.
func (ac *AdminPayoutController) RecordWithdrawalCommission(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req struct {
		UserID       string  `json:"userId"`
		WithdrawalID string  `json:"withdrawalId"`
		Amount       float64 `json:"amount"`
		Rate         float64 `json:"rate"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	earning, err := ac.Commissions.ProcessWithdrawal(ctx, req.UserID, req.WithdrawalID, req.Amount, req.Rate)
	if err != nil {
		return payoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal commission recorded",
		Data:    earning,
	})
}

// notifyAccount looks up the account email and sends the status email.
func (ac *AdminPayoutController) notifyAccount(ctx context.Context, payout *models.Payout, subject string) {
	collection := "affiliates"
	if payout.AccountKind == models.AccountKindMaster {
		collection = "master_affiliates"
	}

	var account struct {
		Email string `bson:"email"`
	}
	if err := ac.DB.Collection(collection).FindOne(ctx, bson.M{"_id": payout.AccountID}).Decode(&account); err != nil {
		return
	}

	ac.Notifications.NotifyAffiliate(ctx, payout, account.Email, subject, services.PayoutStatusBody(payout))
}
