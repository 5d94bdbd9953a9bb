package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/repositories"
)

// AffiliateController serves referral data and earnings history for both
// account tiers.
type AffiliateController struct {
	DB       *mongo.Database
	Accounts *repositories.AccountRepository
}

func NewAffiliateController(db *mongo.Database) *AffiliateController {
	return &AffiliateController{
		DB:       db,
		Accounts: repositories.NewAccountRepository(db),
	}
}

func referralLink(code string) string {
	base := os.Getenv("REFERRAL_LINK_BASE")
	if base == "" {
		base = "https://betzone.co.tz/register?ref="
	}
	return base + code
}

// GetReferralData returns the caller's referral code, link and counters.
func (ac *AffiliateController) GetReferralData(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, kind, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	var referralCode string
	var balance models.Balance
	var referralCount int

	if kind == models.AccountKindMaster {
		var master models.MasterAffiliate
		err = ac.DB.Collection("master_affiliates").FindOne(ctx, bson.M{"_id": accountID}).Decode(&master)
		if err == nil {
			referralCode = master.ReferralCode
			balance = master.Balance
			referralCount = master.ReferralCount
		}
	} else {
		var affiliate models.Affiliate
		err = ac.DB.Collection("affiliates").FindOne(ctx, bson.M{"_id": accountID}).Decode(&affiliate)
		if err == nil {
			referralCode = affiliate.ReferralCode
			balance = affiliate.Balance
			referralCount = affiliate.ReferralCount
		}
	}
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Account not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral data fetched successfully",
		Data: map[string]interface{}{
			"referralCode":  referralCode,
			"referralLink":  referralLink(referralCode),
			"referralCount": referralCount,
			"balance":       balance,
		},
	})
}

// GetReferralQRCode renders the caller's referral link as a base64 PNG.
func (ac *AffiliateController) GetReferralQRCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, kind, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	collection := "affiliates"
	if kind == models.AccountKindMaster {
		collection = "master_affiliates"
	}

	var account struct {
		ReferralCode string `bson:"referralCode"`
	}
	if err := ac.DB.Collection(collection).FindOne(ctx, bson.M{"_id": accountID}).Decode(&account); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Account not found",
		})
	}

	qrCode, err := qr.Encode(referralLink(account.ReferralCode), qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}
	qrCode, err = barcode.Scale(qrCode, 256, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code generated successfully",
		Data: map[string]interface{}{
			"qrcode":       "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
			"referralLink": referralLink(account.ReferralCode),
		},
	})
}

// GetEarnings returns the caller's earning records, newest first, with
// optional status and type filters.
func (ac *AffiliateController) GetEarnings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, _, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	filter := bson.M{"accountId": accountID}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if earningType := c.QueryParam("type"); earningType != "" {
		filter["type"] = earningType
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

	cursor, err := ac.DB.Collection("earnings").Find(ctx, filter,
		options.Find().SetSort(bson.M{"earnedAt": -1}).SetSkip(int64(skip)).SetLimit(int64(limit)),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch earnings",
		})
	}
	defer cursor.Close(ctx)

	var earnings []models.Earning
	if err = cursor.All(ctx, &earnings); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode earnings",
		})
	}

	totalCount, err := ac.DB.Collection("earnings").CountDocuments(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count earnings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Earnings fetched successfully",
		Data: map[string]interface{}{
			"earnings": earnings,
			"pagination": map[string]interface{}{
				"page":       page,
				"limit":      limit,
				"total":      totalCount,
				"totalPages": (totalCount + int64(limit) - 1) / int64(limit),
			},
		},
	})
}

// GetReferredUsers returns the caller's referred-user rollups.
func (ac *AffiliateController) GetReferredUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, _, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	cursor, err := ac.DB.Collection("referred_users").Find(ctx,
		bson.M{"accountId": accountID},
		options.Find().SetSort(bson.M{"lastActivityAt": -1}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch referred users",
		})
	}
	defer cursor.Close(ctx)

	var referred []models.ReferredUser
	if err = cursor.All(ctx, &referred); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode referred users",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referred users fetched successfully",
		Data:    referred,
	})
}

// UpdatePaymentDetails stores the caller's payout destination and, when
// provided, a new minimum payout threshold.
func (ac *AffiliateController) UpdatePaymentDetails(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, kind, err := sessionAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	var req models.PaymentDetailsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	switch req.PaymentMethod {
	case models.PaymentMethodMpesa, models.PaymentMethodTigoPesa, models.PaymentMethodAirtelMoney,
		models.PaymentMethodBankTransfer, models.PaymentMethodCrypto, models.PaymentMethodExchangeWallet,
		models.PaymentMethodOther:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unsupported payment method",
		})
	}

	if err := ac.Accounts.UpdatePaymentDetails(ctx, accountID, kind, req.PaymentMethod, req.PaymentDetails); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Account not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update payment details",
		})
	}

	if req.MinimumPayout > 0 {
		if err := ac.Accounts.UpdateMinimumPayout(ctx, accountID, kind, req.MinimumPayout); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update minimum payout",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment details updated successfully",
	})
}
