package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/utils"
)

// AuthController handles account signup and login for both tiers plus the
// admin session.
type AuthController struct {
	DB *mongo.Database
}

func NewAuthController(db *mongo.Database) *AuthController {
	return &AuthController{DB: db}
}

// defaultMinimumPayout applies when a signup does not set its own threshold.
const defaultMinimumPayout = 50.0

// Signup creates a new affiliate or master affiliate account. Accounts start
// in pending status until an admin activates them.
func (ac *AuthController) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	minimumPayout := req.MinimumPayout
	if minimumPayout <= 0 {
		minimumPayout = defaultMinimumPayout
	}

	now := time.Now()

	if req.AccountType == string(models.AccountKindMaster) {
		code, err := utils.GenerateUniqueCode(ctx, ac.DB, utils.GenerateMasterCode)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to generate referral code",
			})
		}

		master := models.MasterAffiliate{
			ID:            primitive.NewObjectID(),
			FullName:      req.FullName,
			Email:         req.Email,
			PhoneNumber:   req.PhoneNumber,
			Password:      hashed,
			Status:        models.AccountStatusPending,
			ReferralCode:  code,
			MinimumPayout: minimumPayout,
			PaymentMethod: req.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := ac.DB.Collection("master_affiliates").InsertOne(ctx, master); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return c.JSON(http.StatusConflict, models.Response{
					Status:  http.StatusConflict,
					Message: "Email already registered",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create account",
			})
		}

		return c.JSON(http.StatusCreated, models.Response{
			Status:  http.StatusCreated,
			Message: "Master affiliate account created, pending activation",
			Data:    map[string]interface{}{"id": master.ID.Hex(), "referralCode": code},
		})
	}

	code, err := utils.GenerateUniqueCode(ctx, ac.DB, utils.GenerateAffiliateCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate referral code",
		})
	}

	affiliate := models.Affiliate{
		ID:            primitive.NewObjectID(),
		FullName:      req.FullName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Password:      hashed,
		Status:        models.AccountStatusPending,
		ReferralCode:  code,
		MinimumPayout: minimumPayout,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := ac.DB.Collection("affiliates").InsertOne(ctx, affiliate); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Email already registered",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Affiliate account created, pending activation",
		Data:    map[string]interface{}{"id": affiliate.ID.Hex(), "referralCode": code},
	})
}

// Login authenticates an affiliate or master affiliate and issues a JWT.
// Suspended, banned and still-pending accounts are rejected.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
		})
	}

	var affiliate models.Affiliate
	err := ac.DB.Collection("affiliates").FindOne(ctx, bson.M{"email": req.Email}).Decode(&affiliate)
	if err == nil {
		return ac.issueToken(c, affiliate.ID.Hex(), affiliate.Email, string(models.AccountKindAffiliate), affiliate.Status, affiliate.Password, req.Password)
	}
	if err != mongo.ErrNoDocuments {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var master models.MasterAffiliate
	err = ac.DB.Collection("master_affiliates").FindOne(ctx, bson.M{"email": req.Email}).Decode(&master)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	return ac.issueToken(c, master.ID.Hex(), master.Email, string(models.AccountKindMaster), master.Status, master.Password, req.Password)
}

// AdminLogin authenticates the operations admin configured by environment.
func (ac *AuthController) AdminLogin(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminEmail == "" || adminHash == "" || req.Email != adminEmail {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	if err := utils.CheckPassword(adminHash, req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, err := utils.GenerateJWT(primitive.NewObjectID().Hex(), adminEmail, "admin")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    map[string]interface{}{"token": token},
	})
}

func (ac *AuthController) issueToken(c echo.Context, accountID, email, accountType, status, passwordHash, password string) error {
	if err := utils.CheckPassword(passwordHash, password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if status != models.AccountStatusActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is not active",
		})
	}

	token, err := utils.GenerateJWT(accountID, email, accountType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":       token,
			"accountType": accountType,
		},
	})
}
