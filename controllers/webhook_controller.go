package controllers

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/betzone/affiliate_backend/config"
	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/services"
	"github.com/betzone/affiliate_backend/utils"
)

// WebhookController receives platform callbacks (registration, deposit,
// bet) and feeds them into the commission attribution engine. Callbacks are
// deduplicated by source ID so duplicate deliveries do not double-pay.
type WebhookController struct {
	Commissions *services.CommissionService
}

func NewWebhookController(commissions *services.CommissionService) *WebhookController {
	return &WebhookController{Commissions: commissions}
}

// VerifyWebhookSecret guards the webhook routes with a shared secret header.
func VerifyWebhookSecret() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret := os.Getenv("WEBHOOK_SECRET")
			if secret == "" {
				log.Printf("Warning: WEBHOOK_SECRET is not set, rejecting webhook")
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Webhook authentication not configured",
				})
			}

			provided := c.Request().Header.Get("X-Webhook-Secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid webhook secret",
				})
			}
			return next(c)
		}
	}
}

// HandleRegistration processes a referred user registration callback.
// Non-success statuses are acknowledged without any commission work.
func (wc *WebhookController) HandleRegistration(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var event models.RegistrationEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if event.Status != "success" {
		utils.WebhookEvents.WithLabelValues("registration", "ignored").Inc()
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Registration acknowledged",
		})
	}

	if event.Cid == "" || event.Txid == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "cid and txid are required",
		})
	}

	first, err := config.ClaimWebhookKey(ctx, "registration", event.Txid)
	if err != nil {
		log.Printf("Webhook dedupe check failed for registration %s: %v", event.Txid, err)
	}
	if !first {
		utils.WebhookEvents.WithLabelValues("registration", "duplicate").Inc()
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Duplicate registration ignored",
		})
	}

	earning, err := wc.Commissions.ProcessRegistration(ctx, event)
	if err != nil {
		config.ReleaseWebhookKey(ctx, "registration", event.Txid)
		return wc.commissionError(c, "registration", err)
	}

	utils.WebhookEvents.WithLabelValues("registration", "processed").Inc()
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration processed",
		Data:    earning,
	})
}

// HandleDeposit processes a deposit callback. Deliveries are keyed by
// (depositId, type) so a duplicate first-deposit cannot double-pay.
func (wc *WebhookController) HandleDeposit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var event models.DepositEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if event.DepositID == "" || event.AffiliateCode == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "depositId and affiliateCode are required",
		})
	}

	first, err := config.ClaimWebhookKey(ctx, "deposit:"+event.Type, event.DepositID)
	if err != nil {
		log.Printf("Webhook dedupe check failed for deposit %s: %v", event.DepositID, err)
	}
	if !first {
		utils.WebhookEvents.WithLabelValues("deposit", "duplicate").Inc()
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Duplicate deposit ignored",
		})
	}

	earning, err := wc.Commissions.ProcessDeposit(ctx, event)
	if err != nil {
		config.ReleaseWebhookKey(ctx, "deposit:"+event.Type, event.DepositID)
		return wc.commissionError(c, "deposit", err)
	}

	utils.WebhookEvents.WithLabelValues("deposit", "processed").Inc()
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Deposit processed",
		Data:    earning,
	})
}

// HandleBet processes a bet callback, attributed through the referred-user
// rollup since bet events carry no referral code.
func (wc *WebhookController) HandleBet(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var event models.BetEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if event.BetID == "" || event.UserID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "betId and userId are required",
		})
	}

	first, err := config.ClaimWebhookKey(ctx, "bet", event.BetID)
	if err != nil {
		log.Printf("Webhook dedupe check failed for bet %s: %v", event.BetID, err)
	}
	if !first {
		utils.WebhookEvents.WithLabelValues("bet", "duplicate").Inc()
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Duplicate bet ignored",
		})
	}

	earning, err := wc.Commissions.ProcessBet(ctx, event)
	if err != nil {
		config.ReleaseWebhookKey(ctx, "bet", event.BetID)
		return wc.commissionError(c, "bet", err)
	}

	utils.WebhookEvents.WithLabelValues("bet", "processed").Inc()
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Bet processed",
		Data:    earning,
	})
}

func (wc *WebhookController) commissionError(c echo.Context, eventType string, err error) error {
	utils.WebhookEvents.WithLabelValues(eventType, "error").Inc()

	switch err {
	case services.ErrCodeNotFound:
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Unknown referral code",
		})
	case services.ErrInvalidAmount:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid amount",
		})
	default:
		log.Printf("Failed to process %s event: %v", eventType, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process event",
		})
	}
}
