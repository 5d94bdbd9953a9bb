package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/betzone/affiliate_backend/models"
)

// NotificationService sends payout lifecycle emails and tracks the
// independent affiliate/admin notified flags on the payout document.
type NotificationService struct {
	DB         *mongo.Database
	smtpHost   string
	smtpPort   int
	smtpUser   string
	smtpPass   string
	fromAddr   string
	adminAddr  string
	configured bool
}

func NewNotificationService(db *mongo.Database) *NotificationService {
	s := &NotificationService{
		DB:        db,
		smtpHost:  os.Getenv("SMTP_HOST"),
		smtpUser:  os.Getenv("SMTP_USER"),
		smtpPass:  os.Getenv("SMTP_PASS"),
		fromAddr:  os.Getenv("SMTP_FROM"),
		adminAddr: os.Getenv("ADMIN_EMAIL"),
	}

	s.smtpPort = 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			s.smtpPort = port
		}
	}

	s.configured = s.smtpHost != "" && s.smtpUser != "" && s.smtpPass != ""
	if !s.configured {
		log.Println("Warning: SMTP not fully configured, payout emails disabled")
	}

	return s
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if !s.configured {
		return fmt.Errorf("smtp not configured")
	}

	m := gomail.NewMessage()
	from := s.fromAddr
	if from == "" {
		from = s.smtpUser
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.smtpHost, s.smtpPort, s.smtpUser, s.smtpPass)
	return d.DialAndSend(m)
}

// NotifyAffiliate emails the account holder about a payout event and sets
// the affiliateNotified flag on success.
func (s *NotificationService) NotifyAffiliate(ctx context.Context, payout *models.Payout, email, subject, body string) {
	if email == "" {
		return
	}
	if err := s.sendEmail(email, subject, body); err != nil {
		log.Printf("Failed to notify affiliate for payout %s: %v", payout.PayoutID, err)
		return
	}
	s.setNotifiedFlag(ctx, payout, "affiliateNotified")
}

// NotifyAdmin emails the configured admin address about a payout event and
// sets the adminNotified flag on success. Independent of NotifyAffiliate.
func (s *NotificationService) NotifyAdmin(ctx context.Context, payout *models.Payout, subject, body string) {
	if s.adminAddr == "" {
		return
	}
	if err := s.sendEmail(s.adminAddr, subject, body); err != nil {
		log.Printf("Failed to notify admin for payout %s: %v", payout.PayoutID, err)
		return
	}
	s.setNotifiedFlag(ctx, payout, "adminNotified")
}

func (s *NotificationService) setNotifiedFlag(ctx context.Context, payout *models.Payout, field string) {
	_, err := s.DB.Collection("payouts").UpdateByID(ctx, payout.ID, bson.M{
		"$set": bson.M{field: true},
	})
	if err != nil {
		log.Printf("Failed to set %s on payout %s: %v", field, payout.PayoutID, err)
	}
}

// PayoutRequestedBody renders the email body for a new payout request.
func PayoutRequestedBody(payout *models.Payout) string {
	return fmt.Sprintf(
		"<p>Payout <b>%s</b> requested for %.2f %s (net %.2f after fees) via %s.</p>",
		payout.PayoutID, payout.Amount, payout.Currency, payout.NetAmount, payout.PaymentMethod,
	)
}

// PayoutStatusBody renders the email body for a payout status change.
func PayoutStatusBody(payout *models.Payout) string {
	return fmt.Sprintf(
		"<p>Payout <b>%s</b> is now <b>%s</b>. Amount %.2f %s, net %.2f.</p>",
		payout.PayoutID, payout.Status, payout.Amount, payout.Currency, payout.NetAmount,
	)
}
