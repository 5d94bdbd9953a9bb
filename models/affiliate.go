package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountKind identifies which tier an account belongs to.
type AccountKind string

const (
	AccountKindAffiliate AccountKind = "affiliate"
	AccountKindMaster    AccountKind = "master_affiliate"
)

// Account statuses
const (
	AccountStatusPending   = "pending"
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusBanned    = "banned"
	AccountStatusInactive  = "inactive"
)

// Payment methods supported for payouts
const (
	PaymentMethodMpesa          = "mpesa"
	PaymentMethodTigoPesa       = "tigopesa"
	PaymentMethodAirtelMoney    = "airtel_money"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodCrypto         = "crypto"
	PaymentMethodExchangeWallet = "exchange_wallet"
	PaymentMethodOther          = "other"
)

// Balance holds the running earnings counters for an account.
// totalEarnings should equal pendingEarnings + processingEarnings + paidEarnings.
type Balance struct {
	TotalEarnings      float64 `json:"totalEarnings" bson:"totalEarnings"`
	PendingEarnings    float64 `json:"pendingEarnings" bson:"pendingEarnings"`
	ProcessingEarnings float64 `json:"processingEarnings" bson:"processingEarnings"`
	PaidEarnings       float64 `json:"paidEarnings" bson:"paidEarnings"`
}

// PaymentDetails holds method-specific payout destination fields.
type PaymentDetails struct {
	PhoneNumber   string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty" bson:"accountName,omitempty"`
	BankName      string `json:"bankName,omitempty" bson:"bankName,omitempty"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty" bson:"walletAddress,omitempty"`
}

// Affiliate is a first-tier account earning commission on referred users'
// registrations, deposits and bets.
type Affiliate struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName       string             `json:"fullName" bson:"fullName"`
	Email          string             `json:"email" bson:"email"`
	PhoneNumber    string             `json:"phoneNumber" bson:"phoneNumber"`
	Password       string             `json:"-" bson:"password"`
	Status         string             `json:"status" bson:"status"`
	ReferralCode   string             `json:"referralCode" bson:"referralCode"`
	CustomCode     string             `json:"customCode,omitempty" bson:"customCode,omitempty"`
	CommissionRate float64            `json:"commissionRate" bson:"commissionRate"` // % of bet stake
	DepositRate    float64            `json:"depositRate" bson:"depositRate"`       // % of deposit amount
	CPARate        float64            `json:"cpaRate" bson:"cpaRate"`               // flat registration bonus
	Balance        Balance            `json:"balance" bson:"balance"`
	ReferralCount  int                `json:"referralCount" bson:"referralCount"`
	MinimumPayout  float64            `json:"minimumPayout" bson:"minimumPayout"`
	PaymentMethod  string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentDetails PaymentDetails     `json:"paymentDetails" bson:"paymentDetails"`
	LastPayoutDate *time.Time         `json:"lastPayoutDate,omitempty" bson:"lastPayoutDate,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
