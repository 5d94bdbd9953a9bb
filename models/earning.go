package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Earning types
const (
	EarningTypeDeposit      = "deposit_commission"
	EarningTypeBet          = "bet_commission"
	EarningTypeWithdrawal   = "withdrawal_commission"
	EarningTypeRegistration = "registration_bonus"
	EarningTypeOverride     = "override_commission"
	EarningTypeCPA          = "cpa"
	EarningTypeOther        = "other"
)

// Earning statuses. Records only move forward:
// pending -> processing -> paid, or pending/processing -> cancelled.
const (
	EarningStatusPending    = "pending"
	EarningStatusProcessing = "processing"
	EarningStatusPaid       = "paid"
	EarningStatusCancelled  = "cancelled"
)

// Earning is one commission ledger line. Amount, sourceAmount, commissionRate
// and earnedAt are immutable after insert; only status, paidAt and payoutId
// change, driven by payout allocation.
type Earning struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	AccountID      primitive.ObjectID  `json:"accountId" bson:"accountId"`
	AccountKind    AccountKind         `json:"accountKind" bson:"accountKind"`
	Amount         float64             `json:"amount" bson:"amount"`
	Type           string              `json:"type" bson:"type"`
	Status         string              `json:"status" bson:"status"`
	ReferredUserID string              `json:"referredUserId" bson:"referredUserId"`
	SourceID       string              `json:"sourceId" bson:"sourceId"`
	SourceType     string              `json:"sourceType" bson:"sourceType"`
	CommissionRate float64             `json:"commissionRate" bson:"commissionRate"`
	SourceAmount   float64             `json:"sourceAmount" bson:"sourceAmount"`
	Description    string              `json:"description,omitempty" bson:"description,omitempty"`
	EarnedAt       time.Time           `json:"earnedAt" bson:"earnedAt"`
	PaidAt         *time.Time          `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	PayoutID       *primitive.ObjectID `json:"payoutId,omitempty" bson:"payoutId,omitempty"`
}
