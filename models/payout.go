package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payout statuses
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
)

// DefaultMaxRetries bounds how many times a failed payout may be retried.
const DefaultMaxRetries = 3

// IncludedEarning is the slice of one earning record carried by a payout.
// Amount may be smaller than the underlying record's amount when the record
// was split to hit the requested total exactly.
type IncludedEarning struct {
	EarningID   primitive.ObjectID `json:"earningId" bson:"earningId"`
	Amount      float64            `json:"amount" bson:"amount"`
	Type        string             `json:"type" bson:"type"`
	EarnedAt    time.Time          `json:"earnedAt" bson:"earnedAt"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
}

// CommissionBreakdown sums included amounts per earning type.
type CommissionBreakdown struct {
	DepositCommission    float64 `json:"depositCommission" bson:"depositCommission"`
	BetCommission        float64 `json:"betCommission" bson:"betCommission"`
	WithdrawalCommission float64 `json:"withdrawalCommission" bson:"withdrawalCommission"`
	RegistrationBonus    float64 `json:"registrationBonus" bson:"registrationBonus"`
	CPA                  float64 `json:"cpa" bson:"cpa"`
	Other                float64 `json:"other" bson:"other"`
}

// PayoutFees is the deduction schedule applied to a payout.
type PayoutFees struct {
	ProcessingFee   float64 `json:"processingFee" bson:"processingFee"`
	TransactionFee  float64 `json:"transactionFee" bson:"transactionFee"`
	Tax             float64 `json:"tax" bson:"tax"`
	OtherDeductions float64 `json:"otherDeductions" bson:"otherDeductions"`
}

// Total returns the sum of all deductions.
func (f PayoutFees) Total() float64 {
	return f.ProcessingFee + f.TransactionFee + f.Tax + f.OtherDeductions
}

// Payout is a batch settlement of pending earnings into one disbursement.
// Invariants: netAmount = amount - fees.Total() >= 0, and the included
// earning amounts sum to exactly amount.
type Payout struct {
	ID                      primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	PayoutID                string              `json:"payoutId" bson:"payoutId"`
	AccountID               primitive.ObjectID  `json:"accountId" bson:"accountId"`
	AccountKind             AccountKind         `json:"accountKind" bson:"accountKind"`
	Amount                  float64             `json:"amount" bson:"amount"`
	Currency                string              `json:"currency" bson:"currency"`
	Status                  string              `json:"status" bson:"status"`
	PaymentMethod           string              `json:"paymentMethod" bson:"paymentMethod"`
	PaymentDetails          PaymentDetails      `json:"paymentDetails" bson:"paymentDetails"`
	IncludedEarnings        []IncludedEarning   `json:"includedEarnings" bson:"includedEarnings"`
	Breakdown               CommissionBreakdown `json:"commissionBreakdown" bson:"commissionBreakdown"`
	Fees                    PayoutFees          `json:"fees" bson:"fees"`
	NetAmount               float64             `json:"netAmount" bson:"netAmount"`
	TransactionRef          string              `json:"transactionRef,omitempty" bson:"transactionRef,omitempty"`
	Notes                   string              `json:"notes,omitempty" bson:"notes,omitempty"`
	FailureReason           string              `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	CancellationReason      string              `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	RequestedAt             time.Time           `json:"requestedAt" bson:"requestedAt"`
	ProcessedAt             *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CompletedAt             *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	EstimatedCompletionDate *time.Time          `json:"estimatedCompletionDate,omitempty" bson:"estimatedCompletionDate,omitempty"`
	RetryAttempt            int                 `json:"retryAttempt" bson:"retryAttempt"`
	MaxRetries              int                 `json:"maxRetries" bson:"maxRetries"`
	AffiliateNotified       bool                `json:"affiliateNotified" bson:"affiliateNotified"`
	AdminNotified           bool                `json:"adminNotified" bson:"adminNotified"`
}

// CanTransition reports whether a payout may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case PayoutStatusPending:
		return to == PayoutStatusProcessing || to == PayoutStatusCancelled
	case PayoutStatusProcessing:
		return to == PayoutStatusCompleted || to == PayoutStatusFailed || to == PayoutStatusCancelled
	case PayoutStatusFailed:
		return to == PayoutStatusPending
	default:
		return false
	}
}
