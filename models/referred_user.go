package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claim statuses for a referred user. Transitions move in one direction only:
// unclaimed -> pending when the registration bonus is granted, and
// pending -> claimed on the first qualifying deposit.
const (
	ClaimStatusUnclaimed = "unclaimed"
	ClaimStatusPending   = "pending"
	ClaimStatusClaimed   = "claimed"
)

// ReferredUser is the per-referred-user rollup owned by one account. It keys
// commission activity by the betting platform's external user ID.
type ReferredUser struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AccountID       primitive.ObjectID `json:"accountId" bson:"accountId"`
	AccountKind     AccountKind        `json:"accountKind" bson:"accountKind"`
	UserID          string             `json:"userId" bson:"userId"`
	Email           string             `json:"email,omitempty" bson:"email,omitempty"`
	Name            string             `json:"name,omitempty" bson:"name,omitempty"`
	ClaimStatus     string             `json:"claimStatus" bson:"claimStatus"`
	TotalCommission float64            `json:"totalCommission" bson:"totalCommission"`
	FirstSeenAt     time.Time          `json:"firstSeenAt" bson:"firstSeenAt"`
	LastActivityAt  time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
}
