package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubAffiliateLink ties an affiliate to its upstream master. Custom rates,
// when set, take precedence over the affiliate's own rates for events
// attributed through this link.
type SubAffiliateLink struct {
	AffiliateID          primitive.ObjectID `json:"affiliateId" bson:"affiliateId"`
	CustomCommissionRate *float64           `json:"customCommissionRate,omitempty" bson:"customCommissionRate,omitempty"`
	CustomDepositRate    *float64           `json:"customDepositRate,omitempty" bson:"customDepositRate,omitempty"`
	Status               string             `json:"status" bson:"status"`
	TotalEarned          float64            `json:"totalEarned" bson:"totalEarned"`
	JoinedAt             time.Time          `json:"joinedAt" bson:"joinedAt"`
}

// MasterAffiliate is an upper-tier account that aggregates sub-affiliates and
// earns an override commission on their activity.
type MasterAffiliate struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName       string             `json:"fullName" bson:"fullName"`
	Email          string             `json:"email" bson:"email"`
	PhoneNumber    string             `json:"phoneNumber" bson:"phoneNumber"`
	Password       string             `json:"-" bson:"password"`
	Status         string             `json:"status" bson:"status"`
	ReferralCode   string             `json:"referralCode" bson:"referralCode"` // MAST-prefixed
	CustomCode     string             `json:"customCode,omitempty" bson:"customCode,omitempty"`
	CommissionRate float64            `json:"commissionRate" bson:"commissionRate"`
	DepositRate    float64            `json:"depositRate" bson:"depositRate"` // % of a sub-affiliate's commission
	CPARate        float64            `json:"cpaRate" bson:"cpaRate"`
	SubAffiliates  []SubAffiliateLink `json:"subAffiliates,omitempty" bson:"subAffiliates,omitempty"`
	Balance        Balance            `json:"balance" bson:"balance"`
	ReferralCount  int                `json:"referralCount" bson:"referralCount"`
	MinimumPayout  float64            `json:"minimumPayout" bson:"minimumPayout"`
	PaymentMethod  string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentDetails PaymentDetails     `json:"paymentDetails" bson:"paymentDetails"`
	LastPayoutDate *time.Time         `json:"lastPayoutDate,omitempty" bson:"lastPayoutDate,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LinkFor returns the sub-affiliate link for the given affiliate, if present.
func (m *MasterAffiliate) LinkFor(affiliateID primitive.ObjectID) *SubAffiliateLink {
	for i := range m.SubAffiliates {
		if m.SubAffiliates[i].AffiliateID == affiliateID {
			return &m.SubAffiliates[i]
		}
	}
	return nil
}
