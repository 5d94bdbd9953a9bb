package models

// RegistrationEvent is the callback sent by the betting platform when a
// referred user completes registration. Cid carries the referral code used
// at signup; Txid is the platform's user ID.
type RegistrationEvent struct {
	Cid    string `json:"cid"`
	Status string `json:"status"`
	Txid   string `json:"txid"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// DepositEvent is the callback sent when a referred user deposits.
// Type distinguishes "first deposit" from subsequent deposits.
type DepositEvent struct {
	UserID        string  `json:"userId"`
	DepositID     string  `json:"depositId"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	AffiliateCode string  `json:"affiliateCode"`
	Type          string  `json:"type"`
}

// BetEvent is the callback sent when a referred user places a bet.
type BetEvent struct {
	UserID   string  `json:"userId"`
	BetID    string  `json:"betId"`
	Amount   float64 `json:"amount"`
	BetType  string  `json:"betType"`
	GameType string  `json:"gameType"`
}

// FirstDepositType is the deposit event type that triggers the 100% first
// deposit commission instead of the rate-based formula.
const FirstDepositType = "first deposit"
