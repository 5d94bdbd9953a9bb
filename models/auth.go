// models/auth.go

package models

// Response is the standard JSON envelope returned by all handlers.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type SignupRequest struct {
	FullName      string  `json:"fullName" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8"`
	PhoneNumber   string  `json:"phoneNumber,omitempty"`
	AccountType   string  `json:"accountType"` // "affiliate" or "master_affiliate"
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	MinimumPayout float64 `json:"minimumPayout,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PaymentDetailsRequest struct {
	PaymentMethod  string         `json:"paymentMethod" validate:"required"`
	PaymentDetails PaymentDetails `json:"paymentDetails" validate:"required"`
	MinimumPayout  float64        `json:"minimumPayout,omitempty"`
}

type PayoutRequest struct {
	Amount float64 `json:"amount,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}
