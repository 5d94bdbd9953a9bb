package services

import "errors"

// Sentinel errors surfaced by the ledger, resolver and payout services.
// Controllers map these onto HTTP responses; none of them indicate a system
// fault except ErrConcurrencyConflict, which is retried internally first.
var (
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidRate           = errors.New("commission rate must be between 0 and 100")
	ErrCodeNotFound          = errors.New("no active account matches the referral code")
	ErrPayoutNotFound        = errors.New("payout not found")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountNotActive      = errors.New("account is not active")
	ErrBelowMinimum          = errors.New("requested amount is below the minimum payout threshold")
	ErrInsufficientBalance   = errors.New("requested amount exceeds pending earnings")
	ErrMissingPaymentDetails = errors.New("payment method is missing required details")
	ErrNegativeNetAmount     = errors.New("fees exceed the requested payout amount")
	ErrInvalidTransition     = errors.New("payout status transition not allowed")
	ErrRetryExhausted        = errors.New("payout retry attempts exhausted")
	ErrConcurrencyConflict   = errors.New("concurrent modification detected")
)
