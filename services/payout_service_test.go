package services

import (
	"testing"

	"github.com/betzone/affiliate_backend/models"
)

func TestCheckRetryBudget(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		attempt int
		max     int
		want    error
	}{
		{"failed with budget left", models.PayoutStatusFailed, 0, 3, nil},
		{"failed on last attempt", models.PayoutStatusFailed, 2, 3, nil},
		{"failed budget spent", models.PayoutStatusFailed, 3, 3, ErrRetryExhausted},
		{"failed over budget", models.PayoutStatusFailed, 4, 3, ErrRetryExhausted},
		{"pending not retryable", models.PayoutStatusPending, 0, 3, ErrInvalidTransition},
		{"processing not retryable", models.PayoutStatusProcessing, 0, 3, ErrInvalidTransition},
		{"completed not retryable", models.PayoutStatusCompleted, 0, 3, ErrInvalidTransition},
		{"cancelled not retryable", models.PayoutStatusCancelled, 0, 3, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payout := &models.Payout{
				Status:       tt.status,
				RetryAttempt: tt.attempt,
				MaxRetries:   tt.max,
			}
			if got := checkRetryBudget(payout); got != tt.want {
				t.Errorf("checkRetryBudget(%s, attempt %d/%d) = %v, want %v",
					tt.status, tt.attempt, tt.max, got, tt.want)
			}
		})
	}
}
