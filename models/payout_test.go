package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{PayoutStatusPending, PayoutStatusProcessing, true},
		{PayoutStatusPending, PayoutStatusCancelled, true},
		{PayoutStatusPending, PayoutStatusCompleted, false},
		{PayoutStatusPending, PayoutStatusFailed, false},
		{PayoutStatusProcessing, PayoutStatusCompleted, true},
		{PayoutStatusProcessing, PayoutStatusFailed, true},
		{PayoutStatusProcessing, PayoutStatusCancelled, true},
		{PayoutStatusProcessing, PayoutStatusPending, false},
		{PayoutStatusFailed, PayoutStatusPending, true},
		{PayoutStatusFailed, PayoutStatusProcessing, false},
		{PayoutStatusFailed, PayoutStatusCompleted, false},
		{PayoutStatusCompleted, PayoutStatusPending, false},
		{PayoutStatusCompleted, PayoutStatusProcessing, false},
		{PayoutStatusCancelled, PayoutStatusPending, false},
		{"bogus", PayoutStatusPending, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPayoutFeesTotal(t *testing.T) {
	fees := PayoutFees{
		ProcessingFee:   10,
		TransactionFee:  5,
		Tax:             2.5,
		OtherDeductions: 1,
	}
	if got := fees.Total(); got != 18.5 {
		t.Errorf("Total() = %v, want 18.5", got)
	}

	var empty PayoutFees
	if got := empty.Total(); got != 0 {
		t.Errorf("empty Total() = %v, want 0", got)
	}
}
