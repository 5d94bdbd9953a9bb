package services

import (
	"testing"

	"github.com/betzone/affiliate_backend/models"
)

func TestOverrideTerms(t *testing.T) {
	master := &models.MasterAffiliate{
		CPARate:     20,
		DepositRate: 5,
	}

	tests := []struct {
		name       string
		source     models.Earning
		wantAmount float64
		wantRate   float64
	}{
		{
			name:       "registration pays flat cpa at unit rate",
			source:     models.Earning{Type: models.EarningTypeRegistration, Amount: 50},
			wantAmount: 20,
			wantRate:   1,
		},
		{
			name:       "deposit pays share of the affiliate commission",
			source:     models.Earning{Type: models.EarningTypeDeposit, Amount: 100},
			wantAmount: 5,
			wantRate:   5,
		},
		{
			name:       "bet carries no override",
			source:     models.Earning{Type: models.EarningTypeBet, Amount: 100},
			wantAmount: 0,
			wantRate:   0,
		},
		{
			name:       "withdrawal carries no override",
			source:     models.Earning{Type: models.EarningTypeWithdrawal, Amount: 100},
			wantAmount: 0,
			wantRate:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, rate := overrideTerms(master, &tt.source)
			if amount != tt.wantAmount || rate != tt.wantRate {
				t.Errorf("overrideTerms(%s) = (%v, %v), want (%v, %v)",
					tt.source.Type, amount, rate, tt.wantAmount, tt.wantRate)
			}
		})
	}
}

func TestOverrideTermsZeroRates(t *testing.T) {
	master := &models.MasterAffiliate{}

	for _, typ := range []string{models.EarningTypeRegistration, models.EarningTypeDeposit} {
		amount, _ := overrideTerms(master, &models.Earning{Type: typ, Amount: 100})
		if amount != 0 {
			t.Errorf("unset master rates must yield no %s override, got %v", typ, amount)
		}
	}
}
