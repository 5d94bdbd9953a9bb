package services

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/betzone/affiliate_backend/models"
)

func pendingEarning(amount float64, earnedAt time.Time, earningType string) models.Earning {
	return models.Earning{
		ID:          primitive.NewObjectID(),
		Amount:      amount,
		Type:        earningType,
		Status:      models.EarningStatusPending,
		EarnedAt:    earnedAt,
		Description: "test earning",
	}
}

func TestSelectEarningsExactCover(t *testing.T) {
	base := time.Now().Add(-72 * time.Hour)
	records := []models.Earning{
		pendingEarning(50, base, models.EarningTypeDeposit),
		pendingEarning(30, base.Add(time.Hour), models.EarningTypeBet),
		pendingEarning(20, base.Add(2*time.Hour), models.EarningTypeDeposit),
	}

	included, err := selectEarnings(records, 100)
	if err != nil {
		t.Fatalf("selectEarnings: %v", err)
	}
	if len(included) != 3 {
		t.Fatalf("included %d records, want 3", len(included))
	}
	if got := sumIncluded(included); got != 100 {
		t.Errorf("included sum = %v, want 100", got)
	}
	for _, entry := range included {
		if strings.Contains(entry.Description, "(Partial)") {
			t.Errorf("exact cover should not split, got %q", entry.Description)
		}
	}
}

func TestSelectEarningsSplitsLastRecord(t *testing.T) {
	base := time.Now().Add(-72 * time.Hour)
	records := []models.Earning{
		pendingEarning(80, base, models.EarningTypeDeposit),
		pendingEarning(90, base.Add(time.Hour), models.EarningTypeDeposit),
	}

	included, err := selectEarnings(records, 150)
	if err != nil {
		t.Fatalf("selectEarnings: %v", err)
	}
	if len(included) != 2 {
		t.Fatalf("included %d records, want 2", len(included))
	}
	if included[0].Amount != 80 {
		t.Errorf("first slice = %v, want 80 (whole record)", included[0].Amount)
	}
	if included[1].Amount != 70 {
		t.Errorf("second slice = %v, want 70 (partial)", included[1].Amount)
	}
	if !strings.HasSuffix(included[1].Description, "(Partial)") {
		t.Errorf("split entry description %q should end with (Partial)", included[1].Description)
	}
	if got := sumIncluded(included); got != 150 {
		t.Errorf("included sum = %v, want 150", got)
	}

	split := 0
	for _, entry := range included {
		if strings.Contains(entry.Description, "(Partial)") {
			split++
		}
	}
	if split != 1 {
		t.Errorf("got %d split entries, want exactly 1", split)
	}
}

func TestSelectEarningsOldestFirst(t *testing.T) {
	base := time.Now().Add(-72 * time.Hour)
	oldest := pendingEarning(40, base, models.EarningTypeBet)
	newer := pendingEarning(40, base.Add(time.Hour), models.EarningTypeBet)
	records := []models.Earning{oldest, newer}

	included, err := selectEarnings(records, 40)
	if err != nil {
		t.Fatalf("selectEarnings: %v", err)
	}
	if len(included) != 1 {
		t.Fatalf("included %d records, want 1", len(included))
	}
	if included[0].EarningID != oldest.ID {
		t.Errorf("selected record %s, want the oldest %s", included[0].EarningID.Hex(), oldest.ID.Hex())
	}
}

func TestSelectEarningsErrors(t *testing.T) {
	base := time.Now()
	records := []models.Earning{pendingEarning(10, base, models.EarningTypeDeposit)}

	if _, err := selectEarnings(records, 50); err != ErrInsufficientBalance {
		t.Errorf("uncoverable request: err = %v, want ErrInsufficientBalance", err)
	}
	if _, err := selectEarnings(records, 0); err != ErrInvalidAmount {
		t.Errorf("zero request: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := selectEarnings(nil, 10); err != ErrInsufficientBalance {
		t.Errorf("no records: err = %v, want ErrInsufficientBalance", err)
	}
}

func TestBuildBreakdown(t *testing.T) {
	included := []models.IncludedEarning{
		{Amount: 10, Type: models.EarningTypeDeposit},
		{Amount: 20, Type: models.EarningTypeBet},
		{Amount: 5, Type: models.EarningTypeWithdrawal},
		{Amount: 15, Type: models.EarningTypeRegistration},
		{Amount: 25, Type: models.EarningTypeCPA},
		{Amount: 8, Type: models.EarningTypeOverride},
	}

	breakdown := buildBreakdown(included)
	if breakdown.DepositCommission != 10 {
		t.Errorf("DepositCommission = %v, want 10", breakdown.DepositCommission)
	}
	if breakdown.BetCommission != 20 {
		t.Errorf("BetCommission = %v, want 20", breakdown.BetCommission)
	}
	if breakdown.WithdrawalCommission != 5 {
		t.Errorf("WithdrawalCommission = %v, want 5", breakdown.WithdrawalCommission)
	}
	if breakdown.RegistrationBonus != 15 {
		t.Errorf("RegistrationBonus = %v, want 15", breakdown.RegistrationBonus)
	}
	if breakdown.CPA != 25 {
		t.Errorf("CPA = %v, want 25", breakdown.CPA)
	}
	if breakdown.Other != 8 {
		t.Errorf("Other = %v, want 8 (override commission)", breakdown.Other)
	}
}

func TestValidatePaymentDetails(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		details models.PaymentDetails
		wantErr error
	}{
		{"mpesa with phone", models.PaymentMethodMpesa, models.PaymentDetails{PhoneNumber: "+255700000001"}, nil},
		{"mpesa missing phone", models.PaymentMethodMpesa, models.PaymentDetails{}, ErrMissingPaymentDetails},
		{"tigopesa missing phone", models.PaymentMethodTigoPesa, models.PaymentDetails{Email: "a@b.com"}, ErrMissingPaymentDetails},
		{"bank complete", models.PaymentMethodBankTransfer, models.PaymentDetails{AccountNumber: "123", AccountName: "John"}, nil},
		{"bank missing name", models.PaymentMethodBankTransfer, models.PaymentDetails{AccountNumber: "123"}, ErrMissingPaymentDetails},
		{"crypto with wallet", models.PaymentMethodCrypto, models.PaymentDetails{WalletAddress: "0xabc"}, nil},
		{"crypto with email only", models.PaymentMethodCrypto, models.PaymentDetails{Email: "a@b.com"}, nil},
		{"crypto empty", models.PaymentMethodCrypto, models.PaymentDetails{}, ErrMissingPaymentDetails},
		{"exchange wallet empty", models.PaymentMethodExchangeWallet, models.PaymentDetails{}, ErrMissingPaymentDetails},
		{"other method needs nothing", models.PaymentMethodOther, models.PaymentDetails{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validatePaymentDetails(tt.method, tt.details); err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
