package services

import (
	"testing"

	"github.com/betzone/affiliate_backend/models"
)

func TestCalculateFees(t *testing.T) {
	tests := []struct {
		name               string
		amount             float64
		method             string
		wantProcessingFee  float64
		wantTransactionFee float64
	}{
		{"mpesa percentage", 1000, models.PaymentMethodMpesa, 15, 0},
		{"mpesa hits cap", 5000, models.PaymentMethodMpesa, 25, 0},
		{"tigopesa small amount", 100, models.PaymentMethodTigoPesa, 1.5, 0},
		{"airtel money at cap boundary", 1666.67, models.PaymentMethodAirtelMoney, 25, 0},
		{"exchange wallet", 1000, models.PaymentMethodExchangeWallet, 0, 10},
		{"crypto", 1000, models.PaymentMethodCrypto, 0, 20},
		{"bank transfer flat", 1000, models.PaymentMethodBankTransfer, 50, 0},
		{"bank transfer flat regardless of amount", 100000, models.PaymentMethodBankTransfer, 50, 0},
		{"unknown method", 1000, models.PaymentMethodOther, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees := CalculateFees(tt.amount, tt.method)
			if fees.ProcessingFee != tt.wantProcessingFee {
				t.Errorf("ProcessingFee = %v, want %v", fees.ProcessingFee, tt.wantProcessingFee)
			}
			if fees.TransactionFee != tt.wantTransactionFee {
				t.Errorf("TransactionFee = %v, want %v", fees.TransactionFee, tt.wantTransactionFee)
			}
			if fees.Tax != 0 || fees.OtherDeductions != 0 {
				t.Errorf("Tax = %v, OtherDeductions = %v, want both zero", fees.Tax, fees.OtherDeductions)
			}
		})
	}
}

func TestCalculateFeesTotalNeverExceedsAmount(t *testing.T) {
	methods := []string{
		models.PaymentMethodMpesa,
		models.PaymentMethodTigoPesa,
		models.PaymentMethodAirtelMoney,
		models.PaymentMethodExchangeWallet,
		models.PaymentMethodCrypto,
		models.PaymentMethodOther,
	}

	for _, method := range methods {
		for _, amount := range []float64{100, 1000, 50000} {
			fees := CalculateFees(amount, method)
			if fees.Total() > amount {
				t.Errorf("fees %v exceed amount %v for method %s", fees.Total(), amount, method)
			}
		}
	}
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.004, 1.0},
		{1.006, 1.01},
		{0.1 + 0.2, 0.3},
		{99.999, 100},
		{15.0, 15.0},
	}

	for _, tt := range tests {
		if got := roundMoney(tt.in); got != tt.want {
			t.Errorf("roundMoney(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCommissionAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		rate   float64
		want   float64
	}{
		{"deposit at 10 percent", 1000, 10, 100},
		{"override share of commission", 100, 5, 5},
		{"full rate passes amount through", 1000, 100, 1000},
		{"zero rate yields nothing", 1000, 0, 0},
		{"fractional result rounds to cents", 333.33, 7.5, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commissionAmount(tt.amount, tt.rate); got != tt.want {
				t.Errorf("commissionAmount(%v, %v) = %v, want %v", tt.amount, tt.rate, got, tt.want)
			}
		})
	}
}
