package services

import (
	"math"

	"github.com/betzone/affiliate_backend/models"
)

// mobileMoneyFeeCap is the maximum processing fee charged on mobile money
// payouts, in payout currency units.
const mobileMoneyFeeCap = 25.0

// CalculateFees returns the deduction schedule for a payout amount and
// payment method. Tax and other deductions are extension points and stay
// zero here.
func CalculateFees(amount float64, paymentMethod string) models.PayoutFees {
	var fees models.PayoutFees

	switch paymentMethod {
	case models.PaymentMethodMpesa, models.PaymentMethodTigoPesa, models.PaymentMethodAirtelMoney:
		fees.ProcessingFee = roundMoney(math.Min(amount*0.015, mobileMoneyFeeCap))
	case models.PaymentMethodExchangeWallet:
		fees.TransactionFee = roundMoney(amount * 0.01)
	case models.PaymentMethodCrypto:
		fees.TransactionFee = roundMoney(amount * 0.02)
	case models.PaymentMethodBankTransfer:
		fees.ProcessingFee = 50
	default:
		fees.ProcessingFee = roundMoney(amount * 0.02)
	}

	return fees
}

// roundMoney rounds to two decimal places.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// commissionAmount applies a percentage rate to a source amount.
func commissionAmount(sourceAmount, rate float64) float64 {
	return roundMoney(sourceAmount * rate / 100)
}
