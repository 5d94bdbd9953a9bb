package services

import (
	"math"

	"github.com/betzone/affiliate_backend/models"
)

// selectEarnings picks pending records oldest first until the running total
// covers the requested amount. The record that would overshoot is split: its
// included entry carries only the remaining partial amount, tagged
// "(Partial)". Returns ErrInsufficientBalance when the records cannot cover
// the request. Callers pass records already sorted by earnedAt ascending.
func selectEarnings(records []models.Earning, requested float64) ([]models.IncludedEarning, error) {
	if requested <= 0 {
		return nil, ErrInvalidAmount
	}

	var included []models.IncludedEarning
	remaining := requested

	for i := range records {
		record := &records[i]
		if remaining <= 0 {
			break
		}

		take := record.Amount
		description := record.Description
		if take > remaining {
			take = remaining
			description = record.Description + " (Partial)"
		}

		included = append(included, models.IncludedEarning{
			EarningID:   record.ID,
			Amount:      roundMoney(take),
			Type:        record.Type,
			EarnedAt:    record.EarnedAt,
			Description: description,
		})
		remaining = roundMoney(remaining - take)
	}

	if remaining > 0 {
		return nil, ErrInsufficientBalance
	}
	return included, nil
}

// buildBreakdown sums included amounts into the six commission buckets.
func buildBreakdown(included []models.IncludedEarning) models.CommissionBreakdown {
	var breakdown models.CommissionBreakdown
	for _, entry := range included {
		switch entry.Type {
		case models.EarningTypeDeposit:
			breakdown.DepositCommission += entry.Amount
		case models.EarningTypeBet:
			breakdown.BetCommission += entry.Amount
		case models.EarningTypeWithdrawal:
			breakdown.WithdrawalCommission += entry.Amount
		case models.EarningTypeRegistration:
			breakdown.RegistrationBonus += entry.Amount
		case models.EarningTypeCPA:
			breakdown.CPA += entry.Amount
		default:
			// override_commission and anything unrecognized
			breakdown.Other += entry.Amount
		}
	}
	return breakdown
}

// validatePaymentDetails checks that the configured method has the fields a
// disbursement needs.
func validatePaymentDetails(method string, details models.PaymentDetails) error {
	switch method {
	case models.PaymentMethodMpesa, models.PaymentMethodTigoPesa, models.PaymentMethodAirtelMoney:
		if details.PhoneNumber == "" {
			return ErrMissingPaymentDetails
		}
	case models.PaymentMethodBankTransfer:
		if details.AccountNumber == "" || details.AccountName == "" {
			return ErrMissingPaymentDetails
		}
	case models.PaymentMethodCrypto, models.PaymentMethodExchangeWallet:
		if details.Email == "" && details.WalletAddress == "" {
			return ErrMissingPaymentDetails
		}
	}
	return nil
}

// sumIncluded returns the total of included earning amounts.
func sumIncluded(included []models.IncludedEarning) float64 {
	var total float64
	for _, entry := range included {
		total += entry.Amount
	}
	return math.Round(total*100) / 100
}
