package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// ComputeLateFee returns the fee owed on an installment at the given time.
// The fee accrues per full calendar day past the due date and is capped at
// CapPercent of the installment amount. Paid or current installments owe
// nothing.
func ComputeLateFee(payment *domain.InstallmentPayment, now time.Time, policy domain.LateFeePolicy) decimal.Decimal {
	if payment.Paid || !payment.IsOverdueAt(now) {
		return decimal.Zero
	}

	due := payment.DueDate.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	daysPastDue := int64(today.Sub(due) / (24 * time.Hour))

	fee := payment.Amount.
		Mul(policy.DailyRatePercent).
		Div(decimalHundred).
		Mul(decimal.NewFromInt(daysPastDue))

	cap := payment.Amount.Mul(policy.CapPercent).Div(decimalHundred)
	if fee.GreaterThan(cap) {
		fee = cap
	}
	return fee.Round(2)
}
