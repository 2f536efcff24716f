package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// ScheduleEntry is one row of an amortization schedule
type ScheduleEntry struct {
	InstallmentNumber int32           `json:"installmentNumber"`
	Payment           decimal.Decimal `json:"payment"`
	Principal         decimal.Decimal `json:"principal"`
	Interest          decimal.Decimal `json:"interest"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
}

// AmortizationSchedule is the full payment plan for a financed amount
type AmortizationSchedule struct {
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	Entries        []ScheduleEntry `json:"entries"`
}

var (
	decimalHundred = decimal.NewFromInt(100)
	decimalTwelve  = decimal.NewFromInt(12)
)

// CalculateMonthlyPayment returns the fixed monthly payment for a principal
// amortized over n months at the given annual percentage rate, using the
// standard annuity formula. A zero rate splits the principal evenly.
func CalculateMonthlyPayment(principal, annualRatePercent decimal.Decimal, installments int32) (decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) || annualRatePercent.IsNegative() || installments < 1 {
		return decimal.Zero, domain.ErrAmortizationInputInvalid
	}

	n := decimal.NewFromInt32(installments)
	if annualRatePercent.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	monthlyRate := annualRatePercent.Div(decimalHundred).Div(decimalTwelve)
	rate, _ := monthlyRate.Float64()
	factor := math.Pow(1+rate, float64(installments))
	if math.IsInf(factor, 0) || factor-1 == 0 {
		return decimal.Zero, domain.ErrDegenerateAmortization
	}

	factorDec := decimal.NewFromFloat(factor)
	payment := principal.Mul(monthlyRate).Mul(factorDec).Div(factorDec.Sub(decimal.NewFromInt(1)))
	return payment.Round(2), nil
}

// ComputeAmortizationSchedule builds the per-installment breakdown of
// principal and interest. Each month's interest is the rate applied to the
// remaining balance; the final installment pays the balance off exactly, so
// rounding residue never leaks past the last row.
func ComputeAmortizationSchedule(principal, annualRatePercent decimal.Decimal, installments int32) (*AmortizationSchedule, error) {
	payment, err := CalculateMonthlyPayment(principal, annualRatePercent, installments)
	if err != nil {
		return nil, err
	}

	monthlyRate := decimal.Zero
	if !annualRatePercent.IsZero() {
		monthlyRate = annualRatePercent.Div(decimalHundred).Div(decimalTwelve)
	}

	entries := make([]ScheduleEntry, 0, installments)
	balance := principal
	totalPaid := decimal.Zero
	totalInterest := decimal.Zero

	for i := int32(1); i <= installments; i++ {
		interest := balance.Mul(monthlyRate).Round(2)

		var principalPortion, rowPayment decimal.Decimal
		if i == installments {
			principalPortion = balance
			rowPayment = principalPortion.Add(interest)
		} else {
			principalPortion = payment.Sub(interest)
			rowPayment = payment
		}

		balance = balance.Sub(principalPortion)
		totalPaid = totalPaid.Add(rowPayment)
		totalInterest = totalInterest.Add(interest)

		entries = append(entries, ScheduleEntry{
			InstallmentNumber: i,
			Payment:           rowPayment,
			Principal:         principalPortion,
			Interest:          interest,
			RemainingBalance:  balance,
		})
	}

	return &AmortizationSchedule{
		MonthlyPayment: payment,
		TotalPaid:      totalPaid,
		TotalInterest:  totalInterest,
		Entries:        entries,
	}, nil
}
