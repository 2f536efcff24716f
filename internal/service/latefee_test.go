package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

var lateFeeTestPolicy = domain.LateFeePolicy{
	DailyRatePercent: decimal.NewFromFloat(0.1),
	CapPercent:       decimal.NewFromInt(10),
}

func overduePayment(due time.Time, amount decimal.Decimal) *domain.InstallmentPayment {
	return &domain.InstallmentPayment{
		ID:                1,
		ContractID:        1,
		InstallmentNumber: 1,
		DueDate:           due,
		Amount:            amount,
	}
}

func TestComputeLateFee_TenDaysOverdue(t *testing.T) {
	// 100 installment, 0.1% per day, 10 days = 1.00
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 11, 9, 30, 0, 0, time.UTC)

	fee := ComputeLateFee(overduePayment(due, decimal.NewFromInt(100)), now, lateFeeTestPolicy)
	if !fee.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected fee 1.00, got %s", fee.String())
	}
}

func TestComputeLateFee_CappedAtTenPercent(t *testing.T) {
	// 200 days at 0.1%/day would be 20% of the amount; the cap holds it at 10%
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 200)

	fee := ComputeLateFee(overduePayment(due, decimal.NewFromInt(100)), now, lateFeeTestPolicy)
	if !fee.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected capped fee 10.00, got %s", fee.String())
	}
}

func TestComputeLateFee_DueTodayOwesNothing(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)

	fee := ComputeLateFee(overduePayment(due, decimal.NewFromInt(100)), now, lateFeeTestPolicy)
	if !fee.IsZero() {
		t.Errorf("Expected zero fee on the due date, got %s", fee.String())
	}
}

func TestComputeLateFee_FutureDueDateOwesNothing(t *testing.T) {
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	fee := ComputeLateFee(overduePayment(due, decimal.NewFromInt(100)), now, lateFeeTestPolicy)
	if !fee.IsZero() {
		t.Errorf("Expected zero fee before due date, got %s", fee.String())
	}
}

func TestComputeLateFee_PaidOwesNothing(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 30)

	p := overduePayment(due, decimal.NewFromInt(100))
	p.Paid = true
	paidAt := due.AddDate(0, 0, 2)
	p.PaidDate = &paidAt

	fee := ComputeLateFee(p, now, lateFeeTestPolicy)
	if !fee.IsZero() {
		t.Errorf("Expected zero fee on paid installment, got %s", fee.String())
	}
}

func TestComputeLateFee_TimeOfDayIgnored(t *testing.T) {
	// The fee counts whole calendar days; hours within the day never change it
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	morning := time.Date(2026, 1, 4, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2026, 1, 4, 23, 59, 0, 0, time.UTC)

	p := overduePayment(due, decimal.NewFromInt(500))
	feeMorning := ComputeLateFee(p, morning, lateFeeTestPolicy)
	feeEvening := ComputeLateFee(p, evening, lateFeeTestPolicy)

	if !feeMorning.Equal(feeEvening) {
		t.Errorf("Expected same fee all day, got %s and %s", feeMorning.String(), feeEvening.String())
	}
	// 3 days at 0.1% of 500 = 1.50
	if !feeMorning.Equal(decimal.NewFromFloat(1.5)) {
		t.Errorf("Expected fee 1.50, got %s", feeMorning.String())
	}
}
