package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPlanNotFound             = errors.New("installment plan not found")
	ErrPlanNameEmpty            = errors.New("plan name is required")
	ErrPlanNameTooLong          = errors.New("plan name must be 200 characters or less")
	ErrPlanInstallmentsInvalid  = errors.New("number of installments must be at least 1")
	ErrPlanInterestRateInvalid  = errors.New("annual interest rate must not be negative")
	ErrPlanDownPaymentInvalid   = errors.New("down payment percent must be between 0 and 100")
	ErrPlanProcessingFeeInvalid = errors.New("processing fee must not be negative")
	ErrPlanAmountRangeInvalid   = errors.New("minimum financeable amount must not exceed maximum")
	ErrPlanInactive             = errors.New("installment plan is not active")
)

// InstallmentPlan is a reusable template for installment contracts.
// Contracts snapshot the plan's terms at origination, so editing a plan
// only affects contracts created afterwards.
type InstallmentPlan struct {
	ID                   int32           `json:"id"`
	StoreID              int32           `json:"storeId"`
	Name                 string          `json:"name"`
	NumberOfInstallments int32           `json:"numberOfInstallments"`
	AnnualInterestRate   decimal.Decimal `json:"annualInterestRate"` // percent
	DownPaymentPercent   decimal.Decimal `json:"downPaymentPercent"`
	ProcessingFee        decimal.Decimal `json:"processingFee"`
	MinAmount            decimal.Decimal `json:"minAmount"`
	MaxAmount            decimal.Decimal `json:"maxAmount"`
	RequiresGuarantor    bool            `json:"requiresGuarantor"`
	Active               bool            `json:"active"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (p *InstallmentPlan) Validate() error {
	if p.Name == "" {
		return ErrPlanNameEmpty
	}
	if len(p.Name) > MaxPlanNameLength {
		return ErrPlanNameTooLong
	}
	if p.NumberOfInstallments < 1 {
		return ErrPlanInstallmentsInvalid
	}
	if p.AnnualInterestRate.IsNegative() {
		return ErrPlanInterestRateInvalid
	}
	if p.DownPaymentPercent.IsNegative() || p.DownPaymentPercent.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPlanDownPaymentInvalid
	}
	if p.ProcessingFee.IsNegative() {
		return ErrPlanProcessingFeeInvalid
	}
	if p.MinAmount.GreaterThan(p.MaxAmount) {
		return ErrPlanAmountRangeInvalid
	}
	return nil
}

// InstallmentPlanRepository defines the interface for plan persistence operations
type InstallmentPlanRepository interface {
	Create(plan *InstallmentPlan) (*InstallmentPlan, error)
	GetByID(storeID int32, id int32) (*InstallmentPlan, error)
	GetAllByStore(storeID int32) ([]*InstallmentPlan, error)
	GetActiveByStore(storeID int32) ([]*InstallmentPlan, error)
	Update(plan *InstallmentPlan) (*InstallmentPlan, error)
	Deactivate(storeID int32, id int32) error
}
