package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrContractNotFound         = errors.New("installment contract not found")
	ErrContractAmountInvalid    = errors.New("contract total amount must be positive")
	ErrContractAmountOutOfRange = errors.New("financed amount is outside the plan's allowed range")
	ErrContractGuarantorMissing = errors.New("plan requires a guarantor")
	ErrContractNotDraft         = errors.New("contract is not in draft status")
	ErrContractNotPayable       = errors.New("contract does not accept payments in its current status")
	ErrContractClosed           = errors.New("contract is already completed or cancelled")
)

// ContractStatus is the lifecycle state of an installment contract.
// draft -> active -> {completed, defaulted, cancelled}; defaulted may return to
// active when cured. completed and cancelled are terminal.
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusDefaulted ContractStatus = "defaulted"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// InstallmentContract is one customer's financed purchase. Plan terms are
// copied onto the contract at origination so later plan edits never change
// an existing contract's amortization.
type InstallmentContract struct {
	ID         int32     `json:"id"`
	StoreID    int32     `json:"storeId"`
	CustomerID uuid.UUID `json:"customerId"`
	PlanID     int32     `json:"planId"`

	// Terms snapshotted from the plan at origination
	NumberOfInstallments int32           `json:"numberOfInstallments"`
	AnnualInterestRate   decimal.Decimal `json:"annualInterestRate"`
	DownPaymentPercent   decimal.Decimal `json:"downPaymentPercent"`
	ProcessingFee        decimal.Decimal `json:"processingFee"`

	TotalAmount    decimal.Decimal `json:"totalAmount"`
	DownPayment    decimal.Decimal `json:"downPayment"`
	FinancedAmount decimal.Decimal `json:"financedAmount"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`

	GuarantorName *string        `json:"guarantorName,omitempty"`
	Status        ContractStatus `json:"status"`
	OriginatedAt  time.Time      `json:"originatedAt"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	CancelledAt   *time.Time     `json:"cancelledAt,omitempty"`
}

func (c *InstallmentContract) Validate() error {
	if c.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrContractAmountInvalid
	}
	if c.NumberOfInstallments < 1 {
		return ErrPlanInstallmentsInvalid
	}
	return nil
}

// InstallmentContractRepository defines the interface for contract persistence operations
type InstallmentContractRepository interface {
	CreateTx(tx any, contract *InstallmentContract) (*InstallmentContract, error)
	GetByID(storeID int32, id int32) (*InstallmentContract, error)
	GetAllByStore(storeID int32) ([]*InstallmentContract, error)
	GetByCustomer(storeID int32, customerID uuid.UUID) ([]*InstallmentContract, error)
	UpdateStatus(storeID int32, id int32, status ContractStatus, at time.Time) error
	UpdateStatusTx(tx any, id int32, status ContractStatus, at time.Time) error
}
