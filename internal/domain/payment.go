package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInstallmentNotFound    = errors.New("installment not found")
	ErrPaymentAlreadyRecorded = errors.New("payment already recorded for this installment")
	ErrPaymentAmountInvalid   = errors.New("payment amount must be positive")
	ErrMalformedSchedule      = errors.New("payment schedule is malformed")
)

// PaymentStatus is the derived state of a single installment. Only paid is
// persisted; overdue is always recomputed from the due date and the clock.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// InstallmentPayment is one scheduled installment of a contract
type InstallmentPayment struct {
	ID                int32           `json:"id"`
	ContractID        int32           `json:"contractId"`
	InstallmentNumber int32           `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	PrincipalPortion  decimal.Decimal `json:"principalPortion"`
	InterestPortion   decimal.Decimal `json:"interestPortion"`
	Paid              bool            `json:"paid"`
	PaidDate          *time.Time      `json:"paidDate,omitempty"`
	LateFeePaid       decimal.Decimal `json:"lateFeePaid"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// IsOverdueAt reports whether the payment is unpaid with a due date strictly
// in the past. A payment due today is not overdue.
func (p *InstallmentPayment) IsOverdueAt(now time.Time) bool {
	if p.Paid {
		return false
	}
	due := p.DueDate.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	return due.Before(today)
}

// StatusAt returns the derived status of the payment at the given time
func (p *InstallmentPayment) StatusAt(now time.Time) PaymentStatus {
	if p.Paid {
		return PaymentStatusPaid
	}
	if p.IsOverdueAt(now) {
		return PaymentStatusOverdue
	}
	return PaymentStatusPending
}

// OverdueNotice is one row returned by the overdue sweep query: an unpaid
// installment joined with its contract and customer.
type OverdueNotice struct {
	StoreID           int32
	ContractID        int32
	InstallmentNumber int32
	DueDate           time.Time
	Amount            decimal.Decimal
	CustomerName      string
	CustomerEmail     *string
}

// InstallmentPaymentRepository defines the interface for payment persistence operations
type InstallmentPaymentRepository interface {
	CreateBatchTx(tx any, payments []*InstallmentPayment) error
	GetByContractID(contractID int32) ([]*InstallmentPayment, error)
	GetByStore(storeID int32) (map[int32][]*InstallmentPayment, error)
	GetByContractAndNumber(contractID int32, installmentNumber int32) (*InstallmentPayment, error)
	MarkPaidTx(tx any, id int32, paidDate time.Time, lateFee, amountPaid decimal.Decimal) error
	GetNewlyOverdue(asOf time.Time, window time.Duration) ([]*OverdueNotice, error)
	SumCollectedSince(storeID int32, since time.Time) (decimal.Decimal, error)
}
