package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// ContractStatusResult is the derived state of a contract at a point in time.
// OverduePayments holds the past-due rows ordered by due date ascending.
type ContractStatusResult struct {
	Status              domain.ContractStatus        `json:"status"`
	PaidInstallments    int32                        `json:"paidInstallments"`
	OverdueInstallments int32                        `json:"overdueInstallments"`
	OverdueAmount       decimal.Decimal              `json:"overdueAmount"`
	RemainingBalance    decimal.Decimal              `json:"remainingBalance"`
	OverduePayments     []*domain.InstallmentPayment `json:"overduePayments"`
}

// DeriveContractStatus recomputes a contract's status from its payment rows.
// Status is never trusted from storage alone: overdue and defaulted are
// functions of the clock, so the persisted value only matters for the
// administrative states (draft, cancelled) and for default stickiness.
// RemainingBalance sums the full amount of every unpaid installment plus the
// late fee accrued on it at now, not the principal portion alone.
func DeriveContractStatus(contract *domain.InstallmentContract, payments []*domain.InstallmentPayment, now time.Time, policy domain.DefaultPolicy, lateFeePolicy domain.LateFeePolicy) (*ContractStatusResult, error) {
	result := &ContractStatusResult{
		Status:           contract.Status,
		OverdueAmount:    decimal.Zero,
		RemainingBalance: decimal.Zero,
	}

	// Administrative states are never overridden by derivation
	if contract.Status == domain.ContractStatusCancelled || contract.Status == domain.ContractStatusDraft {
		for _, p := range payments {
			if !p.Paid {
				result.RemainingBalance = result.RemainingBalance.
					Add(p.Amount).
					Add(ComputeLateFee(p, now, lateFeePolicy))
			}
		}
		return result, nil
	}

	if err := validateSchedule(contract, payments); err != nil {
		return nil, err
	}

	var overdueCount int32
	var overduePayments []*domain.InstallmentPayment
	overdueAmount := decimal.Zero
	remaining := decimal.Zero
	allPaid := true

	for _, p := range payments {
		if p.Paid {
			result.PaidInstallments++
			continue
		}
		allPaid = false
		remaining = remaining.Add(p.Amount).Add(ComputeLateFee(p, now, lateFeePolicy))
		if p.IsOverdueAt(now) {
			overdueCount++
			overdueAmount = overdueAmount.Add(p.Amount)
			overduePayments = append(overduePayments, p)
		}
	}

	sort.Slice(overduePayments, func(i, j int) bool {
		return overduePayments[i].DueDate.Before(overduePayments[j].DueDate)
	})

	result.OverdueInstallments = overdueCount
	result.OverdueAmount = overdueAmount
	result.RemainingBalance = remaining
	result.OverduePayments = overduePayments

	if allPaid {
		result.Status = domain.ContractStatusCompleted
		return result, nil
	}

	breached := overdueCount > policy.MaxOverdueInstallments ||
		overdueAmount.GreaterThan(contract.FinancedAmount.Mul(policy.MaxOverdueFraction))

	switch {
	case breached:
		result.Status = domain.ContractStatusDefaulted
	case contract.Status == domain.ContractStatusDefaulted && !policy.ReinstateCured:
		result.Status = domain.ContractStatusDefaulted
	default:
		result.Status = domain.ContractStatusActive
	}
	return result, nil
}

// validateSchedule checks that payment rows cover installments 1..n exactly
// once. Anything else means the stored schedule was corrupted.
func validateSchedule(contract *domain.InstallmentContract, payments []*domain.InstallmentPayment) error {
	if int32(len(payments)) != contract.NumberOfInstallments {
		return domain.ErrMalformedSchedule
	}
	seen := make(map[int32]bool, len(payments))
	for _, p := range payments {
		if p.InstallmentNumber < 1 || p.InstallmentNumber > contract.NumberOfInstallments || seen[p.InstallmentNumber] {
			return domain.ErrMalformedSchedule
		}
		seen[p.InstallmentNumber] = true
	}
	return nil
}
