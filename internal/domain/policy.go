package domain

import "github.com/shopspring/decimal"

// DefaultPolicy controls when an active contract is considered defaulted.
// A contract defaults when either threshold is crossed; it is re-derived on
// every read, so curing the arrears moves it back when ReinstateCured is set.
type DefaultPolicy struct {
	// MaxOverdueInstallments is the number of simultaneously overdue
	// installments tolerated before default. Crossing it (strictly more
	// overdue installments than this) defaults the contract.
	MaxOverdueInstallments int32

	// MaxOverdueFraction defaults the contract when the overdue amount
	// exceeds this fraction of the financed amount.
	MaxOverdueFraction decimal.Decimal

	// ReinstateCured returns a defaulted contract to active once the
	// arrears drop back under both thresholds.
	ReinstateCured bool
}

// LateFeePolicy controls the fee charged on overdue installments.
// The fee accrues per full day past due and is capped relative to the
// installment amount.
type LateFeePolicy struct {
	DailyRatePercent decimal.Decimal
	CapPercent       decimal.Decimal
}
