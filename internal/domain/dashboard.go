package domain

import "github.com/shopspring/decimal"

// StoreSummary aggregates a store's portfolio for the dashboard. Every
// figure is derived at read time; nothing here is persisted.
type StoreSummary struct {
	ActiveContracts    int32           `json:"activeContracts"`
	CompletedContracts int32           `json:"completedContracts"`
	DefaultedContracts int32           `json:"defaultedContracts"`
	TotalFinanced      decimal.Decimal `json:"totalFinanced"`
	TotalOutstanding   decimal.Decimal `json:"totalOutstanding"`
	TotalOverdue       decimal.Decimal `json:"totalOverdue"`
	OverdueInstallments int32          `json:"overdueInstallments"`
	CollectedThisMonth decimal.Decimal `json:"collectedThisMonth"`
}
