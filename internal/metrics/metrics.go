package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the contract lifecycle and collection flow. All are registered
// on the default registry and exposed via /metrics.
var (
	ContractsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_contracts_created_total",
		Help: "Number of installment contracts created",
	}, []string{"store"})

	ContractsActivated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_contracts_activated_total",
		Help: "Number of installment contracts activated",
	}, []string{"store"})

	ContractsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_contracts_cancelled_total",
		Help: "Number of installment contracts cancelled",
	}, []string{"store"})

	InstallmentsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_installments_collected_total",
		Help: "Number of installment payments recorded",
	}, []string{"store"})

	LateFeesCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_late_fees_collected_total",
		Help: "Number of installment payments that carried a late fee",
	}, []string{"store"})

	OverdueNoticesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_overdue_notices_sent_total",
		Help: "Number of overdue notices delivered by the sweep",
	}, []string{"channel"})

	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crediario_overdue_sweep_runs_total",
		Help: "Number of overdue sweep executions",
	})

	SweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crediario_overdue_sweep_errors_total",
		Help: "Number of overdue sweep executions that reported errors",
	})
)
