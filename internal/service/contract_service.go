package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/metrics"
	"github.com/crediario/crediario-backend/internal/tracing"
	"github.com/crediario/crediario-backend/internal/websocket"
)

// ContractService handles installment contract business logic
type ContractService struct {
	pool           *pgxpool.Pool
	contractRepo   domain.InstallmentContractRepository
	paymentRepo    domain.InstallmentPaymentRepository
	planRepo       domain.InstallmentPlanRepository
	customerRepo   domain.CustomerRepository
	defaultPolicy  domain.DefaultPolicy
	lateFeePolicy  domain.LateFeePolicy
	eventPublisher websocket.EventPublisher
	nowFn          func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(
	pool *pgxpool.Pool,
	contractRepo domain.InstallmentContractRepository,
	paymentRepo domain.InstallmentPaymentRepository,
	planRepo domain.InstallmentPlanRepository,
	customerRepo domain.CustomerRepository,
	defaultPolicy domain.DefaultPolicy,
	lateFeePolicy domain.LateFeePolicy,
) *ContractService {
	return &ContractService{
		pool:          pool,
		contractRepo:  contractRepo,
		paymentRepo:   paymentRepo,
		planRepo:      planRepo,
		customerRepo:  customerRepo,
		defaultPolicy: defaultPolicy,
		lateFeePolicy: lateFeePolicy,
		nowFn:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ContractService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source, for tests
func (s *ContractService) SetClock(nowFn func() time.Time) {
	s.nowFn = nowFn
}

func (s *ContractService) publishEvent(storeID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(storeID, event)
	}
}

func storeLabel(storeID int32) string {
	return strconv.FormatInt(int64(storeID), 10)
}

// PreviewContractInput holds the fields for a contract preview
type PreviewContractInput struct {
	PlanID      int32
	TotalAmount decimal.Decimal
}

// ContractPreview is the financing breakdown shown at the counter before
// anything is persisted
type ContractPreview struct {
	TotalAmount    decimal.Decimal       `json:"totalAmount"`
	DownPayment    decimal.Decimal       `json:"downPayment"`
	ProcessingFee  decimal.Decimal       `json:"processingFee"`
	DueAtSigning   decimal.Decimal       `json:"dueAtSigning"`
	FinancedAmount decimal.Decimal       `json:"financedAmount"`
	MonthlyPayment decimal.Decimal       `json:"monthlyPayment"`
	TotalInterest  decimal.Decimal       `json:"totalInterest"`
	Schedule       *AmortizationSchedule `json:"schedule"`
}

// PreviewContract computes the financing terms for an amount under a plan
// without creating anything
func (s *ContractService) PreviewContract(storeID int32, input PreviewContractInput) (*ContractPreview, error) {
	plan, err := s.planRepo.GetByID(storeID, input.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrPlanInactive
	}

	return s.buildPreview(plan, input.TotalAmount)
}

func (s *ContractService) buildPreview(plan *domain.InstallmentPlan, totalAmount decimal.Decimal) (*ContractPreview, error) {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrContractAmountInvalid
	}

	downPayment := totalAmount.Mul(plan.DownPaymentPercent).Div(decimalHundred).Round(2)
	financed := totalAmount.Sub(downPayment)

	if financed.LessThan(plan.MinAmount) || financed.GreaterThan(plan.MaxAmount) {
		return nil, domain.ErrContractAmountOutOfRange
	}

	schedule, err := ComputeAmortizationSchedule(financed, plan.AnnualInterestRate, plan.NumberOfInstallments)
	if err != nil {
		return nil, err
	}

	return &ContractPreview{
		TotalAmount:    totalAmount,
		DownPayment:    downPayment,
		ProcessingFee:  plan.ProcessingFee,
		DueAtSigning:   downPayment.Add(plan.ProcessingFee),
		FinancedAmount: financed,
		MonthlyPayment: schedule.MonthlyPayment,
		TotalInterest:  schedule.TotalInterest,
		Schedule:       schedule,
	}, nil
}

// CreateContractInput holds the fields for originating a contract
type CreateContractInput struct {
	CustomerID    uuid.UUID
	PlanID        int32
	TotalAmount   decimal.Decimal
	GuarantorName *string
}

// CreateContract originates a draft contract and its full payment schedule
// in one transaction. The contract stays in draft until the down payment is
// taken and ActivateContract is called.
func (s *ContractService) CreateContract(ctx context.Context, storeID int32, input CreateContractInput) (*domain.InstallmentContract, error) {
	ctx, span := tracing.Tracer.Start(ctx, "contract.create", trace.WithAttributes(
		attribute.Int("store.id", int(storeID)),
		attribute.Int("plan.id", int(input.PlanID)),
	))
	defer span.End()

	plan, err := s.planRepo.GetByID(storeID, input.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrPlanInactive
	}

	if _, err := s.customerRepo.GetByID(storeID, input.CustomerID); err != nil {
		return nil, err
	}

	if plan.RequiresGuarantor && (input.GuarantorName == nil || *input.GuarantorName == "") {
		return nil, domain.ErrContractGuarantorMissing
	}

	preview, err := s.buildPreview(plan, input.TotalAmount)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	contract := &domain.InstallmentContract{
		StoreID:              storeID,
		CustomerID:           input.CustomerID,
		PlanID:               plan.ID,
		NumberOfInstallments: plan.NumberOfInstallments,
		AnnualInterestRate:   plan.AnnualInterestRate,
		DownPaymentPercent:   plan.DownPaymentPercent,
		ProcessingFee:        plan.ProcessingFee,
		TotalAmount:          input.TotalAmount,
		DownPayment:          preview.DownPayment,
		FinancedAmount:       preview.FinancedAmount,
		MonthlyPayment:       preview.MonthlyPayment,
		GuarantorName:        input.GuarantorName,
		Status:               domain.ContractStatusDraft,
		OriginatedAt:         now,
	}
	if err := contract.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := s.contractRepo.CreateTx(tx, contract)
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.InstallmentPayment, 0, len(preview.Schedule.Entries))
	for _, entry := range preview.Schedule.Entries {
		payments = append(payments, &domain.InstallmentPayment{
			ContractID:        created.ID,
			InstallmentNumber: entry.InstallmentNumber,
			DueDate:           now.AddDate(0, int(entry.InstallmentNumber), 0),
			Amount:            entry.Payment,
			PrincipalPortion:  entry.Principal,
			InterestPortion:   entry.Interest,
		})
	}
	if err := s.paymentRepo.CreateBatchTx(tx, payments); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.ContractsCreated.WithLabelValues(storeLabel(storeID)).Inc()
	s.publishEvent(storeID, websocket.ContractCreated(created))

	log.Info().
		Int32("store_id", storeID).
		Int32("contract_id", created.ID).
		Str("financed", created.FinancedAmount.StringFixed(2)).
		Int32("installments", created.NumberOfInstallments).
		Msg("Contract originated")

	return created, nil
}

// ActivateContract moves a draft contract to active once the down payment
// and processing fee are taken at the counter
func (s *ContractService) ActivateContract(storeID int32, id int32) (*domain.InstallmentContract, error) {
	contract, err := s.contractRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != domain.ContractStatusDraft {
		return nil, domain.ErrContractNotDraft
	}

	now := s.nowFn()
	if err := s.contractRepo.UpdateStatus(storeID, id, domain.ContractStatusActive, now); err != nil {
		return nil, err
	}
	contract.Status = domain.ContractStatusActive
	contract.UpdatedAt = now

	metrics.ContractsActivated.WithLabelValues(storeLabel(storeID)).Inc()
	s.publishEvent(storeID, websocket.ContractActivated(contract))

	log.Info().Int32("store_id", storeID).Int32("contract_id", id).Msg("Contract activated")
	return contract, nil
}

// CancelContract administratively cancels a contract. Completed contracts
// cannot be cancelled; everything else can, and the status is never derived
// back out of cancelled.
func (s *ContractService) CancelContract(storeID int32, id int32) (*domain.InstallmentContract, error) {
	contract, err := s.contractRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}
	if contract.Status == domain.ContractStatusCompleted || contract.Status == domain.ContractStatusCancelled {
		return nil, domain.ErrContractClosed
	}

	now := s.nowFn()
	if err := s.contractRepo.UpdateStatus(storeID, id, domain.ContractStatusCancelled, now); err != nil {
		return nil, err
	}
	contract.Status = domain.ContractStatusCancelled
	contract.CancelledAt = &now
	contract.UpdatedAt = now

	metrics.ContractsCancelled.WithLabelValues(storeLabel(storeID)).Inc()
	s.publishEvent(storeID, websocket.ContractCancelled(contract))

	log.Info().Int32("store_id", storeID).Int32("contract_id", id).Msg("Contract cancelled")
	return contract, nil
}

// ContractWithStatus pairs a contract with its freshly derived state
type ContractWithStatus struct {
	*domain.InstallmentContract
	Derived *ContractStatusResult `json:"derived"`
}

// GetContract retrieves a contract with its status derived from the payment
// rows and the clock. If derivation moved the status, the stored value is
// refreshed so listings converge.
func (s *ContractService) GetContract(storeID int32, id int32) (*ContractWithStatus, error) {
	contract, err := s.contractRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByContractID(contract.ID)
	if err != nil {
		return nil, err
	}

	return s.withDerivedStatus(contract, payments)
}

// GetContracts retrieves all contracts for a store with derived statuses
func (s *ContractService) GetContracts(storeID int32) ([]*ContractWithStatus, error) {
	contracts, err := s.contractRepo.GetAllByStore(storeID)
	if err != nil {
		return nil, err
	}

	paymentsByContract, err := s.paymentRepo.GetByStore(storeID)
	if err != nil {
		return nil, err
	}

	result := make([]*ContractWithStatus, 0, len(contracts))
	for _, c := range contracts {
		withStatus, err := s.withDerivedStatus(c, paymentsByContract[c.ID])
		if err != nil {
			return nil, err
		}
		result = append(result, withStatus)
	}
	return result, nil
}

// GetContractsByCustomer retrieves a customer's contracts with derived statuses
func (s *ContractService) GetContractsByCustomer(storeID int32, customerID uuid.UUID) ([]*ContractWithStatus, error) {
	contracts, err := s.contractRepo.GetByCustomer(storeID, customerID)
	if err != nil {
		return nil, err
	}

	result := make([]*ContractWithStatus, 0, len(contracts))
	for _, c := range contracts {
		payments, err := s.paymentRepo.GetByContractID(c.ID)
		if err != nil {
			return nil, err
		}
		withStatus, err := s.withDerivedStatus(c, payments)
		if err != nil {
			return nil, err
		}
		result = append(result, withStatus)
	}
	return result, nil
}

func (s *ContractService) withDerivedStatus(contract *domain.InstallmentContract, payments []*domain.InstallmentPayment) (*ContractWithStatus, error) {
	now := s.nowFn()
	derived, err := DeriveContractStatus(contract, payments, now, s.defaultPolicy, s.lateFeePolicy)
	if err != nil {
		return nil, err
	}

	if derived.Status != contract.Status {
		if err := s.contractRepo.UpdateStatus(contract.StoreID, contract.ID, derived.Status, now); err != nil {
			log.Warn().Err(err).Int32("contract_id", contract.ID).Msg("Failed to refresh stored contract status")
		} else {
			contract.Status = derived.Status
		}
	}

	return &ContractWithStatus{InstallmentContract: contract, Derived: derived}, nil
}

// InstallmentView is a payment row annotated with its derived status and the
// late fee owed right now
type InstallmentView struct {
	*domain.InstallmentPayment
	Status     domain.PaymentStatus `json:"status"`
	LateFeeDue decimal.Decimal      `json:"lateFeeDue"`
}

// GetInstallments retrieves a contract's payment schedule with derived
// per-installment state
func (s *ContractService) GetInstallments(storeID int32, contractID int32) ([]*InstallmentView, error) {
	if _, err := s.contractRepo.GetByID(storeID, contractID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByContractID(contractID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	views := make([]*InstallmentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, &InstallmentView{
			InstallmentPayment: p,
			Status:             p.StatusAt(now),
			LateFeeDue:         ComputeLateFee(p, now, s.lateFeePolicy),
		})
	}
	return views, nil
}

// CollectResult is the outcome of recording an installment payment
type CollectResult struct {
	Payment        *domain.InstallmentPayment `json:"payment"`
	LateFee        decimal.Decimal            `json:"lateFee"`
	TotalCollected decimal.Decimal            `json:"totalCollected"`
	ContractStatus domain.ContractStatus      `json:"contractStatus"`
}

// CollectInstallment records a payment against one installment. The
// installment amount plus any late fee owed at collection time is taken in
// full; partial payments are not supported. Marking the row paid and
// refreshing the contract status happen in one transaction.
func (s *ContractService) CollectInstallment(ctx context.Context, storeID int32, contractID int32, installmentNumber int32) (*CollectResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "contract.collect_installment", trace.WithAttributes(
		attribute.Int("store.id", int(storeID)),
		attribute.Int("contract.id", int(contractID)),
		attribute.Int("installment.number", int(installmentNumber)),
	))
	defer span.End()

	contract, err := s.contractRepo.GetByID(storeID, contractID)
	if err != nil {
		return nil, err
	}

	switch contract.Status {
	case domain.ContractStatusActive, domain.ContractStatusDefaulted:
		// payable
	case domain.ContractStatusDraft:
		return nil, domain.ErrContractNotPayable
	default:
		return nil, domain.ErrContractClosed
	}

	payment, err := s.paymentRepo.GetByContractAndNumber(contractID, installmentNumber)
	if err != nil {
		return nil, err
	}
	if payment.Paid {
		return nil, domain.ErrPaymentAlreadyRecorded
	}

	now := s.nowFn()
	lateFee := ComputeLateFee(payment, now, s.lateFeePolicy)
	total := payment.Amount.Add(lateFee)

	// Derive the post-payment status before writing so the contract row and
	// the payment row change together
	payments, err := s.paymentRepo.GetByContractID(contractID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.ID == payment.ID {
			p.Paid = true
			p.PaidDate = &now
		}
	}
	derived, err := DeriveContractStatus(contract, payments, now, s.defaultPolicy, s.lateFeePolicy)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.paymentRepo.MarkPaidTx(tx, payment.ID, now, lateFee, total); err != nil {
		return nil, err
	}
	if derived.Status != contract.Status {
		if err := s.contractRepo.UpdateStatusTx(tx, contract.ID, derived.Status, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	payment.Paid = true
	payment.PaidDate = &now
	payment.LateFeePaid = lateFee
	payment.AmountPaid = total

	metrics.InstallmentsCollected.WithLabelValues(storeLabel(storeID)).Inc()
	if lateFee.GreaterThan(decimal.Zero) {
		metrics.LateFeesCollected.WithLabelValues(storeLabel(storeID)).Inc()
	}

	s.publishEvent(storeID, websocket.InstallmentCollected(map[string]interface{}{
		"contractId":        contractID,
		"installmentNumber": installmentNumber,
		"amount":            payment.Amount.StringFixed(2),
		"lateFee":           lateFee.StringFixed(2),
		"totalCollected":    total.StringFixed(2),
		"contractStatus":    derived.Status,
		"paidAt":            now.Format(time.RFC3339),
	}))
	if derived.Status == domain.ContractStatusCompleted {
		contract.Status = derived.Status
		s.publishEvent(storeID, websocket.ContractUpdated(contract))
	}

	log.Info().
		Int32("store_id", storeID).
		Int32("contract_id", contractID).
		Int32("installment", installmentNumber).
		Str("total", total.StringFixed(2)).
		Str("status", string(derived.Status)).
		Msg("Installment collected")

	return &CollectResult{
		Payment:        payment,
		LateFee:        lateFee,
		TotalCollected: total,
		ContractStatus: derived.Status,
	}, nil
}
