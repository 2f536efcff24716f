package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/testutil"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

type contractServiceFixture struct {
	svc          *ContractService
	contractRepo *testutil.MockContractRepository
	paymentRepo  *testutil.MockPaymentRepository
	planRepo     *testutil.MockPlanRepository
	customerRepo *testutil.MockCustomerRepository
}

func newContractServiceFixture() *contractServiceFixture {
	f := &contractServiceFixture{
		contractRepo: testutil.NewMockContractRepository(),
		paymentRepo:  testutil.NewMockPaymentRepository(),
		planRepo:     testutil.NewMockPlanRepository(),
		customerRepo: testutil.NewMockCustomerRepository(),
	}
	policy := domain.DefaultPolicy{
		MaxOverdueInstallments: 3,
		MaxOverdueFraction:     decimal.RequireFromString("0.25"),
		ReinstateCured:         true,
	}
	lateFee := domain.LateFeePolicy{
		DailyRatePercent: decimal.RequireFromString("0.1"),
		CapPercent:       decimal.NewFromInt(10),
	}
	f.svc = NewContractService(nil, f.contractRepo, f.paymentRepo, f.planRepo, f.customerRepo, policy, lateFee)
	f.svc.SetClock(func() time.Time { return fixedNow })
	return f
}

func (f *contractServiceFixture) addPlan(plan *domain.InstallmentPlan) *domain.InstallmentPlan {
	f.planRepo.AddPlan(plan)
	return plan
}

func standardPlan() *domain.InstallmentPlan {
	return &domain.InstallmentPlan{
		ID:                   1,
		StoreID:              1,
		Name:                 "12x Standard",
		NumberOfInstallments: 12,
		AnnualInterestRate:   decimal.NewFromInt(12),
		DownPaymentPercent:   decimal.NewFromInt(10),
		ProcessingFee:        decimal.NewFromInt(50),
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(100000),
		Active:               true,
	}
}

func TestPreviewContract(t *testing.T) {
	f := newContractServiceFixture()
	f.addPlan(standardPlan())

	preview, err := f.svc.PreviewContract(1, PreviewContractInput{
		PlanID:      1,
		TotalAmount: decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("PreviewContract failed: %v", err)
	}

	if preview.DownPayment.StringFixed(2) != "10000.00" {
		t.Errorf("expected down payment 10000.00, got %s", preview.DownPayment.StringFixed(2))
	}
	if preview.FinancedAmount.StringFixed(2) != "90000.00" {
		t.Errorf("expected financed amount 90000.00, got %s", preview.FinancedAmount.StringFixed(2))
	}
	if preview.MonthlyPayment.StringFixed(2) != "7996.39" {
		t.Errorf("expected monthly payment 7996.39, got %s", preview.MonthlyPayment.StringFixed(2))
	}
	if preview.DueAtSigning.StringFixed(2) != "10050.00" {
		t.Errorf("expected due at signing 10050.00, got %s", preview.DueAtSigning.StringFixed(2))
	}
	if len(preview.Schedule.Entries) != 12 {
		t.Errorf("expected 12 schedule entries, got %d", len(preview.Schedule.Entries))
	}
}

func TestPreviewContract_InactivePlan(t *testing.T) {
	f := newContractServiceFixture()
	plan := standardPlan()
	plan.Active = false
	f.addPlan(plan)

	_, err := f.svc.PreviewContract(1, PreviewContractInput{PlanID: 1, TotalAmount: decimal.NewFromInt(1000)})
	if err != domain.ErrPlanInactive {
		t.Errorf("expected ErrPlanInactive, got %v", err)
	}
}

func TestPreviewContract_PlanNotFound(t *testing.T) {
	f := newContractServiceFixture()

	_, err := f.svc.PreviewContract(1, PreviewContractInput{PlanID: 99, TotalAmount: decimal.NewFromInt(1000)})
	if err != domain.ErrPlanNotFound {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestPreviewContract_AmountOutOfRange(t *testing.T) {
	f := newContractServiceFixture()
	f.addPlan(standardPlan())

	// 50 total with 10% down finances 45, below the plan minimum of 100
	_, err := f.svc.PreviewContract(1, PreviewContractInput{PlanID: 1, TotalAmount: decimal.NewFromInt(50)})
	if err != domain.ErrContractAmountOutOfRange {
		t.Errorf("expected ErrContractAmountOutOfRange, got %v", err)
	}
}

func TestPreviewContract_NonPositiveAmount(t *testing.T) {
	f := newContractServiceFixture()
	f.addPlan(standardPlan())

	_, err := f.svc.PreviewContract(1, PreviewContractInput{PlanID: 1, TotalAmount: decimal.Zero})
	if err != domain.ErrContractAmountInvalid {
		t.Errorf("expected ErrContractAmountInvalid, got %v", err)
	}
}

func TestCreateContract_GuarantorRequired(t *testing.T) {
	f := newContractServiceFixture()
	plan := standardPlan()
	plan.RequiresGuarantor = true
	f.addPlan(plan)

	customer := &domain.Customer{ID: uuid.New(), StoreID: 1, Name: "Maria Santos"}
	f.customerRepo.AddCustomer(customer)

	_, err := f.svc.CreateContract(context.Background(), 1, CreateContractInput{
		CustomerID:  customer.ID,
		PlanID:      1,
		TotalAmount: decimal.NewFromInt(5000),
	})
	if err != domain.ErrContractGuarantorMissing {
		t.Errorf("expected ErrContractGuarantorMissing, got %v", err)
	}

	empty := ""
	_, err = f.svc.CreateContract(context.Background(), 1, CreateContractInput{
		CustomerID:    customer.ID,
		PlanID:        1,
		TotalAmount:   decimal.NewFromInt(5000),
		GuarantorName: &empty,
	})
	if err != domain.ErrContractGuarantorMissing {
		t.Errorf("expected ErrContractGuarantorMissing for empty name, got %v", err)
	}
}

func TestCreateContract_CustomerNotFound(t *testing.T) {
	f := newContractServiceFixture()
	f.addPlan(standardPlan())

	_, err := f.svc.CreateContract(context.Background(), 1, CreateContractInput{
		CustomerID:  uuid.New(),
		PlanID:      1,
		TotalAmount: decimal.NewFromInt(5000),
	})
	if err != domain.ErrCustomerNotFound {
		t.Errorf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCreateContract_InactivePlan(t *testing.T) {
	f := newContractServiceFixture()
	plan := standardPlan()
	plan.Active = false
	f.addPlan(plan)

	_, err := f.svc.CreateContract(context.Background(), 1, CreateContractInput{
		CustomerID:  uuid.New(),
		PlanID:      1,
		TotalAmount: decimal.NewFromInt(5000),
	})
	if err != domain.ErrPlanInactive {
		t.Errorf("expected ErrPlanInactive, got %v", err)
	}
}

func TestActivateContract(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusDraft,
	})

	contract, err := f.svc.ActivateContract(1, 1)
	if err != nil {
		t.Fatalf("ActivateContract failed: %v", err)
	}
	if contract.Status != domain.ContractStatusActive {
		t.Errorf("expected status active, got %s", contract.Status)
	}
	if f.contractRepo.Contracts[1].Status != domain.ContractStatusActive {
		t.Errorf("expected stored status active, got %s", f.contractRepo.Contracts[1].Status)
	}
}

func TestActivateContract_NotDraft(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusActive,
	})

	_, err := f.svc.ActivateContract(1, 1)
	if err != domain.ErrContractNotDraft {
		t.Errorf("expected ErrContractNotDraft, got %v", err)
	}
}

func TestActivateContract_WrongStore(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 2,
		Status:  domain.ContractStatusDraft,
	})

	_, err := f.svc.ActivateContract(1, 1)
	if err != domain.ErrContractNotFound {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestCancelContract(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusActive,
	})

	contract, err := f.svc.CancelContract(1, 1)
	if err != nil {
		t.Fatalf("CancelContract failed: %v", err)
	}
	if contract.Status != domain.ContractStatusCancelled {
		t.Errorf("expected status cancelled, got %s", contract.Status)
	}
	if contract.CancelledAt == nil {
		t.Error("expected CancelledAt to be set")
	}
}

func TestCancelContract_AlreadyClosed(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusCompleted,
	})
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      2,
		StoreID: 1,
		Status:  domain.ContractStatusCancelled,
	})

	if _, err := f.svc.CancelContract(1, 1); err != domain.ErrContractClosed {
		t.Errorf("expected ErrContractClosed for completed contract, got %v", err)
	}
	if _, err := f.svc.CancelContract(1, 2); err != domain.ErrContractClosed {
		t.Errorf("expected ErrContractClosed for cancelled contract, got %v", err)
	}
}

func TestGetContract_RefreshesStoredStatus(t *testing.T) {
	f := newContractServiceFixture()
	contract := &domain.InstallmentContract{
		ID:                   1,
		StoreID:              1,
		NumberOfInstallments: 2,
		FinancedAmount:       decimal.NewFromInt(200),
		Status:               domain.ContractStatusActive,
	}
	f.contractRepo.AddContract(contract)

	paid := fixedNow.AddDate(0, -1, 0)
	for i := int32(1); i <= 2; i++ {
		f.paymentRepo.AddPayment(&domain.InstallmentPayment{
			ID:                i,
			ContractID:        1,
			InstallmentNumber: i,
			DueDate:           fixedNow.AddDate(0, int(i)-3, 0),
			Amount:            decimal.NewFromInt(100),
			Paid:              true,
			PaidDate:          &paid,
		})
	}

	got, err := f.svc.GetContract(1, 1)
	if err != nil {
		t.Fatalf("GetContract failed: %v", err)
	}
	if got.Derived.Status != domain.ContractStatusCompleted {
		t.Errorf("expected derived status completed, got %s", got.Derived.Status)
	}
	if f.contractRepo.Contracts[1].Status != domain.ContractStatusCompleted {
		t.Errorf("expected stored status refreshed to completed, got %s", f.contractRepo.Contracts[1].Status)
	}
}

func TestGetInstallments_DerivedViews(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusActive,
	})

	// 10 full days overdue at 0.1%/day on 100 owes a 1.00 late fee
	f.paymentRepo.AddPayment(&domain.InstallmentPayment{
		ID:                1,
		ContractID:        1,
		InstallmentNumber: 1,
		DueDate:           fixedNow.AddDate(0, 0, -10),
		Amount:            decimal.NewFromInt(100),
	})
	f.paymentRepo.AddPayment(&domain.InstallmentPayment{
		ID:                2,
		ContractID:        1,
		InstallmentNumber: 2,
		DueDate:           fixedNow.AddDate(0, 1, 0),
		Amount:            decimal.NewFromInt(100),
	})

	views, err := f.svc.GetInstallments(1, 1)
	if err != nil {
		t.Fatalf("GetInstallments failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 installment views, got %d", len(views))
	}

	byNumber := make(map[int32]*InstallmentView)
	for _, v := range views {
		byNumber[v.InstallmentNumber] = v
	}

	if byNumber[1].Status != domain.PaymentStatusOverdue {
		t.Errorf("expected installment 1 overdue, got %s", byNumber[1].Status)
	}
	if byNumber[1].LateFeeDue.StringFixed(2) != "1.00" {
		t.Errorf("expected late fee 1.00, got %s", byNumber[1].LateFeeDue.StringFixed(2))
	}
	if byNumber[2].Status != domain.PaymentStatusPending {
		t.Errorf("expected installment 2 pending, got %s", byNumber[2].Status)
	}
	if !byNumber[2].LateFeeDue.IsZero() {
		t.Errorf("expected no late fee for pending installment, got %s", byNumber[2].LateFeeDue.StringFixed(2))
	}
}

func TestCollectInstallment_DraftNotPayable(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusDraft,
	})

	_, err := f.svc.CollectInstallment(context.Background(), 1, 1, 1)
	if err != domain.ErrContractNotPayable {
		t.Errorf("expected ErrContractNotPayable, got %v", err)
	}
}

func TestCollectInstallment_ClosedContract(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusCancelled,
	})

	_, err := f.svc.CollectInstallment(context.Background(), 1, 1, 1)
	if err != domain.ErrContractClosed {
		t.Errorf("expected ErrContractClosed, got %v", err)
	}
}

func TestCollectInstallment_AlreadyPaid(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusActive,
	})
	paid := fixedNow.AddDate(0, 0, -5)
	f.paymentRepo.AddPayment(&domain.InstallmentPayment{
		ID:                1,
		ContractID:        1,
		InstallmentNumber: 1,
		DueDate:           fixedNow.AddDate(0, 0, -10),
		Amount:            decimal.NewFromInt(100),
		Paid:              true,
		PaidDate:          &paid,
	})

	_, err := f.svc.CollectInstallment(context.Background(), 1, 1, 1)
	if err != domain.ErrPaymentAlreadyRecorded {
		t.Errorf("expected ErrPaymentAlreadyRecorded, got %v", err)
	}
}

func TestCollectInstallment_InstallmentNotFound(t *testing.T) {
	f := newContractServiceFixture()
	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusActive,
	})

	_, err := f.svc.CollectInstallment(context.Background(), 1, 1, 7)
	if err != domain.ErrInstallmentNotFound {
		t.Errorf("expected ErrInstallmentNotFound, got %v", err)
	}
}
