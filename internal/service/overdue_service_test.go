package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/testutil"
)

// recordingNotifier captures notices and can fail for selected contracts
type recordingNotifier struct {
	notices  []*domain.OverdueNotice
	lateFees []decimal.Decimal
	failFor  map[int32]bool
}

func (n *recordingNotifier) SendOverdueNotice(notice *domain.OverdueNotice, lateFee decimal.Decimal) error {
	if n.failFor[notice.ContractID] {
		return errors.New("mailbox unavailable")
	}
	n.notices = append(n.notices, notice)
	n.lateFees = append(n.lateFees, lateFee)
	return nil
}

func overdueFixture(notifier *recordingNotifier) (*OverdueService, *testutil.MockPaymentRepository) {
	paymentRepo := testutil.NewMockPaymentRepository()
	policy := domain.LateFeePolicy{
		DailyRatePercent: decimal.RequireFromString("0.1"),
		CapPercent:       decimal.NewFromInt(10),
	}
	svc := NewOverdueService(paymentRepo, notifier, policy)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, paymentRepo
}

func TestSweep(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, paymentRepo := overdueFixture(notifier)

	email := "joao@example.com"
	paymentRepo.Overdue = []*domain.OverdueNotice{
		{
			StoreID:           1,
			ContractID:        1,
			InstallmentNumber: 3,
			DueDate:           fixedNow.AddDate(0, 0, -10),
			Amount:            decimal.NewFromInt(100),
			CustomerName:      "João Silva",
			CustomerEmail:     &email,
		},
	}

	result, err := svc.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.Scanned != 1 || result.Notified != 1 || result.Failed != 0 {
		t.Errorf("expected 1 scanned/1 notified/0 failed, got %d/%d/%d", result.Scanned, result.Notified, result.Failed)
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("expected 1 notice sent, got %d", len(notifier.notices))
	}
	// 10 full days at 0.1%/day on 100
	if notifier.lateFees[0].StringFixed(2) != "1.00" {
		t.Errorf("expected late fee 1.00 in notice, got %s", notifier.lateFees[0].StringFixed(2))
	}
}

func TestSweep_FailureIsolation(t *testing.T) {
	notifier := &recordingNotifier{failFor: map[int32]bool{2: true}}
	svc, paymentRepo := overdueFixture(notifier)

	paymentRepo.Overdue = []*domain.OverdueNotice{
		{StoreID: 1, ContractID: 1, InstallmentNumber: 1, DueDate: fixedNow.AddDate(0, 0, -5), Amount: decimal.NewFromInt(100)},
		{StoreID: 1, ContractID: 2, InstallmentNumber: 1, DueDate: fixedNow.AddDate(0, 0, -5), Amount: decimal.NewFromInt(100)},
		{StoreID: 1, ContractID: 3, InstallmentNumber: 1, DueDate: fixedNow.AddDate(0, 0, -5), Amount: decimal.NewFromInt(100)},
	}

	result, err := svc.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.Notified != 2 {
		t.Errorf("expected 2 notified, got %d", result.Notified)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}

	for _, outcome := range result.Outcomes {
		if outcome.ContractID == 2 {
			if outcome.Notified || outcome.Error == "" {
				t.Error("expected contract 2 outcome to carry the failure")
			}
		} else if !outcome.Notified {
			t.Errorf("expected contract %d to be notified", outcome.ContractID)
		}
	}
}

func TestSweep_Empty(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := overdueFixture(notifier)

	result, err := svc.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Scanned != 0 || len(result.Outcomes) != 0 {
		t.Errorf("expected empty sweep result, got %+v", result)
	}
	if len(notifier.notices) != 0 {
		t.Errorf("expected no notices, got %d", len(notifier.notices))
	}
}
