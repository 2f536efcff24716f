package service

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/metrics"
	"github.com/crediario/crediario-backend/internal/notify"
	"github.com/crediario/crediario-backend/internal/websocket"
)

// sweepWindow bounds how far back a sweep looks for installments that became
// overdue, so a missed run still catches yesterday's items without
// re-notifying the whole book.
const sweepWindow = 48 * time.Hour

// OverdueService runs the scheduled overdue sweep. The sweep only notifies;
// it never writes statuses, which stay derived at read time.
type OverdueService struct {
	paymentRepo    domain.InstallmentPaymentRepository
	notifier       notify.OverdueNotifier
	lateFeePolicy  domain.LateFeePolicy
	eventPublisher websocket.EventPublisher
	nowFn          func() time.Time
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(
	paymentRepo domain.InstallmentPaymentRepository,
	notifier notify.OverdueNotifier,
	lateFeePolicy domain.LateFeePolicy,
) *OverdueService {
	if notifier == nil {
		notifier = notify.NoOpNotifier{}
	}
	return &OverdueService{
		paymentRepo:   paymentRepo,
		notifier:      notifier,
		lateFeePolicy: lateFeePolicy,
		nowFn:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *OverdueService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source, for tests
func (s *OverdueService) SetClock(nowFn func() time.Time) {
	s.nowFn = nowFn
}

// SweepOutcome records what happened to one overdue installment during a sweep
type SweepOutcome struct {
	ContractID        int32  `json:"contractId"`
	InstallmentNumber int32  `json:"installmentNumber"`
	Notified          bool   `json:"notified"`
	Error             string `json:"error,omitempty"`
}

// SweepResult summarizes one sweep run
type SweepResult struct {
	RanAt    time.Time      `json:"ranAt"`
	Scanned  int            `json:"scanned"`
	Notified int            `json:"notified"`
	Failed   int            `json:"failed"`
	Outcomes []SweepOutcome `json:"outcomes"`
}

// Sweep finds installments that became overdue within the window and sends
// one notice each. Failures are reported per item; one bad address never
// stops the rest of the run.
func (s *OverdueService) Sweep() (*SweepResult, error) {
	now := s.nowFn()
	metrics.SweepRuns.Inc()

	notices, err := s.paymentRepo.GetNewlyOverdue(now, sweepWindow)
	if err != nil {
		metrics.SweepErrors.Inc()
		log.Error().Err(err).Msg("Overdue sweep query failed")
		return nil, err
	}

	result := &SweepResult{
		RanAt:    now,
		Scanned:  len(notices),
		Outcomes: make([]SweepOutcome, 0, len(notices)),
	}

	for _, notice := range notices {
		outcome := SweepOutcome{
			ContractID:        notice.ContractID,
			InstallmentNumber: notice.InstallmentNumber,
		}

		lateFee := s.currentLateFee(notice, now)
		if err := s.notifier.SendOverdueNotice(notice, lateFee); err != nil {
			outcome.Error = err.Error()
			result.Failed++
			log.Warn().Err(err).
				Int32("contract_id", notice.ContractID).
				Int32("installment", notice.InstallmentNumber).
				Msg("Overdue notice failed")
		} else {
			outcome.Notified = true
			result.Notified++
			metrics.OverdueNoticesSent.WithLabelValues("email").Inc()
		}

		if s.eventPublisher != nil {
			s.eventPublisher.Publish(notice.StoreID, websocket.InstallmentOverdue(map[string]interface{}{
				"contractId":        notice.ContractID,
				"installmentNumber": notice.InstallmentNumber,
				"dueDate":           notice.DueDate.Format("2006-01-02"),
				"amount":            notice.Amount.StringFixed(2),
				"lateFee":           lateFee.StringFixed(2),
			}))
			metrics.OverdueNoticesSent.WithLabelValues("websocket").Inc()
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	if result.Failed > 0 {
		metrics.SweepErrors.Inc()
	}

	log.Info().
		Int("scanned", result.Scanned).
		Int("notified", result.Notified).
		Int("failed", result.Failed).
		Msg("Overdue sweep finished")

	return result, nil
}

func (s *OverdueService) currentLateFee(notice *domain.OverdueNotice, now time.Time) decimal.Decimal {
	payment := &domain.InstallmentPayment{
		DueDate: notice.DueDate,
		Amount:  notice.Amount,
	}
	return ComputeLateFee(payment, now, s.lateFeePolicy)
}
