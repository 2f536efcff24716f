package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/cache"
	"github.com/crediario/crediario-backend/internal/domain"
)

// summaryCacheTTL keeps the dashboard cheap to refresh while staying close
// to real time. Overdue state shifts at day granularity, so 60s is plenty.
const summaryCacheTTL = 60 * time.Second

// DashboardService aggregates portfolio figures for a store
type DashboardService struct {
	contractRepo  domain.InstallmentContractRepository
	paymentRepo   domain.InstallmentPaymentRepository
	defaultPolicy domain.DefaultPolicy
	lateFeePolicy domain.LateFeePolicy
	cache         cache.SummaryCache
	nowFn         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	contractRepo domain.InstallmentContractRepository,
	paymentRepo domain.InstallmentPaymentRepository,
	defaultPolicy domain.DefaultPolicy,
	lateFeePolicy domain.LateFeePolicy,
	summaryCache cache.SummaryCache,
) *DashboardService {
	if summaryCache == nil {
		summaryCache = cache.NoopSummaryCache{}
	}
	return &DashboardService{
		contractRepo:  contractRepo,
		paymentRepo:   paymentRepo,
		defaultPolicy: defaultPolicy,
		lateFeePolicy: lateFeePolicy,
		cache:         summaryCache,
		nowFn:         time.Now,
	}
}

// SetClock overrides the time source, for tests
func (s *DashboardService) SetClock(nowFn func() time.Time) {
	s.nowFn = nowFn
}

func summaryCacheKey(storeID int32) string {
	return fmt.Sprintf("dashboard:summary:%d", storeID)
}

// GetSummary computes the store's portfolio summary. Statuses are derived
// from payment rows on every cache miss, never read back from storage.
func (s *DashboardService) GetSummary(ctx context.Context, storeID int32) (*domain.StoreSummary, error) {
	key := summaryCacheKey(storeID)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Int32("store_id", storeID).Msg("Summary cache read failed")
	} else if ok {
		return cached, nil
	}

	summary, err := s.computeSummary(storeID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, summary, summaryCacheTTL); err != nil {
		log.Warn().Err(err).Int32("store_id", storeID).Msg("Summary cache write failed")
	}
	return summary, nil
}

// InvalidateSummary drops the cached summary after a mutation
func (s *DashboardService) InvalidateSummary(ctx context.Context, storeID int32) {
	if err := s.cache.Invalidate(ctx, summaryCacheKey(storeID)); err != nil {
		log.Warn().Err(err).Int32("store_id", storeID).Msg("Summary cache invalidation failed")
	}
}

func (s *DashboardService) computeSummary(storeID int32) (*domain.StoreSummary, error) {
	now := s.nowFn()

	contracts, err := s.contractRepo.GetAllByStore(storeID)
	if err != nil {
		return nil, err
	}
	paymentsByContract, err := s.paymentRepo.GetByStore(storeID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	collected, err := s.paymentRepo.SumCollectedSince(storeID, monthStart)
	if err != nil {
		return nil, err
	}

	summary := &domain.StoreSummary{
		TotalFinanced:      decimal.Zero,
		TotalOutstanding:   decimal.Zero,
		TotalOverdue:       decimal.Zero,
		CollectedThisMonth: collected,
	}

	for _, c := range contracts {
		derived, err := DeriveContractStatus(c, paymentsByContract[c.ID], now, s.defaultPolicy, s.lateFeePolicy)
		if err != nil {
			return nil, err
		}

		switch derived.Status {
		case domain.ContractStatusActive:
			summary.ActiveContracts++
		case domain.ContractStatusCompleted:
			summary.CompletedContracts++
		case domain.ContractStatusDefaulted:
			summary.DefaultedContracts++
		default:
			// draft and cancelled contracts don't count toward the portfolio
			continue
		}

		summary.TotalFinanced = summary.TotalFinanced.Add(c.FinancedAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(derived.RemainingBalance)
		summary.TotalOverdue = summary.TotalOverdue.Add(derived.OverdueAmount)
		summary.OverdueInstallments += derived.OverdueInstallments
	}

	return summary, nil
}
