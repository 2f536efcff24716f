package service

import (
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/websocket"
)

// PlanService handles installment plan business logic
type PlanService struct {
	planRepo       domain.InstallmentPlanRepository
	eventPublisher websocket.EventPublisher
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo domain.InstallmentPlanRepository) *PlanService {
	return &PlanService{planRepo: planRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PlanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PlanService) publishEvent(storeID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(storeID, event)
	}
}

// CreatePlanInput holds the fields for creating an installment plan
type CreatePlanInput struct {
	Name                 string
	NumberOfInstallments int32
	AnnualInterestRate   decimal.Decimal
	DownPaymentPercent   decimal.Decimal
	ProcessingFee        decimal.Decimal
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	RequiresGuarantor    bool
}

// CreatePlan validates and persists a new installment plan
func (s *PlanService) CreatePlan(storeID int32, input CreatePlanInput) (*domain.InstallmentPlan, error) {
	plan := &domain.InstallmentPlan{
		StoreID:              storeID,
		Name:                 input.Name,
		NumberOfInstallments: input.NumberOfInstallments,
		AnnualInterestRate:   input.AnnualInterestRate,
		DownPaymentPercent:   input.DownPaymentPercent,
		ProcessingFee:        input.ProcessingFee,
		MinAmount:            input.MinAmount,
		MaxAmount:            input.MaxAmount,
		RequiresGuarantor:    input.RequiresGuarantor,
		Active:               true,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return s.planRepo.Create(plan)
}

// GetPlans retrieves all plans for a store
func (s *PlanService) GetPlans(storeID int32) ([]*domain.InstallmentPlan, error) {
	return s.planRepo.GetAllByStore(storeID)
}

// GetActivePlans retrieves only the plans currently offered at the counter
func (s *PlanService) GetActivePlans(storeID int32) ([]*domain.InstallmentPlan, error) {
	return s.planRepo.GetActiveByStore(storeID)
}

// GetPlanByID retrieves a plan, validating store ownership
func (s *PlanService) GetPlanByID(storeID int32, id int32) (*domain.InstallmentPlan, error) {
	return s.planRepo.GetByID(storeID, id)
}

// UpdatePlan updates a plan's terms. Existing contracts keep the terms they
// snapshotted at origination.
func (s *PlanService) UpdatePlan(storeID int32, id int32, input CreatePlanInput) (*domain.InstallmentPlan, error) {
	plan, err := s.planRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}

	plan.Name = input.Name
	plan.NumberOfInstallments = input.NumberOfInstallments
	plan.AnnualInterestRate = input.AnnualInterestRate
	plan.DownPaymentPercent = input.DownPaymentPercent
	plan.ProcessingFee = input.ProcessingFee
	plan.MinAmount = input.MinAmount
	plan.MaxAmount = input.MaxAmount
	plan.RequiresGuarantor = input.RequiresGuarantor

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.planRepo.Update(plan)
	if err != nil {
		return nil, err
	}

	s.publishEvent(storeID, websocket.PlanUpdated(updated))
	return updated, nil
}

// DeactivatePlan withdraws a plan from the counter without touching the
// contracts originated from it
func (s *PlanService) DeactivatePlan(storeID int32, id int32) error {
	plan, err := s.planRepo.GetByID(storeID, id)
	if err != nil {
		return err
	}
	if err := s.planRepo.Deactivate(storeID, id); err != nil {
		return err
	}

	plan.Active = false
	s.publishEvent(storeID, websocket.PlanUpdated(plan))
	return nil
}
