package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/service"
)

// PlanHandler handles installment plan HTTP requests
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// PlanRequest represents the create/update plan request body
type PlanRequest struct {
	Name                 string `json:"name"`
	NumberOfInstallments int32  `json:"numberOfInstallments"`
	AnnualInterestRate   string `json:"annualInterestRate"`
	DownPaymentPercent   string `json:"downPaymentPercent"`
	ProcessingFee        string `json:"processingFee"`
	MinAmount            string `json:"minAmount"`
	MaxAmount            string `json:"maxAmount"`
	RequiresGuarantor    bool   `json:"requiresGuarantor"`
}

func (r *PlanRequest) toInput() (service.CreatePlanInput, []ValidationError) {
	var fieldErrors []ValidationError

	parse := func(field, value string) decimal.Decimal {
		d, err := decimal.NewFromString(value)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{
				Field:   field,
				Message: "Must be a valid decimal number",
			})
		}
		return d
	}

	input := service.CreatePlanInput{
		Name:                 r.Name,
		NumberOfInstallments: r.NumberOfInstallments,
		AnnualInterestRate:   parse("annualInterestRate", r.AnnualInterestRate),
		DownPaymentPercent:   parse("downPaymentPercent", r.DownPaymentPercent),
		ProcessingFee:        parse("processingFee", r.ProcessingFee),
		MinAmount:            parse("minAmount", r.MinAmount),
		MaxAmount:            parse("maxAmount", r.MaxAmount),
		RequiresGuarantor:    r.RequiresGuarantor,
	}
	return input, fieldErrors
}

// planValidationField maps a plan validation sentinel to its request field
func planValidationField(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrPlanNameEmpty), errors.Is(err, domain.ErrPlanNameTooLong):
		return "name", true
	case errors.Is(err, domain.ErrPlanInstallmentsInvalid):
		return "numberOfInstallments", true
	case errors.Is(err, domain.ErrPlanInterestRateInvalid):
		return "annualInterestRate", true
	case errors.Is(err, domain.ErrPlanDownPaymentInvalid):
		return "downPaymentPercent", true
	case errors.Is(err, domain.ErrPlanProcessingFeeInvalid):
		return "processingFee", true
	case errors.Is(err, domain.ErrPlanAmountRangeInvalid):
		return "minAmount", true
	}
	return "", false
}

// CreatePlan handles POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid plan terms", fieldErrors)
	}

	plan, err := h.planService.CreatePlan(storeID, input)
	if err != nil {
		if field, ok := planValidationField(err); ok {
			return NewValidationError(c, "Invalid plan terms", []ValidationError{
				{Field: field, Message: err.Error()},
			})
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to create plan")
		return NewInternalError(c, "Failed to create plan")
	}

	return c.JSON(http.StatusCreated, plan)
}

// GetPlans handles GET /api/v1/plans
// Pass ?active=true to list only plans open for new contracts.
func (h *PlanHandler) GetPlans(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	var (
		plans []*domain.InstallmentPlan
		err   error
	)
	if c.QueryParam("active") == "true" {
		plans, err = h.planService.GetActivePlans(storeID)
	} else {
		plans, err = h.planService.GetPlans(storeID)
	}
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to get plans")
		return NewInternalError(c, "Failed to get plans")
	}

	return c.JSON(http.StatusOK, plans)
}

// GetPlan handles GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	plan, err := h.planService.GetPlanByID(storeID, planID)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Plan not found")
		}
		log.Error().Err(err).Int32("plan_id", planID).Msg("Failed to get plan")
		return NewInternalError(c, "Failed to get plan")
	}

	return c.JSON(http.StatusOK, plan)
}

// UpdatePlan handles PUT /api/v1/plans/:id
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid plan terms", fieldErrors)
	}

	plan, err := h.planService.UpdatePlan(storeID, planID, input)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Plan not found")
		}
		if field, ok := planValidationField(err); ok {
			return NewValidationError(c, "Invalid plan terms", []ValidationError{
				{Field: field, Message: err.Error()},
			})
		}
		log.Error().Err(err).Int32("plan_id", planID).Msg("Failed to update plan")
		return NewInternalError(c, "Failed to update plan")
	}

	return c.JSON(http.StatusOK, plan)
}

// DeactivatePlan handles DELETE /api/v1/plans/:id
// Plans are never hard-deleted; existing contracts keep their terms.
func (h *PlanHandler) DeactivatePlan(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	planID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	if err := h.planService.DeactivatePlan(storeID, planID); err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Plan not found")
		}
		log.Error().Err(err).Int32("plan_id", planID).Msg("Failed to deactivate plan")
		return NewInternalError(c, "Failed to deactivate plan")
	}

	return c.NoContent(http.StatusNoContent)
}

func parseIDParam(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
