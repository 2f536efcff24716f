package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/service"
)

// ContractHandler handles installment contract HTTP requests
type ContractHandler struct {
	contractService *service.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// PreviewContractRequest represents the preview request body
type PreviewContractRequest struct {
	PlanID      int32  `json:"planId"`
	TotalAmount string `json:"totalAmount"`
}

// CreateContractRequest represents the create contract request body
type CreateContractRequest struct {
	CustomerID    string  `json:"customerId"`
	PlanID        int32   `json:"planId"`
	TotalAmount   string  `json:"totalAmount"`
	GuarantorName *string `json:"guarantorName,omitempty"`
}

// contractTermsError maps origination sentinels to a validation response,
// or falls through for the caller to handle
func contractTermsError(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrContractAmountInvalid):
		return NewValidationError(c, "Invalid contract amount", []ValidationError{
			{Field: "totalAmount", Message: err.Error()},
		}), true
	case errors.Is(err, domain.ErrContractAmountOutOfRange):
		return NewValidationError(c, "Amount outside plan range", []ValidationError{
			{Field: "totalAmount", Message: err.Error()},
		}), true
	case errors.Is(err, domain.ErrContractGuarantorMissing):
		return NewValidationError(c, "Guarantor required", []ValidationError{
			{Field: "guarantorName", Message: err.Error()},
		}), true
	case errors.Is(err, domain.ErrPlanInactive):
		return NewConflictError(c, "Plan is no longer active"), true
	case errors.Is(err, domain.ErrPlanNotFound):
		return NewNotFoundError(c, "Plan not found"), true
	}
	return nil, false
}

// PreviewContract handles POST /api/v1/contracts/preview
func (h *ContractHandler) PreviewContract(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	var req PreviewContractRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	totalAmount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid total amount", []ValidationError{
			{Field: "totalAmount", Message: "Must be a valid decimal number"},
		})
	}

	preview, err := h.contractService.PreviewContract(storeID, service.PreviewContractInput{
		PlanID:      req.PlanID,
		TotalAmount: totalAmount,
	})
	if err != nil {
		if resp, handled := contractTermsError(c, err); handled {
			return resp
		}
		log.Error().Err(err).Int32("plan_id", req.PlanID).Msg("Failed to preview contract")
		return NewInternalError(c, "Failed to preview contract")
	}

	return c.JSON(http.StatusOK, preview)
}

// CreateContract handles POST /api/v1/contracts
func (h *ContractHandler) CreateContract(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	var req CreateContractRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", []ValidationError{
			{Field: "customerId", Message: "Must be a valid UUID"},
		})
	}

	totalAmount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid total amount", []ValidationError{
			{Field: "totalAmount", Message: "Must be a valid decimal number"},
		})
	}

	contract, err := h.contractService.CreateContract(c.Request().Context(), storeID, service.CreateContractInput{
		CustomerID:    customerID,
		PlanID:        req.PlanID,
		TotalAmount:   totalAmount,
		GuarantorName: req.GuarantorName,
	})
	if err != nil {
		if resp, handled := contractTermsError(c, err); handled {
			return resp
		}
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to create contract")
		return NewInternalError(c, "Failed to create contract")
	}

	return c.JSON(http.StatusCreated, contract)
}

// GetContracts handles GET /api/v1/contracts
func (h *ContractHandler) GetContracts(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contracts, err := h.contractService.GetContracts(storeID)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to get contracts")
		return NewInternalError(c, "Failed to get contracts")
	}

	return c.JSON(http.StatusOK, contracts)
}

// GetContract handles GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.GetContract(storeID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		log.Error().Err(err).Int32("contract_id", contractID).Msg("Failed to get contract")
		return NewInternalError(c, "Failed to get contract")
	}

	return c.JSON(http.StatusOK, contract)
}

// ActivateContract handles POST /api/v1/contracts/:id/activate
func (h *ContractHandler) ActivateContract(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.ActivateContract(storeID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		if errors.Is(err, domain.ErrContractNotDraft) {
			return NewConflictError(c, "Only draft contracts can be activated")
		}
		log.Error().Err(err).Int32("contract_id", contractID).Msg("Failed to activate contract")
		return NewInternalError(c, "Failed to activate contract")
	}

	return c.JSON(http.StatusOK, contract)
}

// CancelContract handles POST /api/v1/contracts/:id/cancel
func (h *ContractHandler) CancelContract(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.CancelContract(storeID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		if errors.Is(err, domain.ErrContractClosed) {
			return NewConflictError(c, "Contract is already completed or cancelled")
		}
		log.Error().Err(err).Int32("contract_id", contractID).Msg("Failed to cancel contract")
		return NewInternalError(c, "Failed to cancel contract")
	}

	return c.JSON(http.StatusOK, contract)
}

// GetInstallments handles GET /api/v1/contracts/:id/installments
func (h *ContractHandler) GetInstallments(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	installments, err := h.contractService.GetInstallments(storeID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		log.Error().Err(err).Int32("contract_id", contractID).Msg("Failed to get installments")
		return NewInternalError(c, "Failed to get installments")
	}

	return c.JSON(http.StatusOK, installments)
}

// CollectInstallment handles POST /api/v1/contracts/:id/installments/:number/collect
func (h *ContractHandler) CollectInstallment(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	installmentNumber, err := parseIDParam(c, "number")
	if err != nil {
		return NewValidationError(c, "Invalid installment number", nil)
	}

	result, err := h.contractService.CollectInstallment(c.Request().Context(), storeID, contractID, installmentNumber)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			return NewNotFoundError(c, "Contract not found")
		case errors.Is(err, domain.ErrInstallmentNotFound):
			return NewNotFoundError(c, "Installment not found")
		case errors.Is(err, domain.ErrContractNotPayable):
			return NewConflictError(c, "Contract is not accepting payments yet")
		case errors.Is(err, domain.ErrContractClosed):
			return NewConflictError(c, "Contract is already completed or cancelled")
		case errors.Is(err, domain.ErrPaymentAlreadyRecorded):
			return NewConflictError(c, "Installment is already paid")
		}
		log.Error().Err(err).
			Int32("contract_id", contractID).
			Int32("installment", installmentNumber).
			Msg("Failed to collect installment")
		return NewInternalError(c, "Failed to collect installment")
	}

	return c.JSON(http.StatusOK, result)
}
