package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/service"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	contractService *service.ContractService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *service.CustomerService, contractService *service.ContractService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		contractService: contractService,
	}
}

// CustomerRequest represents the create/update customer request body
type CustomerRequest struct {
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Document *string `json:"document,omitempty"`
}

func customerValidationField(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrCustomerNameEmpty), errors.Is(err, domain.ErrCustomerNameTooLong):
		return "name", true
	case errors.Is(err, domain.ErrCustomerEmailInvalid):
		return "email", true
	}
	return "", false
}

// CreateCustomer handles POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customer, err := h.customerService.CreateCustomer(storeID, service.CreateCustomerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		if field, ok := customerValidationField(err); ok {
			return NewValidationError(c, "Invalid customer", []ValidationError{
				{Field: field, Message: err.Error()},
			})
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to create customer")
		return NewInternalError(c, "Failed to create customer")
	}

	return c.JSON(http.StatusCreated, customer)
}

// GetCustomers handles GET /api/v1/customers
func (h *CustomerHandler) GetCustomers(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	customers, err := h.customerService.GetCustomers(storeID)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to get customers")
		return NewInternalError(c, "Failed to get customers")
	}

	return c.JSON(http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	customer, err := h.customerService.GetCustomerByID(storeID, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		log.Error().Err(err).Str("customer_id", customerID.String()).Msg("Failed to get customer")
		return NewInternalError(c, "Failed to get customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customer, err := h.customerService.UpdateCustomer(storeID, customerID, service.CreateCustomerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		if field, ok := customerValidationField(err); ok {
			return NewValidationError(c, "Invalid customer", []ValidationError{
				{Field: field, Message: err.Error()},
			})
		}
		log.Error().Err(err).Str("customer_id", customerID.String()).Msg("Failed to update customer")
		return NewInternalError(c, "Failed to update customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// GetCustomerContracts handles GET /api/v1/customers/:id/contracts
func (h *CustomerHandler) GetCustomerContracts(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	if _, err := h.customerService.GetCustomerByID(storeID, customerID); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		log.Error().Err(err).Str("customer_id", customerID.String()).Msg("Failed to get customer")
		return NewInternalError(c, "Failed to get customer")
	}

	contracts, err := h.contractService.GetContractsByCustomer(storeID, customerID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID.String()).Msg("Failed to get customer contracts")
		return NewInternalError(c, "Failed to get customer contracts")
	}

	return c.JSON(http.StatusOK, contracts)
}
