package service

import (
	"github.com/google/uuid"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/websocket"
)

// CustomerService handles customer business logic
type CustomerService struct {
	customerRepo   domain.CustomerRepository
	eventPublisher websocket.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo domain.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CustomerService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCustomerInput holds the fields for registering a customer
type CreateCustomerInput struct {
	Name     string
	Email    *string
	Phone    *string
	Document *string
}

// CreateCustomer validates and persists a new customer
func (s *CustomerService) CreateCustomer(storeID int32, input CreateCustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		StoreID:  storeID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Document: input.Document,
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	created, err := s.customerRepo.Create(customer)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(storeID, websocket.CustomerCreated(created))
	}
	return created, nil
}

// GetCustomers retrieves all customers for a store
func (s *CustomerService) GetCustomers(storeID int32) ([]*domain.Customer, error) {
	return s.customerRepo.GetAllByStore(storeID)
}

// GetCustomerByID retrieves a customer, validating store ownership
func (s *CustomerService) GetCustomerByID(storeID int32, id uuid.UUID) (*domain.Customer, error) {
	return s.customerRepo.GetByID(storeID, id)
}

// UpdateCustomer updates a customer's contact details
func (s *CustomerService) UpdateCustomer(storeID int32, id uuid.UUID, input CreateCustomerInput) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Document = input.Document

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return s.customerRepo.Update(customer)
}
