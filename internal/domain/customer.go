package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCustomerNameEmpty    = errors.New("customer name is required")
	ErrCustomerNameTooLong  = errors.New("customer name exceeds maximum length")
	ErrCustomerEmailInvalid = errors.New("customer email is invalid")
)

// Customer represents a store customer who can hold installment contracts
type Customer struct {
	ID        uuid.UUID `json:"id"`
	StoreID   int32     `json:"storeId"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Document  *string   `json:"document,omitempty"` // national ID / tax number
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrCustomerNameEmpty
	}
	if len(c.Name) > MaxCustomerNameLength {
		return ErrCustomerNameTooLong
	}
	return nil
}

// CustomerRepository defines the interface for customer persistence operations
type CustomerRepository interface {
	Create(customer *Customer) (*Customer, error)
	GetByID(storeID int32, id uuid.UUID) (*Customer, error)
	GetAllByStore(storeID int32) ([]*Customer, error)
	Update(customer *Customer) (*Customer, error)
}
