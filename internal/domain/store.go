package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store represents a retail store; all back-office data is scoped to one
type Store struct {
	ID        int32     `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoreRepository defines the interface for store persistence operations
type StoreRepository interface {
	GetByID(id int32) (*Store, error)
	GetByOwnerID(ownerID uuid.UUID) (*Store, error)
	GetByOwnerAuth0ID(auth0ID string) (*Store, error)
	Create(store *Store) (*Store, error)
	Update(store *Store) (*Store, error)
}
