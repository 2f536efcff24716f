package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAPITokenNotFound     = errors.New("api token not found")
	ErrAPITokenNameEmpty    = errors.New("token name is required")
	ErrAPITokenNameTooLong  = errors.New("token name must be 100 characters or less")
	ErrAPITokenLimitReached = errors.New("maximum number of api tokens reached")
	ErrAPITokenInvalid      = errors.New("invalid api token")
)

const (
	MaxAPITokenNameLength = 100
	MaxAPITokensPerStore  = 10

	// APITokenPrefix marks bearer credentials that should be authenticated
	// against the token table instead of the JWT validator.
	APITokenPrefix = "cred_"
)

// APIToken is a store-scoped credential for programmatic access. Only the
// SHA-256 hash of the secret is stored; the plaintext is shown once at
// creation time.
type APIToken struct {
	ID          uuid.UUID  `json:"id"`
	StoreID     int32      `json:"storeId"`
	Name        string     `json:"name"`
	TokenHash   string     `json:"-"`
	TokenPrefix string     `json:"tokenPrefix"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (t *APIToken) Validate() error {
	if t.Name == "" {
		return ErrAPITokenNameEmpty
	}
	if len(t.Name) > MaxAPITokenNameLength {
		return ErrAPITokenNameTooLong
	}
	return nil
}

// APITokenRepository defines the interface for api token persistence operations
type APITokenRepository interface {
	Create(ctx context.Context, token *APIToken) (*APIToken, error)
	GetByHash(ctx context.Context, tokenHash string) (*APIToken, error)
	GetAllByStore(ctx context.Context, storeID int32) ([]*APIToken, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, storeID int32, id uuid.UUID) error
}
