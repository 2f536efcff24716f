package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternalError = errors.New("internal error")
	ErrUserNotFound  = errors.New("user not found")
	ErrStoreNotFound = errors.New("store not found")
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name exceeds maximum length")
)

// Amortization errors
var (
	ErrAmortizationInputInvalid = errors.New("amortization input is invalid")
	ErrDegenerateAmortization   = errors.New("amortization rate factor is degenerate")
)

// Validation constants
const (
	MaxPlanNameLength     = 200
	MaxCustomerNameLength = 255
)
