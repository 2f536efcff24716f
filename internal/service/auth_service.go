package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/domain"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo  domain.UserRepository
	storeRepo domain.StoreRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, storeRepo domain.StoreRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		storeRepo: storeRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Store     *domain.Store
	IsNewUser bool
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// Creates the user and their store if they don't exist yet.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	store, err := s.storeRepo.GetByOwnerID(user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			// New user, provision their store
			store, err = s.createDefaultStore(user.ID)
			if err != nil {
				log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create default store")
				return nil, err
			}
			log.Info().Str("user_id", user.ID.String()).Msg("Created new user with default store")
			return &AuthResult{
				User:      user,
				Store:     store,
				IsNewUser: true,
			}, nil
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get store")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
	return &AuthResult{
		User:      user,
		Store:     store,
		IsNewUser: false,
	}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetStoreByOwnerID retrieves a user's store
func (s *AuthService) GetStoreByOwnerID(ownerID uuid.UUID) (*domain.Store, error) {
	return s.storeRepo.GetByOwnerID(ownerID)
}

// GetStoreByAuth0ID retrieves a user's store by their Auth0 ID
func (s *AuthService) GetStoreByAuth0ID(auth0ID string) (*domain.Store, error) {
	return s.storeRepo.GetByOwnerAuth0ID(auth0ID)
}

// GetStoreByID retrieves a store by its ID
func (s *AuthService) GetStoreByID(id int32) (*domain.Store, error) {
	return s.storeRepo.GetByID(id)
}

func (s *AuthService) createDefaultStore(ownerID uuid.UUID) (*domain.Store, error) {
	store := &domain.Store{
		OwnerID: ownerID,
		Name:    "My Store",
	}
	return s.storeRepo.Create(store)
}
