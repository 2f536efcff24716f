package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/domain"
)

const (
	// tokenRandomBytes is the number of random bytes for the token (32 bytes = 256 bits)
	tokenRandomBytes = 32
	// tokenPrefixLength is the length of the displayable prefix (e.g., "cred_abc...")
	tokenPrefixLength = 8
)

// APITokenService handles API token business logic
type APITokenService struct {
	repo domain.APITokenRepository
}

// NewAPITokenService creates a new APITokenService
func NewAPITokenService(repo domain.APITokenRepository) *APITokenService {
	return &APITokenService{repo: repo}
}

// CreateAPITokenResult carries the plaintext token; it is returned exactly
// once and never stored
type CreateAPITokenResult struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TokenPrefix string    `json:"tokenPrefix"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"createdAt"`
	Warning     string    `json:"warning"`
}

// Create creates a new API token and returns the full token (shown only once)
func (s *APITokenService) Create(ctx context.Context, storeID int32, name string) (*CreateAPITokenResult, error) {
	existingTokens, err := s.repo.GetAllByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(existingTokens) >= domain.MaxAPITokensPerStore {
		return nil, domain.ErrAPITokenLimitReached
	}

	rawToken, err := generateSecureToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate secure token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	fullToken := domain.APITokenPrefix + rawToken
	hash := hashToken(fullToken)
	displayPrefix := domain.APITokenPrefix + rawToken[:tokenPrefixLength] + "..."

	token := &domain.APIToken{
		StoreID:     storeID,
		Name:        name,
		TokenHash:   hash,
		TokenPrefix: displayPrefix,
	}
	if err := token.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, token)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to create API token")
		return nil, err
	}

	log.Info().
		Str("token_id", created.ID.String()).
		Int32("store_id", storeID).
		Str("name", name).
		Msg("API token created")

	return &CreateAPITokenResult{
		ID:          created.ID,
		Name:        name,
		TokenPrefix: displayPrefix,
		Token:       fullToken,
		CreatedAt:   created.CreatedAt,
		Warning:     "Make sure to copy your API token now. You won't be able to see it again!",
	}, nil
}

// GetByStore retrieves all active API tokens for a store
func (s *APITokenService) GetByStore(ctx context.Context, storeID int32) ([]*domain.APIToken, error) {
	tokens, err := s.repo.GetAllByStore(ctx, storeID)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to get API tokens")
		return nil, err
	}
	return tokens, nil
}

// Revoke revokes an API token
func (s *APITokenService) Revoke(ctx context.Context, storeID int32, tokenID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, storeID, tokenID); err != nil {
		log.Error().Err(err).
			Int32("store_id", storeID).
			Str("token_id", tokenID.String()).
			Msg("Failed to revoke API token")
		return err
	}

	log.Info().
		Int32("store_id", storeID).
		Str("token_id", tokenID.String()).
		Msg("API token revoked")

	return nil
}

// ValidateToken validates an API token and returns the associated token data
func (s *APITokenService) ValidateToken(ctx context.Context, token string) (*domain.APIToken, error) {
	if len(token) < len(domain.APITokenPrefix) || token[:len(domain.APITokenPrefix)] != domain.APITokenPrefix {
		return nil, domain.ErrAPITokenInvalid
	}

	hash := hashToken(token)

	apiToken, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	// Update last used timestamp asynchronously
	go func() {
		if updateErr := s.repo.UpdateLastUsed(context.Background(), apiToken.ID, time.Now()); updateErr != nil {
			log.Error().Err(updateErr).Str("token_id", apiToken.ID.String()).Msg("Failed to update last_used_at")
		}
	}()

	return apiToken, nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() (string, error) {
	bytes := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use URL-safe base64 encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", hash)
}
