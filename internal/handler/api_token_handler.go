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

// APITokenHandler handles API token management HTTP requests
type APITokenHandler struct {
	tokenService *service.APITokenService
}

// NewAPITokenHandler creates a new APITokenHandler
func NewAPITokenHandler(tokenService *service.APITokenService) *APITokenHandler {
	return &APITokenHandler{tokenService: tokenService}
}

// CreateAPITokenRequest represents the create token request body
type CreateAPITokenRequest struct {
	Name string `json:"name"`
}

// CreateToken handles POST /api/v1/api-tokens
func (h *APITokenHandler) CreateToken(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	var req CreateAPITokenRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.tokenService.Create(c.Request().Context(), storeID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAPITokenNameEmpty), errors.Is(err, domain.ErrAPITokenNameTooLong):
			return NewValidationError(c, "Invalid token name", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		case errors.Is(err, domain.ErrAPITokenLimitReached):
			return NewConflictError(c, "Maximum number of API tokens reached")
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to create API token")
		return NewInternalError(c, "Failed to create API token")
	}

	return c.JSON(http.StatusCreated, result)
}

// ListTokens handles GET /api/v1/api-tokens
func (h *APITokenHandler) ListTokens(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	tokens, err := h.tokenService.GetByStore(c.Request().Context(), storeID)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to list API tokens")
		return NewInternalError(c, "Failed to list API tokens")
	}

	return c.JSON(http.StatusOK, tokens)
}

// RevokeToken handles DELETE /api/v1/api-tokens/:id
func (h *APITokenHandler) RevokeToken(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid token ID", nil)
	}

	if err := h.tokenService.Revoke(c.Request().Context(), storeID, tokenID); err != nil {
		if errors.Is(err, domain.ErrAPITokenNotFound) {
			return NewNotFoundError(c, "API token not found")
		}
		log.Error().Err(err).Str("token_id", tokenID.String()).Msg("Failed to revoke API token")
		return NewInternalError(c, "Failed to revoke API token")
	}

	return c.NoContent(http.StatusNoContent)
}
