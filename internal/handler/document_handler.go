package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/service"
)

// DocumentHandler handles contract document HTTP requests
type DocumentHandler struct {
	documentService *service.DocumentService
	contractService *service.ContractService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService, contractService *service.ContractService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		contractService: contractService,
	}
}

var documentVariants = map[string]bool{
	"thumb":    true,
	"display":  true,
	"original": true,
}

// ownsContract verifies the contract belongs to the caller's store
func (h *DocumentHandler) ownsContract(c echo.Context, storeID, contractID int32) error {
	_, err := h.contractService.GetContract(storeID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		log.Error().Err(err).Int32("contract_id", contractID).Msg("Failed to get contract")
		return NewInternalError(c, "Failed to get contract")
	}
	return nil
}

// UploadDocument handles POST /api/v1/contracts/:id/documents
// Expects a multipart form with a "file" field containing the scanned image.
func (h *DocumentHandler) UploadDocument(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	if resp := h.ownsContract(c, storeID, contractID); resp != nil {
		return resp
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Missing file", []ValidationError{
			{Field: "file", Message: "A file is required"},
		})
	}

	if fileHeader.Size > service.MaxDocumentSize {
		return NewValidationError(c, "File too large", []ValidationError{
			{Field: "file", Message: service.ErrDocumentTooLarge.Error()},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxDocumentSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	metadata, err := h.documentService.ProcessAndUpload(c.Request().Context(), storeID, contractID, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentTooLarge),
			errors.Is(err, service.ErrDocumentInvalidFormat),
			errors.Is(err, service.ErrDocumentTooSmall),
			errors.Is(err, service.ErrDocumentInvalidData):
			return NewValidationError(c, "Invalid document", []ValidationError{
				{Field: "file", Message: err.Error()},
			})
		case errors.Is(err, service.ErrDocumentStorageNotEnabled):
			return NewConflictError(c, "Document storage is not configured")
		}
		log.Error().Err(err).Int32("contract_id", contractID).Msg("Failed to upload document")
		return NewInternalError(c, "Failed to upload document")
	}

	return c.JSON(http.StatusCreated, metadata)
}

// DocumentURLResponse carries a short-lived presigned URL
type DocumentURLResponse struct {
	URL string `json:"url"`
}

// GetDocumentURL handles GET /api/v1/contracts/:id/documents/:documentId/url
// Pass ?variant=thumb|display|original; defaults to display.
func (h *DocumentHandler) GetDocumentURL(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	if resp := h.ownsContract(c, storeID, contractID); resp != nil {
		return resp
	}

	variant := c.QueryParam("variant")
	if variant == "" {
		variant = "display"
	}
	if !documentVariants[variant] {
		return NewValidationError(c, "Invalid variant", []ValidationError{
			{Field: "variant", Message: "Must be one of: thumb, display, original"},
		})
	}

	documentID := c.Param("documentId")
	objectPath := fmt.Sprintf("%d/contracts/%d/%s_%s.jpg", storeID, contractID, documentID, variant)

	url, err := h.documentService.GetDocumentURL(c.Request().Context(), objectPath)
	if err != nil {
		if errors.Is(err, service.ErrDocumentStorageNotEnabled) {
			return NewConflictError(c, "Document storage is not configured")
		}
		log.Error().Err(err).Str("document_id", documentID).Msg("Failed to generate document URL")
		return NewInternalError(c, "Failed to generate document URL")
	}

	return c.JSON(http.StatusOK, DocumentURLResponse{URL: url})
}

// DeleteDocument handles DELETE /api/v1/contracts/:id/documents/:documentId
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	contractID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	if resp := h.ownsContract(c, storeID, contractID); resp != nil {
		return resp
	}

	documentID := c.Param("documentId")
	if err := h.documentService.DeleteDocument(c.Request().Context(), storeID, contractID, documentID); err != nil {
		if errors.Is(err, service.ErrDocumentStorageNotEnabled) {
			return NewConflictError(c, "Document storage is not configured")
		}
		log.Error().Err(err).Str("document_id", documentID).Msg("Failed to delete document")
		return NewInternalError(c, "Failed to delete document")
	}

	return c.NoContent(http.StatusNoContent)
}
