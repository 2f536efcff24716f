package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/crediario/crediario-backend/internal/repository/storage"
)

const (
	MaxDocumentSize  = 10 * 1024 * 1024 // 10MB
	MinDocumentWidth = 200              // signed contract scans below this are unreadable
	ThumbnailWidth   = 200
	DisplayWidth     = 1200
	JPEGQuality      = 85

	presignedURLExpiry = 15 * time.Minute
)

var (
	ErrDocumentTooLarge          = errors.New("file too large. Maximum size is 10MB")
	ErrDocumentInvalidFormat     = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrDocumentTooSmall          = errors.New("image resolution too low to be legible")
	ErrDocumentInvalidData       = errors.New("invalid image data")
	ErrDocumentStorageNotEnabled = errors.New("document storage not configured")
)

// allowedDocumentExtensions maps extensions to content types
var allowedDocumentExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// DocumentMetadata identifies the stored variants of an uploaded document
type DocumentMetadata struct {
	ID            string `json:"id"`
	ThumbnailPath string `json:"thumbnailPath"`
	DisplayPath   string `json:"displayPath"`
	OriginalPath  string `json:"originalPath"`
}

// DocumentService stores scanned contract documents (signed contracts,
// customer IDs, guarantor IDs)
type DocumentService struct {
	storage storage.DocumentRepository
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(storage storage.DocumentRepository) *DocumentService {
	return &DocumentService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *DocumentService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

func (s *DocumentService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedDocumentExtensions[ext]; !ok {
		return nil, ErrDocumentInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrDocumentInvalidData
	}

	if img.Bounds().Dx() < MinDocumentWidth {
		return nil, ErrDocumentTooSmall
	}

	return img, nil
}

// ProcessAndUpload validates a document scan, generates resized variants and
// uploads all of them under the contract's path
func (s *DocumentService) ProcessAndUpload(ctx context.Context, storeID int32, contractID int32, data []byte, filename string) (*DocumentMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrDocumentStorageNotEnabled
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	documentID := uuid.New().String()

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	paths := make(map[string]string)

	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}

		objectPath := fmt.Sprintf("%d/contracts/%d/%s_%s.jpg", storeID, contractID, documentID, variant.name)

		uploaded, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanupVariants(ctx, paths)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}

		paths[variant.name] = uploaded
	}

	return &DocumentMetadata{
		ID:            documentID,
		ThumbnailPath: paths["thumb"],
		DisplayPath:   paths["display"],
		OriginalPath:  paths["original"],
	}, nil
}

// cleanupVariants removes variants uploaded before a failed variant
func (s *DocumentService) cleanupVariants(ctx context.Context, paths map[string]string) {
	for _, p := range paths {
		_ = s.storage.Delete(ctx, p)
	}
}

// GetDocumentURL returns a short-lived presigned URL for a stored document
func (s *DocumentService) GetDocumentURL(ctx context.Context, objectPath string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrDocumentStorageNotEnabled
	}
	return s.storage.GeneratePresignedURL(ctx, objectPath, presignedURLExpiry)
}

// DeleteDocument removes all variants of a document
func (s *DocumentService) DeleteDocument(ctx context.Context, storeID int32, contractID int32, documentID string) error {
	if !s.IsEnabled() {
		return ErrDocumentStorageNotEnabled
	}

	for _, variant := range []string{"thumb", "display", "original"} {
		objectPath := fmt.Sprintf("%d/contracts/%d/%s_%s.jpg", storeID, contractID, documentID, variant)
		if err := s.storage.Delete(ctx, objectPath); err != nil {
			return err
		}
	}
	return nil
}

// DocumentContentType returns the content type for a file extension
func DocumentContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := allowedDocumentExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
