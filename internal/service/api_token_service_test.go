package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/testutil"
)

func TestAPITokenCreate(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	result, err := svc.Create(context.Background(), 1, "pos-terminal")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(result.Token, domain.APITokenPrefix) {
		t.Errorf("expected token to start with %q, got %q", domain.APITokenPrefix, result.Token[:10])
	}
	if !strings.HasPrefix(result.TokenPrefix, domain.APITokenPrefix) {
		t.Errorf("expected display prefix to start with %q, got %q", domain.APITokenPrefix, result.TokenPrefix)
	}
	if !strings.HasSuffix(result.TokenPrefix, "...") {
		t.Errorf("expected display prefix to be truncated, got %q", result.TokenPrefix)
	}

	stored := repo.Tokens[result.ID]
	if stored == nil {
		t.Fatal("expected token to be stored")
	}
	if stored.TokenHash == result.Token {
		t.Error("expected only a hash to be stored, not the plaintext token")
	}
	if len(stored.TokenHash) != 64 {
		t.Errorf("expected a sha256 hex hash, got %d chars", len(stored.TokenHash))
	}
}

func TestAPITokenCreate_LimitReached(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	for i := 0; i < domain.MaxAPITokensPerStore; i++ {
		if _, err := svc.Create(context.Background(), 1, fmt.Sprintf("token-%d", i)); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	_, err := svc.Create(context.Background(), 1, "one-too-many")
	if err != domain.ErrAPITokenLimitReached {
		t.Errorf("expected ErrAPITokenLimitReached, got %v", err)
	}

	// The limit is per store
	if _, err := svc.Create(context.Background(), 2, "other-store"); err != nil {
		t.Errorf("expected other store to be unaffected, got %v", err)
	}
}

func TestValidateToken(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	result, err := svc.Create(context.Background(), 1, "pos-terminal")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	validated, err := svc.ValidateToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if validated.StoreID != 1 {
		t.Errorf("expected store ID 1, got %d", validated.StoreID)
	}
	if validated.ID != result.ID {
		t.Error("expected the created token to be returned")
	}
}

func TestValidateToken_BadPrefix(t *testing.T) {
	svc := NewAPITokenService(testutil.NewMockAPITokenRepository())

	_, err := svc.ValidateToken(context.Background(), "sk_not_ours_abcdef")
	if err != domain.ErrAPITokenInvalid {
		t.Errorf("expected ErrAPITokenInvalid, got %v", err)
	}
}

func TestValidateToken_Unknown(t *testing.T) {
	svc := NewAPITokenService(testutil.NewMockAPITokenRepository())

	_, err := svc.ValidateToken(context.Background(), domain.APITokenPrefix+"does-not-exist")
	if err != domain.ErrAPITokenNotFound {
		t.Errorf("expected ErrAPITokenNotFound, got %v", err)
	}
}

func TestRevokeToken(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	result, err := svc.Create(context.Background(), 1, "pos-terminal")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Revoke(context.Background(), 1, result.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	_, err = svc.ValidateToken(context.Background(), result.Token)
	if err != domain.ErrAPITokenNotFound {
		t.Errorf("expected revoked token to be rejected, got %v", err)
	}
}

func TestRevokeToken_WrongStore(t *testing.T) {
	repo := testutil.NewMockAPITokenRepository()
	svc := NewAPITokenService(repo)

	result, err := svc.Create(context.Background(), 1, "pos-terminal")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Revoke(context.Background(), 2, result.ID); err != domain.ErrAPITokenNotFound {
		t.Errorf("expected ErrAPITokenNotFound for wrong store, got %v", err)
	}
}
