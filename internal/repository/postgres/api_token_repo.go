package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediario/crediario-backend/internal/domain"
)

// APITokenRepository implements domain.APITokenRepository using PostgreSQL
type APITokenRepository struct {
	pool *pgxpool.Pool
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(pool *pgxpool.Pool) *APITokenRepository {
	return &APITokenRepository{pool: pool}
}

const apiTokenColumns = "id, store_id, name, token_hash, token_prefix, last_used_at, created_at"

// Create creates a new API token
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) (*domain.APIToken, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO api_tokens (store_id, name, token_hash, token_prefix)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+apiTokenColumns,
		token.StoreID, token.Name, token.TokenHash, token.TokenPrefix)
	return scanAPIToken(row)
}

// GetByHash retrieves an API token by its hash (for authentication)
func (r *APITokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE token_hash = $1", tokenHash)
	return scanAPIToken(row)
}

// GetAllByStore retrieves all API tokens for a store
func (r *APITokenRepository) GetAllByStore(ctx context.Context, storeID int32) ([]*domain.APIToken, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE store_id = $1 ORDER BY created_at DESC",
		storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.APIToken, 0)
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, token)
	}
	return result, rows.Err()
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE api_tokens SET last_used_at = $2 WHERE id = $1",
		pgtype.UUID{Bytes: id, Valid: true}, at)
	return err
}

// Revoke deletes an API token
func (r *APITokenRepository) Revoke(ctx context.Context, storeID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM api_tokens WHERE id = $1 AND store_id = $2",
		pgtype.UUID{Bytes: id, Valid: true}, storeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPITokenNotFound
	}
	return nil
}

func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var (
		token      domain.APIToken
		id         pgtype.UUID
		lastUsedAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(&id, &token.StoreID, &token.Name, &token.TokenHash,
		&token.TokenPrefix, &lastUsedAt, &createdAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAPITokenNotFound
		}
		return nil, err
	}
	token.ID = uuid.UUID(id.Bytes)
	if lastUsedAt.Valid {
		token.LastUsedAt = &lastUsedAt.Time
	}
	token.CreatedAt = createdAt.Time
	return &token, nil
}
