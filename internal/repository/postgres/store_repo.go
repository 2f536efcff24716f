package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediario/crediario-backend/internal/domain"
)

// StoreRepository implements domain.StoreRepository using PostgreSQL
type StoreRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository creates a new StoreRepository
func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

const storeColumns = "id, owner_id, name, created_at, updated_at"

// GetByID retrieves a store by its ID
func (r *StoreRepository) GetByID(id int32) (*domain.Store, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+storeColumns+" FROM stores WHERE id = $1", id)
	return scanStore(row)
}

// GetByOwnerID retrieves the store owned by a user
func (r *StoreRepository) GetByOwnerID(ownerID uuid.UUID) (*domain.Store, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+storeColumns+" FROM stores WHERE owner_id = $1",
		pgtype.UUID{Bytes: ownerID, Valid: true})
	return scanStore(row)
}

// GetByOwnerAuth0ID retrieves the store owned by an Auth0 subject
func (r *StoreRepository) GetByOwnerAuth0ID(auth0ID string) (*domain.Store, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT s.id, s.owner_id, s.name, s.created_at, s.updated_at
		 FROM stores s
		 JOIN users u ON u.id = s.owner_id
		 WHERE u.auth0_id = $1`, auth0ID)
	return scanStore(row)
}

// Create creates a new store
func (r *StoreRepository) Create(store *domain.Store) (*domain.Store, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO stores (owner_id, name)
		 VALUES ($1, $2)
		 RETURNING `+storeColumns,
		pgtype.UUID{Bytes: store.OwnerID, Valid: true}, store.Name)
	return scanStore(row)
}

// Update updates a store's name
func (r *StoreRepository) Update(store *domain.Store) (*domain.Store, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE stores SET name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+storeColumns,
		store.ID, store.Name)
	return scanStore(row)
}

func scanStore(row pgx.Row) (*domain.Store, error) {
	var (
		store     domain.Store
		ownerID   pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&store.ID, &ownerID, &store.Name, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrStoreNotFound
		}
		return nil, err
	}
	store.OwnerID = uuid.UUID(ownerID.Bytes)
	store.CreatedAt = createdAt.Time
	store.UpdatedAt = updatedAt.Time
	return &store, nil
}
