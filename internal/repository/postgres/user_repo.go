package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediario/crediario-backend/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, auth0_id, email, name, picture_url, created_at, updated_at"

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		pgtype.UUID{Bytes: id, Valid: true})
	return scanUser(row)
}

// GetByAuth0ID retrieves a user by their Auth0 subject
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE auth0_id = $1", auth0ID)
	return scanUser(row)
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		user.Auth0ID, user.Email, user.Name, user.PictureURL)
	return scanUser(row)
}

// Update updates a user's profile fields
func (r *UserRepository) Update(user *domain.User) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET email = $2, name = $3, picture_url = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		pgtype.UUID{Bytes: user.ID, Valid: true}, user.Email, user.Name, user.PictureURL)
	return scanUser(row)
}

// CreateOrGetByAuth0ID creates the user if this Auth0 subject has never
// logged in before, otherwise returns the existing row
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (auth0_id) DO UPDATE SET
		   email = EXCLUDED.email,
		   name = COALESCE(EXCLUDED.name, users.name),
		   picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
		   updated_at = now()
		 RETURNING `+userColumns,
		auth0ID, email, name, pictureURL)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &user.Auth0ID, &user.Email, &user.Name, &user.PictureURL, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	user.ID = uuid.UUID(id.Bytes)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}
