package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediario/crediario-backend/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = "id, store_id, name, email, phone, document, created_at, updated_at"

// Create creates a new customer
func (r *CustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO customers (store_id, name, email, phone, document)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+customerColumns,
		customer.StoreID, customer.Name, customer.Email, customer.Phone, customer.Document)
	return scanCustomer(row)
}

// GetByID retrieves a customer by ID within a store
func (r *CustomerRepository) GetByID(storeID int32, id uuid.UUID) (*domain.Customer, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1 AND store_id = $2",
		pgtype.UUID{Bytes: id, Valid: true}, storeID)
	return scanCustomer(row)
}

// GetAllByStore retrieves all customers for a store
func (r *CustomerRepository) GetAllByStore(storeID int32) ([]*domain.Customer, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE store_id = $1 ORDER BY name", storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

// Update updates a customer's contact details
func (r *CustomerRepository) Update(customer *domain.Customer) (*domain.Customer, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE customers
		 SET name = $3, email = $4, phone = $5, document = $6, updated_at = now()
		 WHERE id = $1 AND store_id = $2
		 RETURNING `+customerColumns,
		pgtype.UUID{Bytes: customer.ID, Valid: true}, customer.StoreID,
		customer.Name, customer.Email, customer.Phone, customer.Document)
	return scanCustomer(row)
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		customer  domain.Customer
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &customer.StoreID, &customer.Name, &customer.Email,
		&customer.Phone, &customer.Document, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	customer.ID = uuid.UUID(id.Bytes)
	customer.CreatedAt = createdAt.Time
	customer.UpdatedAt = updatedAt.Time
	return &customer, nil
}
