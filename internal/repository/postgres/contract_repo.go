package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// ContractRepository implements domain.InstallmentContractRepository using PostgreSQL
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new ContractRepository
func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

const contractColumns = `id, store_id, customer_id, plan_id, number_of_installments,
	annual_interest_rate, down_payment_percent, processing_fee,
	total_amount, down_payment, financed_amount, monthly_payment,
	guarantor_name, status, originated_at, cancelled_at, created_at, updated_at`

// CreateTx creates a new contract within a transaction
func (r *ContractRepository) CreateTx(tx any, contract *domain.InstallmentContract) (*domain.InstallmentContract, error) {
	ctx := context.Background()
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}

	rate, err := decimalToPgNumeric(contract.AnnualInterestRate)
	if err != nil {
		return nil, err
	}
	downPct, err := decimalToPgNumeric(contract.DownPaymentPercent)
	if err != nil {
		return nil, err
	}
	fee, err := decimalToPgNumeric(contract.ProcessingFee)
	if err != nil {
		return nil, err
	}
	total, err := decimalToPgNumeric(contract.TotalAmount)
	if err != nil {
		return nil, err
	}
	down, err := decimalToPgNumeric(contract.DownPayment)
	if err != nil {
		return nil, err
	}
	financed, err := decimalToPgNumeric(contract.FinancedAmount)
	if err != nil {
		return nil, err
	}
	monthly, err := decimalToPgNumeric(contract.MonthlyPayment)
	if err != nil {
		return nil, err
	}

	row := pgxTx.QueryRow(ctx,
		`INSERT INTO installment_contracts
		   (store_id, customer_id, plan_id, number_of_installments,
		    annual_interest_rate, down_payment_percent, processing_fee,
		    total_amount, down_payment, financed_amount, monthly_payment,
		    guarantor_name, status, originated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+contractColumns,
		contract.StoreID, pgtype.UUID{Bytes: contract.CustomerID, Valid: true},
		contract.PlanID, contract.NumberOfInstallments,
		rate, downPct, fee, total, down, financed, monthly,
		contract.GuarantorName, string(contract.Status), contract.OriginatedAt)
	return scanContract(row)
}

// GetByID retrieves a contract by ID within a store
func (r *ContractRepository) GetByID(storeID int32, id int32) (*domain.InstallmentContract, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+contractColumns+" FROM installment_contracts WHERE id = $1 AND store_id = $2",
		id, storeID)
	return scanContract(row)
}

// GetAllByStore retrieves all contracts for a store
func (r *ContractRepository) GetAllByStore(storeID int32) ([]*domain.InstallmentContract, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+contractColumns+" FROM installment_contracts WHERE store_id = $1 ORDER BY originated_at DESC",
		storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

// GetByCustomer retrieves a customer's contracts within a store
func (r *ContractRepository) GetByCustomer(storeID int32, customerID uuid.UUID) ([]*domain.InstallmentContract, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM installment_contracts
		 WHERE store_id = $1 AND customer_id = $2
		 ORDER BY originated_at DESC`,
		storeID, pgtype.UUID{Bytes: customerID, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

// UpdateStatus updates a contract's status. cancelled_at is set when moving
// to cancelled and cleared otherwise.
func (r *ContractRepository) UpdateStatus(storeID int32, id int32, status domain.ContractStatus, at time.Time) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, updateContractStatusSQL+" AND store_id = $4",
		string(status), at, id, storeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

// UpdateStatusTx updates a contract's status within a transaction
func (r *ContractRepository) UpdateStatusTx(tx any, id int32, status domain.ContractStatus, at time.Time) error {
	ctx := context.Background()
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}
	tag, err := pgxTx.Exec(ctx, updateContractStatusSQL, string(status), at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

const updateContractStatusSQL = `UPDATE installment_contracts
	SET status = $1,
	    cancelled_at = CASE WHEN $1 = 'cancelled' THEN $2 ELSE NULL END,
	    updated_at = $2
	WHERE id = $3`

func collectContracts(rows pgx.Rows) ([]*domain.InstallmentContract, error) {
	result := make([]*domain.InstallmentContract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}

func scanContract(row pgx.Row) (*domain.InstallmentContract, error) {
	var (
		contract     domain.InstallmentContract
		customerID   pgtype.UUID
		rate         pgtype.Numeric
		downPct      pgtype.Numeric
		fee          pgtype.Numeric
		total        pgtype.Numeric
		down         pgtype.Numeric
		financed     pgtype.Numeric
		monthly      pgtype.Numeric
		status       string
		originatedAt pgtype.Timestamptz
		cancelledAt  pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(&contract.ID, &contract.StoreID, &customerID, &contract.PlanID,
		&contract.NumberOfInstallments, &rate, &downPct, &fee,
		&total, &down, &financed, &monthly,
		&contract.GuarantorName, &status, &originatedAt, &cancelledAt, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	contract.CustomerID = uuid.UUID(customerID.Bytes)
	contract.AnnualInterestRate = pgNumericToDecimal(rate)
	contract.DownPaymentPercent = pgNumericToDecimal(downPct)
	contract.ProcessingFee = pgNumericToDecimal(fee)
	contract.TotalAmount = pgNumericToDecimal(total)
	contract.DownPayment = pgNumericToDecimal(down)
	contract.FinancedAmount = pgNumericToDecimal(financed)
	contract.MonthlyPayment = pgNumericToDecimal(monthly)
	contract.Status = domain.ContractStatus(status)
	contract.OriginatedAt = originatedAt.Time
	if cancelledAt.Valid {
		contract.CancelledAt = &cancelledAt.Time
	}
	contract.CreatedAt = createdAt.Time
	contract.UpdatedAt = updatedAt.Time
	return &contract, nil
}

// Numeric conversion helpers

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
