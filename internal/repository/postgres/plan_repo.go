package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediario/crediario-backend/internal/domain"
)

// PlanRepository implements domain.InstallmentPlanRepository using PostgreSQL
type PlanRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

const planColumns = `id, store_id, name, number_of_installments, annual_interest_rate,
	down_payment_percent, processing_fee, min_amount, max_amount,
	requires_guarantor, active, created_at, updated_at`

// Create creates a new installment plan
func (r *PlanRepository) Create(plan *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	ctx := context.Background()

	rate, err := decimalToPgNumeric(plan.AnnualInterestRate)
	if err != nil {
		return nil, err
	}
	downPct, err := decimalToPgNumeric(plan.DownPaymentPercent)
	if err != nil {
		return nil, err
	}
	fee, err := decimalToPgNumeric(plan.ProcessingFee)
	if err != nil {
		return nil, err
	}
	minAmount, err := decimalToPgNumeric(plan.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := decimalToPgNumeric(plan.MaxAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO installment_plans
		   (store_id, name, number_of_installments, annual_interest_rate,
		    down_payment_percent, processing_fee, min_amount, max_amount,
		    requires_guarantor, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+planColumns,
		plan.StoreID, plan.Name, plan.NumberOfInstallments, rate,
		downPct, fee, minAmount, maxAmount, plan.RequiresGuarantor, plan.Active)
	return scanPlan(row)
}

// GetByID retrieves a plan by ID within a store
func (r *PlanRepository) GetByID(storeID int32, id int32) (*domain.InstallmentPlan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+planColumns+" FROM installment_plans WHERE id = $1 AND store_id = $2",
		id, storeID)
	return scanPlan(row)
}

// GetAllByStore retrieves all plans for a store
func (r *PlanRepository) GetAllByStore(storeID int32) ([]*domain.InstallmentPlan, error) {
	return r.listPlans(
		"SELECT "+planColumns+" FROM installment_plans WHERE store_id = $1 ORDER BY name",
		storeID)
}

// GetActiveByStore retrieves the plans currently offered at the counter
func (r *PlanRepository) GetActiveByStore(storeID int32) ([]*domain.InstallmentPlan, error) {
	return r.listPlans(
		"SELECT "+planColumns+" FROM installment_plans WHERE store_id = $1 AND active ORDER BY name",
		storeID)
}

func (r *PlanRepository) listPlans(query string, storeID int32) ([]*domain.InstallmentPlan, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.InstallmentPlan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}

// Update updates a plan's terms
func (r *PlanRepository) Update(plan *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	ctx := context.Background()

	rate, err := decimalToPgNumeric(plan.AnnualInterestRate)
	if err != nil {
		return nil, err
	}
	downPct, err := decimalToPgNumeric(plan.DownPaymentPercent)
	if err != nil {
		return nil, err
	}
	fee, err := decimalToPgNumeric(plan.ProcessingFee)
	if err != nil {
		return nil, err
	}
	minAmount, err := decimalToPgNumeric(plan.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := decimalToPgNumeric(plan.MaxAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE installment_plans
		 SET name = $3, number_of_installments = $4, annual_interest_rate = $5,
		     down_payment_percent = $6, processing_fee = $7, min_amount = $8,
		     max_amount = $9, requires_guarantor = $10, updated_at = now()
		 WHERE id = $1 AND store_id = $2
		 RETURNING `+planColumns,
		plan.ID, plan.StoreID, plan.Name, plan.NumberOfInstallments, rate,
		downPct, fee, minAmount, maxAmount, plan.RequiresGuarantor)
	return scanPlan(row)
}

// Deactivate withdraws a plan from the counter
func (r *PlanRepository) Deactivate(storeID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"UPDATE installment_plans SET active = false, updated_at = now() WHERE id = $1 AND store_id = $2",
		id, storeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*domain.InstallmentPlan, error) {
	var (
		plan      domain.InstallmentPlan
		rate      pgtype.Numeric
		downPct   pgtype.Numeric
		fee       pgtype.Numeric
		minAmount pgtype.Numeric
		maxAmount pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&plan.ID, &plan.StoreID, &plan.Name, &plan.NumberOfInstallments,
		&rate, &downPct, &fee, &minAmount, &maxAmount,
		&plan.RequiresGuarantor, &plan.Active, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	plan.AnnualInterestRate = pgNumericToDecimal(rate)
	plan.DownPaymentPercent = pgNumericToDecimal(downPct)
	plan.ProcessingFee = pgNumericToDecimal(fee)
	plan.MinAmount = pgNumericToDecimal(minAmount)
	plan.MaxAmount = pgNumericToDecimal(maxAmount)
	plan.CreatedAt = createdAt.Time
	plan.UpdatedAt = updatedAt.Time
	return &plan, nil
}
