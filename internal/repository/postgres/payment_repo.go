package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
)

// PaymentRepository implements domain.InstallmentPaymentRepository using PostgreSQL
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, contract_id, installment_number, due_date, amount,
	principal_portion, interest_portion, paid, paid_date,
	late_fee_paid, amount_paid, created_at, updated_at`

// CreateBatchTx inserts a contract's full payment schedule within a transaction
func (r *PaymentRepository) CreateBatchTx(tx any, payments []*domain.InstallmentPayment) error {
	ctx := context.Background()
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}

	for _, p := range payments {
		amount, err := decimalToPgNumeric(p.Amount)
		if err != nil {
			return err
		}
		principal, err := decimalToPgNumeric(p.PrincipalPortion)
		if err != nil {
			return err
		}
		interest, err := decimalToPgNumeric(p.InterestPortion)
		if err != nil {
			return err
		}

		err = pgxTx.QueryRow(ctx,
			`INSERT INTO installment_payments
			   (contract_id, installment_number, due_date, amount,
			    principal_portion, interest_portion)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			p.ContractID, p.InstallmentNumber, p.DueDate, amount, principal, interest,
		).Scan(&p.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByContractID retrieves a contract's payment schedule ordered by installment number
func (r *PaymentRepository) GetByContractID(contractID int32) ([]*domain.InstallmentPayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+paymentColumns+" FROM installment_payments WHERE contract_id = $1 ORDER BY installment_number",
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// GetByStore retrieves every payment row for a store's contracts, grouped by
// contract ID. Used to derive statuses across the whole book in one query.
func (r *PaymentRepository) GetByStore(storeID int32) (map[int32][]*domain.InstallmentPayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.contract_id, p.installment_number, p.due_date, p.amount,
		        p.principal_portion, p.interest_portion, p.paid, p.paid_date,
		        p.late_fee_paid, p.amount_paid, p.created_at, p.updated_at
		 FROM installment_payments p
		 JOIN installment_contracts c ON c.id = p.contract_id
		 WHERE c.store_id = $1
		 ORDER BY p.contract_id, p.installment_number`,
		storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int32][]*domain.InstallmentPayment)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result[payment.ContractID] = append(result[payment.ContractID], payment)
	}
	return result, rows.Err()
}

// GetByContractAndNumber retrieves one installment of a contract
func (r *PaymentRepository) GetByContractAndNumber(contractID int32, installmentNumber int32) (*domain.InstallmentPayment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+paymentColumns+" FROM installment_payments WHERE contract_id = $1 AND installment_number = $2",
		contractID, installmentNumber)
	return scanPayment(row)
}

// MarkPaidTx records a payment against an installment within a transaction.
// The paid guard in the WHERE clause makes double collection fail even under
// concurrent requests.
func (r *PaymentRepository) MarkPaidTx(tx any, id int32, paidDate time.Time, lateFee, amountPaid decimal.Decimal) error {
	ctx := context.Background()
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}

	fee, err := decimalToPgNumeric(lateFee)
	if err != nil {
		return err
	}
	paid, err := decimalToPgNumeric(amountPaid)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(ctx,
		`UPDATE installment_payments
		 SET paid = true, paid_date = $2, late_fee_paid = $3, amount_paid = $4, updated_at = $2
		 WHERE id = $1 AND NOT paid`,
		id, paidDate, fee, paid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentAlreadyRecorded
	}
	return nil
}

// GetNewlyOverdue finds unpaid installments on collectible contracts whose due
// date fell within the window before asOf, joined with customer contact data
func (r *PaymentRepository) GetNewlyOverdue(asOf time.Time, window time.Duration) ([]*domain.OverdueNotice, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT c.store_id, p.contract_id, p.installment_number, p.due_date, p.amount,
		        cu.name, cu.email
		 FROM installment_payments p
		 JOIN installment_contracts c ON c.id = p.contract_id
		 JOIN customers cu ON cu.id = c.customer_id
		 WHERE NOT p.paid
		   AND c.status IN ('active', 'defaulted')
		   AND p.due_date < date_trunc('day', $1::timestamptz)
		   AND p.due_date >= $1::timestamptz - $2::interval
		 ORDER BY p.due_date`,
		asOf, window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.OverdueNotice, 0)
	for rows.Next() {
		var (
			notice  domain.OverdueNotice
			dueDate pgtype.Timestamptz
			amount  pgtype.Numeric
		)
		err := rows.Scan(&notice.StoreID, &notice.ContractID, &notice.InstallmentNumber,
			&dueDate, &amount, &notice.CustomerName, &notice.CustomerEmail)
		if err != nil {
			return nil, err
		}
		notice.DueDate = dueDate.Time
		notice.Amount = pgNumericToDecimal(amount)
		result = append(result, &notice)
	}
	return result, rows.Err()
}

// SumCollectedSince totals everything collected for a store since a point in time
func (r *PaymentRepository) SumCollectedSince(storeID int32, since time.Time) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(p.amount_paid), 0)
		 FROM installment_payments p
		 JOIN installment_contracts c ON c.id = p.contract_id
		 WHERE c.store_id = $1 AND p.paid AND p.paid_date >= $2`,
		storeID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

func collectPayments(rows pgx.Rows) ([]*domain.InstallmentPayment, error) {
	result := make([]*domain.InstallmentPayment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.InstallmentPayment, error) {
	var (
		payment   domain.InstallmentPayment
		dueDate   pgtype.Timestamptz
		paidDate  pgtype.Timestamptz
		amount    pgtype.Numeric
		principal pgtype.Numeric
		interest  pgtype.Numeric
		lateFee   pgtype.Numeric
		paidTotal pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&payment.ID, &payment.ContractID, &payment.InstallmentNumber,
		&dueDate, &amount, &principal, &interest, &payment.Paid, &paidDate,
		&lateFee, &paidTotal, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	payment.DueDate = dueDate.Time
	if paidDate.Valid {
		payment.PaidDate = &paidDate.Time
	}
	payment.Amount = pgNumericToDecimal(amount)
	payment.PrincipalPortion = pgNumericToDecimal(principal)
	payment.InterestPortion = pgNumericToDecimal(interest)
	payment.LateFeePaid = pgNumericToDecimal(lateFee)
	payment.AmountPaid = pgNumericToDecimal(paidTotal)
	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time
	return &payment, nil
}
