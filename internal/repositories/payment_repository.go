package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"genpay/internal/models"
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *PaymentRepository) WithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// FindRecentDuplicateID looks for a payment with the same client and amount
// recorded at or after since. Returns 0 when there is none. Must run inside
// the payment transaction, after the client row lock, so two concurrent
// identical submissions serialize and the second one sees the first's row.
func (r *PaymentRepository) FindRecentDuplicateID(ctx context.Context, instanceID, clientID int, amount decimal.Decimal, since time.Time) (int, error) {
	const q = `
                SELECT payment_id
                FROM payments
                WHERE instance_id=$1 AND client_id=$2 AND payment_amount=$3 AND date_entered >= $4
                LIMIT 1
        `
	var id int
	if err := r.db.QueryRowContext(ctx, q, instanceID, clientID, amount, since).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("find recent duplicate: %w", err)
	}
	return id, nil
}

// NextPaymentID allocates the next sequential payment id for the instance.
// Callers must hold the instance's settings row lock; a bare MAX()+1 read is
// not safe under concurrent writers.
func (r *PaymentRepository) NextPaymentID(ctx context.Context, instanceID, startID int) (int, error) {
	const q = `
                SELECT COALESCE(MAX(payment_id), $2) + 1
                FROM payments
                WHERE instance_id=$1
        `
	var id int
	if err := r.db.QueryRowContext(ctx, q, instanceID, startID).Scan(&id); err != nil {
		return 0, fmt.Errorf("next payment id: %w", err)
	}
	return id, nil
}

// SumByClient totals all payments already recorded for one client.
func (r *PaymentRepository) SumByClient(ctx context.Context, instanceID, clientID int) (decimal.Decimal, error) {
	const q = `
                SELECT COALESCE(SUM(payment_amount), 0)
                FROM payments
                WHERE instance_id=$1 AND client_id=$2
        `
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, q, instanceID, clientID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum client payments: %w", err)
	}
	return total, nil
}

// SumAll totals every payment recorded for the instance.
func (r *PaymentRepository) SumAll(ctx context.Context, instanceID int) (decimal.Decimal, error) {
	const q = `
                SELECT COALESCE(SUM(payment_amount), 0)
                FROM payments
                WHERE instance_id=$1
        `
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, q, instanceID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}

func (r *PaymentRepository) Insert(ctx context.Context, p *models.Payment) (int64, error) {
	const q = `
                INSERT INTO payments (
                        instance_id, payment_id, client_id, date_entered, username,
                        previous_balance_logged, total_due_before_payment, payment_amount,
                        new_balance, customer_id, monthly_fee, previous_counter,
                        current_counter, total_usage, kilowatt_price, amount_usage,
                        previous_balance_data, current_balance_data, is_first_payment
                ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
                RETURNING id
        `
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		p.InstanceID, p.PaymentID, p.ClientID, p.DateEntered, p.Username,
		p.PrevBalance, p.TotalDueBefore, p.PaymentAmount,
		p.NewBalance, p.CustomerID, p.MonthlyFee, p.PrevCounter,
		p.CurrentCounter, p.TotalUsage, p.KilowattPrice, p.AmountUsage,
		p.PrevBalanceAt, p.CurrentBalAt, p.IsFirstPayment,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return id, nil
}

const paymentColumns = `
                p.id, p.instance_id, p.payment_id, p.client_id, p.date_entered, p.username,
                COALESCE(p.previous_balance_logged, 0), COALESCE(p.total_due_before_payment, 0),
                p.payment_amount, COALESCE(p.new_balance, 0), COALESCE(p.customer_id, ''),
                COALESCE(p.monthly_fee, 0), COALESCE(p.previous_counter, 0), COALESCE(p.current_counter, 0),
                COALESCE(p.total_usage, 0), COALESCE(p.kilowatt_price, 0), COALESCE(p.amount_usage, 0),
                COALESCE(p.previous_balance_data, 0), COALESCE(p.current_balance_data, 0),
                p.is_first_payment, c.name
`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.InstanceID, &p.PaymentID, &p.ClientID, &p.DateEntered, &p.Username,
		&p.PrevBalance, &p.TotalDueBefore,
		&p.PaymentAmount, &p.NewBalance, &p.CustomerID,
		&p.MonthlyFee, &p.PrevCounter, &p.CurrentCounter,
		&p.TotalUsage, &p.KilowattPrice, &p.AmountUsage,
		&p.PrevBalanceAt, &p.CurrentBalAt,
		&p.IsFirstPayment, &p.ClientName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, instanceID, paymentID int) (*models.Payment, error) {
	const q = `
                SELECT` + paymentColumns + `
                FROM payments p
                JOIN clients c ON p.client_id = c.id
                WHERE p.instance_id=$1 AND p.payment_id=$2
        `
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, instanceID, paymentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// List returns ledger rows joined with the client name, newest first.
func (r *PaymentRepository) List(ctx context.Context, instanceID int, f models.PaymentFilter) ([]*models.Payment, error) {
	q := `
                SELECT` + paymentColumns + `
                FROM payments p
                JOIN clients c ON p.client_id = c.id
                WHERE p.instance_id=$1
        `
	args := []any{instanceID}

	if f.ClientName != "" {
		args = append(args, "%"+f.ClientName+"%")
		q += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}
	if f.Username != "" {
		args = append(args, "%"+f.Username+"%")
		q += fmt.Sprintf(" AND p.username ILIKE $%d", len(args))
	}
	if f.FromDate != "" {
		args = append(args, f.FromDate)
		q += fmt.Sprintf(" AND DATE(p.date_entered) >= $%d", len(args))
	}
	if f.ToDate != "" {
		args = append(args, f.ToDate)
		q += fmt.Sprintf(" AND DATE(p.date_entered) <= $%d", len(args))
	}
	q += " ORDER BY p.date_entered DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var res []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
