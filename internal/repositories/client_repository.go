package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"genpay/internal/models"
)

type ClientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *ClientRepository) WithTx(tx *sql.Tx) *ClientRepository {
	return &ClientRepository{db: tx}
}

const clientColumns = `
                id, instance_id, name,
                COALESCE(monthly_fee, 0), COALESCE(prev_counter, 0), COALESCE(current_counter, 0),
                COALESCE(total_usage, 0), COALESCE(kilowatt_price, 0), COALESCE(amount_usage, 0),
                COALESCE(prev_balance, 0), COALESCE(current_balance, 0), COALESCE(payment_amt, 0),
                COALESCE(new_balance, 0), COALESCE(last_paid_by, ''), COALESCE(pay_id, ''),
                COALESCE(cust_id, ''), COALESCE(phone, ''), COALESCE(address, ''), COALESCE(notes, ''),
                is_active, created_at, updated_at
`

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID, &c.InstanceID, &c.Name,
		&c.MonthlyFee, &c.PrevCounter, &c.CurrentCounter,
		&c.TotalUsage, &c.KilowattPrice, &c.AmountUsage,
		&c.PrevBalance, &c.CurrentBalance, &c.PaymentAmt,
		&c.NewBalance, &c.LastPaidBy, &c.PayID,
		&c.CustID, &c.Phone, &c.Address, &c.Notes,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) GetActiveByName(ctx context.Context, instanceID int, name string) (*models.Client, error) {
	const q = `
                SELECT` + clientColumns + `
                FROM clients
                WHERE instance_id=$1 AND name=$2 AND is_active=TRUE
        `
	c, err := scanClient(r.db.QueryRowContext(ctx, q, instanceID, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by name: %w", err)
	}
	return c, nil
}

// GetActiveByNameForUpdate is GetActiveByName with a row lock. The payment
// transaction uses it so concurrent submissions for the same client queue up
// instead of reading stale balances.
func (r *ClientRepository) GetActiveByNameForUpdate(ctx context.Context, instanceID int, name string) (*models.Client, error) {
	const q = `
                SELECT` + clientColumns + `
                FROM clients
                WHERE instance_id=$1 AND name=$2 AND is_active=TRUE
                FOR UPDATE
        `
	c, err := scanClient(r.db.QueryRowContext(ctx, q, instanceID, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lock client by name: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) ListActive(ctx context.Context, instanceID int) ([]*models.Client, error) {
	const q = `
                SELECT` + clientColumns + `
                FROM clients
                WHERE instance_id=$1 AND is_active=TRUE
                ORDER BY name
        `
	rows, err := r.db.QueryContext(ctx, q, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var res []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ClientRepository) Search(ctx context.Context, instanceID int, term string, limit int) ([]*models.ClientSearchRow, error) {
	const q = `
                SELECT id, name, COALESCE(current_balance, 0), COALESCE(payment_amt, 0)
                FROM clients
                WHERE instance_id=$1 AND is_active=TRUE AND name ILIKE $2
                ORDER BY name
                LIMIT $3
        `
	rows, err := r.db.QueryContext(ctx, q, instanceID, "%"+strings.TrimSpace(term)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	defer rows.Close()

	var res []*models.ClientSearchRow
	for rows.Next() {
		var row models.ClientSearchRow
		if err := rows.Scan(&row.ID, &row.Name, &row.CurrentBalance, &row.LastPayment); err != nil {
			return nil, err
		}
		res = append(res, &row)
	}
	return res, rows.Err()
}

// ClientPaymentUpdate carries the running totals written back to the client
// row at the end of a payment transaction.
type ClientPaymentUpdate struct {
	PaymentAmt     decimal.Decimal
	NewBalance     decimal.Decimal
	LastPaidBy     string
	AmountUsage    decimal.Decimal
	TotalUsage     int
	CurrentBalance decimal.Decimal
	PayID          string
}

// UpdateAfterPayment writes the post-payment totals. pay_id is only set while
// the row still shows no cumulative payments, i.e. on the first payment; the
// CASE sees the pre-update value.
func (r *ClientRepository) UpdateAfterPayment(ctx context.Context, clientID int, u ClientPaymentUpdate) error {
	const q = `
                UPDATE clients
                SET payment_amt=$1,
                    new_balance=$2,
                    last_paid_by=$3,
                    amount_usage=$4,
                    total_usage=$5,
                    current_balance=$6,
                    pay_id = CASE WHEN COALESCE(payment_amt, 0) = 0 THEN $7 ELSE pay_id END,
                    updated_at = NOW()
                WHERE id=$8
        `
	if _, err := r.db.ExecContext(ctx, q,
		u.PaymentAmt, u.NewBalance, u.LastPaidBy,
		u.AmountUsage, u.TotalUsage, u.CurrentBalance,
		u.PayID, clientID,
	); err != nil {
		return fmt.Errorf("update client after payment: %w", err)
	}
	return nil
}
