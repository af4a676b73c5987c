package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"genpay/internal/models"
)

type SettingsRepository struct {
	db DBTX
}

func NewSettingsRepository(db DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *SettingsRepository) WithTx(tx *sql.Tx) *SettingsRepository {
	return &SettingsRepository{db: tx}
}

func (r *SettingsRepository) Get(ctx context.Context, instanceID int) (*models.Settings, error) {
	const q = `
                SELECT header_title, receipt_header, payment_id_start, COALESCE(currency_symbol, '')
                FROM app_settings
                WHERE instance_id=$1
        `
	s := models.Settings{InstanceID: instanceID}
	err := r.db.QueryRowContext(ctx, q, instanceID).Scan(
		&s.HeaderTitle, &s.ReceiptHeader, &s.PaymentIDStart, &s.CurrencySymbol,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// LockPaymentSequence takes a FOR UPDATE lock on the instance's settings row
// and returns payment_id_start. Holding this lock serializes payment id
// allocation per instance; the migration seeds the row, so a missing row only
// happens on an unmigrated database.
func (r *SettingsRepository) LockPaymentSequence(ctx context.Context, instanceID int) (int, error) {
	const q = `
                SELECT payment_id_start
                FROM app_settings
                WHERE instance_id=$1
                FOR UPDATE
        `
	var start int
	if err := r.db.QueryRowContext(ctx, q, instanceID).Scan(&start); err != nil {
		return 0, fmt.Errorf("lock payment sequence: %w", err)
	}
	return start, nil
}
