package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genpay/internal/billing"
	"genpay/internal/repositories"
)

var clientCols = []string{
	"id", "instance_id", "name",
	"monthly_fee", "prev_counter", "current_counter",
	"total_usage", "kilowatt_price", "amount_usage",
	"prev_balance", "current_balance", "payment_amt",
	"new_balance", "last_paid_by", "pay_id",
	"cust_id", "phone", "address", "notes",
	"is_active", "created_at", "updated_at",
}

// clientRow mirrors the §8-style worked example: fee 50, counters 100→150,
// price 2, zero previous balance.
func clientRow(paymentAmt string) *sqlmock.Rows {
	return sqlmock.NewRows(clientCols).AddRow(
		7, 1, "Abu Khalid",
		"50", 100, 150,
		0, "2", "0",
		"0", "0", paymentAmt,
		"0", "", "",
		"C-55", "", "", "",
		true, time.Now(), time.Now(),
	)
}

func newTestService(t *testing.T) (*PaymentService, sqlmock.Sqlmock, time.Time) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewPaymentService(
		db,
		repositories.NewClientRepository(db),
		repositories.NewPaymentRepository(db),
		repositories.NewSettingsRepository(db),
		nil,
	)
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, mock, now
}

func TestProcessFirstPayment(t *testing.T) {
	svc, mock, now := newTestService(t)
	amount := decimal.NewFromInt(100)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnRows(clientRow("0"))
	mock.ExpectQuery("payment_amount=").
		WithArgs(1, 7, amount, now.Add(-DuplicateWindow)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))
	mock.ExpectQuery("FROM app_settings").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id_start"}).AddRow(1000))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(payment_id)")).
		WithArgs(1, 1000).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1001))
	mock.ExpectExec("UPDATE clients").
		WithArgs(
			decimal.NewFromInt(100), // cumulative payments
			decimal.NewFromInt(50),  // new balance
			"kasim",
			decimal.NewFromInt(100), // usage amount
			50,                      // total usage
			decimal.NewFromInt(150), // current balance
			"1001", 7,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(
			1, 1001, 7, now, "kasim",
			decimal.Zero, decimal.NewFromInt(150), amount,
			decimal.NewFromInt(50), "C-55", decimal.NewFromInt(50), 100,
			150, 50, decimal.NewFromInt(2), decimal.NewFromInt(100),
			decimal.Zero, decimal.NewFromInt(150), true,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", amount, "kasim")
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, "1001", receipt.PaymentID)
	assert.Equal(t, "Abu Khalid", receipt.ClientName)
	assert.Equal(t, "2024-05-01 10:30", receipt.Date)
	assert.Equal(t, 50, receipt.TotalUsage)
	assert.True(t, receipt.AmountDue.Equal(decimal.NewFromInt(150)), "amount due = %v", receipt.AmountDue)
	assert.True(t, receipt.TotalDueBefore.Equal(decimal.NewFromInt(150)), "total due before = %v", receipt.TotalDueBefore)
	assert.True(t, receipt.NewBalance.Equal(decimal.NewFromInt(50)), "new balance = %v", receipt.NewBalance)
	assert.True(t, receipt.IsFirstPayment)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSubsequentPaymentSubtractsPriorPayments(t *testing.T) {
	svc, mock, now := newTestService(t)
	amount := decimal.NewFromInt(40)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnRows(clientRow("100")) // has paid before
	mock.ExpectQuery("payment_amount=").
		WithArgs(1, 7, amount, now.Add(-DuplicateWindow)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))
	mock.ExpectQuery("FROM app_settings").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id_start"}).AddRow(1000))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(payment_id)")).
		WithArgs(1, 1000).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1002))
	mock.ExpectQuery(regexp.QuoteMeta("SUM(payment_amount)")).
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("100"))
	mock.ExpectExec("UPDATE clients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", amount, "kasim")
	require.NoError(t, err)

	// currentBalance 150 minus 100 already paid
	assert.True(t, receipt.TotalDueBefore.Equal(decimal.NewFromInt(50)), "total due before = %v", receipt.TotalDueBefore)
	assert.True(t, receipt.NewBalance.Equal(decimal.NewFromInt(10)), "new balance = %v", receipt.NewBalance)
	assert.False(t, receipt.IsFirstPayment)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessClientNotFound(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Nobody").
		WillReturnRows(sqlmock.NewRows(clientCols))
	mock.ExpectRollback()

	receipt, err := svc.Process(context.Background(), 1, "Nobody", decimal.NewFromInt(10), "kasim")
	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, billing.ErrClientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDuplicateWithinWindow(t *testing.T) {
	svc, mock, now := newTestService(t)
	amount := decimal.NewFromInt(100)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnRows(clientRow("0"))
	mock.ExpectQuery("payment_amount=").
		WithArgs(1, 7, amount, now.Add(-DuplicateWindow)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow(1001))
	mock.ExpectRollback()

	receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", amount, "kasim")
	assert.Nil(t, receipt)

	var dup *billing.DuplicatePaymentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1001, dup.PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessRejectsNonPositiveAmountBeforeStorage(t *testing.T) {
	svc, mock, _ := newTestService(t)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", amount, "kasim")
		assert.Nil(t, receipt)
		assert.ErrorIs(t, err, billing.ErrInvalidAmount)
	}

	// no Begin, no queries: storage was never touched
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A transaction that blocked on the client lock aborts with SQLSTATE 40001
// once the first writer commits. It must be rerun transparently and come out
// with the next payment id, not surface as an internal error.
func TestProcessRetriesAfterSerializationConflict(t *testing.T) {
	svc, mock, now := newTestService(t)
	amount := decimal.NewFromInt(100)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnRows(clientRow("100"))
	mock.ExpectQuery("payment_amount=").
		WithArgs(1, 7, amount, now.Add(-DuplicateWindow)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))
	mock.ExpectQuery("FROM app_settings").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id_start"}).AddRow(1000))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(payment_id)")).
		WithArgs(1, 1000).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1002))
	mock.ExpectQuery(regexp.QuoteMeta("SUM(payment_amount)")).
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("100"))
	mock.ExpectExec("UPDATE clients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", amount, "kasim")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "1002", receipt.PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Non-serialization failures are not retried.
func TestProcessDoesNotRetryOtherDatabaseErrors(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnError(&pq.Error{Code: "53300", Message: "too many connections"})
	mock.ExpectRollback()

	receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", decimal.NewFromInt(10), "kasim")
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessRollsBackWhenInsertFails(t *testing.T) {
	svc, mock, now := newTestService(t)
	amount := decimal.NewFromInt(100)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WithArgs(1, "Abu Khalid").
		WillReturnRows(clientRow("0"))
	mock.ExpectQuery("payment_amount=").
		WithArgs(1, 7, amount, now.Add(-DuplicateWindow)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))
	mock.ExpectQuery("FROM app_settings").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id_start"}).AddRow(1000))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(payment_id)")).
		WithArgs(1, 1000).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1001))
	mock.ExpectExec("UPDATE clients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	receipt, err := svc.Process(context.Background(), 1, "Abu Khalid", amount, "kasim")
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
