package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genpay/internal/models"
)

func newMock(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPaymentRepository(db), mock
}

func TestFindRecentDuplicateID(t *testing.T) {
	repo, mock := newMock(t)
	since := time.Now().Add(-3 * time.Second)
	amount := decimal.NewFromInt(100)

	t.Run("no duplicate", func(t *testing.T) {
		mock.ExpectQuery("SELECT payment_id").
			WithArgs(1, 7, amount, since).
			WillReturnRows(sqlmock.NewRows([]string{"payment_id"}))

		id, err := repo.FindRecentDuplicateID(context.Background(), 1, 7, amount, since)
		require.NoError(t, err)
		assert.Zero(t, id)
	})

	t.Run("duplicate found", func(t *testing.T) {
		mock.ExpectQuery("SELECT payment_id").
			WithArgs(1, 7, amount, since).
			WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow(1042))

		id, err := repo.FindRecentDuplicateID(context.Background(), 1, 7, amount, since)
		require.NoError(t, err)
		assert.Equal(t, 1042, id)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextPaymentID(t *testing.T) {
	repo, mock := newMock(t)

	t.Run("empty ledger starts from configured base", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("COALESCE(MAX(payment_id), $2) + 1")).
			WithArgs(1, 1000).
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1001))

		id, err := repo.NextPaymentID(context.Background(), 1, 1000)
		require.NoError(t, err)
		assert.Equal(t, 1001, id)
	})

	t.Run("continues from max", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("COALESCE(MAX(payment_id), $2) + 1")).
			WithArgs(1, 1000).
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1100))

		id, err := repo.NextPaymentID(context.Background(), 1, 1000)
		require.NoError(t, err)
		assert.Equal(t, 1100, id)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumByClient(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SUM(payment_amount)")).
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("240.50"))

	total, err := repo.SumByClient(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromFloat(240.50)), "total = %v", total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBuildsFilters(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{
		"id", "instance_id", "payment_id", "client_id", "date_entered", "username",
		"previous_balance_logged", "total_due_before_payment",
		"payment_amount", "new_balance", "customer_id",
		"monthly_fee", "previous_counter", "current_counter",
		"total_usage", "kilowatt_price", "amount_usage",
		"previous_balance_data", "current_balance_data",
		"is_first_payment", "name",
	}).AddRow(
		1, 1, 1001, 7, time.Now(), "kasim",
		"0", "150",
		"100", "50", "C-55",
		"50", 100, 150,
		50, "2", "100",
		"0", "150",
		true, "Abu Khalid",
	)

	mock.ExpectQuery("ILIKE").
		WithArgs(1, "%Abu%", "%kasim%").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), 1, models.PaymentFilter{ClientName: "Abu", Username: "kasim"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Abu Khalid", list[0].ClientName)
	assert.Equal(t, 1001, list[0].PaymentID)
	assert.True(t, list[0].PaymentAmount.Equal(decimal.NewFromInt(100)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
