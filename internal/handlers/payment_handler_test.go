package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genpay/internal/repositories"
	"genpay/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var clientCols = []string{
	"id", "instance_id", "name",
	"monthly_fee", "prev_counter", "current_counter",
	"total_usage", "kilowatt_price", "amount_usage",
	"prev_balance", "current_balance", "payment_amt",
	"new_balance", "last_paid_by", "pay_id",
	"cust_id", "phone", "address", "notes",
	"is_active", "created_at", "updated_at",
}

func newPaymentHandler(t *testing.T) (*PaymentHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := services.NewPaymentService(
		db,
		repositories.NewClientRepository(db),
		repositories.NewPaymentRepository(db),
		repositories.NewSettingsRepository(db),
		nil,
	)
	return NewPaymentHandler(svc), mock
}

func postPayment(t *testing.T, h *PaymentHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/payments/process", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Process(c)
	return w
}

func TestProcessRejectsInvalidAmount(t *testing.T) {
	h, mock := newPaymentHandler(t)

	w := postPayment(t, h, `{"clientName":"Abu Khalid","amount":-5,"loggedInUser":"kasim"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "storage must not be touched")
}

func TestProcessReturns404ForUnknownClient(t *testing.T) {
	h, mock := newPaymentHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WillReturnRows(sqlmock.NewRows(clientCols))
	mock.ExpectRollback()

	w := postPayment(t, h, `{"clientName":"Nobody","amount":10,"loggedInUser":"kasim"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessReturns409WithDuplicateID(t *testing.T) {
	h, mock := newPaymentHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow(
			7, 1, "Abu Khalid",
			"50", 100, 150,
			0, "2", "0",
			"0", "0", "0",
			"0", "", "",
			"C-55", "", "", "",
			true, time.Now(), time.Now(),
		))
	mock.ExpectQuery("payment_amount=").
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow(1042))
	mock.ExpectRollback()

	w := postPayment(t, h, `{"clientName":"Abu Khalid","amount":100,"loggedInUser":"kasim"}`)

	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1042), body["duplicatePaymentId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
