package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"genpay/internal/billing"
	"genpay/internal/models"
	"genpay/internal/repositories"
)

// DuplicateWindow is how far back an identical (client, amount) submission
// counts as an accidental double-submit rather than a real second payment.
const DuplicateWindow = 3 * time.Second

// maxTxRetries bounds reruns of a payment transaction aborted by Postgres
// with a serialization failure.
const maxTxRetries = 3

// PaymentService runs the payment ledger transaction: one atomic
// read-check-compute-write against the client and payment tables.
type PaymentService struct {
	db           *sql.DB
	clientRepo   *repositories.ClientRepository
	paymentRepo  *repositories.PaymentRepository
	settingsRepo *repositories.SettingsRepository
	notify       *NotifyService

	now func() time.Time
}

func NewPaymentService(
	db *sql.DB,
	clientRepo *repositories.ClientRepository,
	paymentRepo *repositories.PaymentRepository,
	settingsRepo *repositories.SettingsRepository,
	notify *NotifyService,
) *PaymentService {
	return &PaymentService{
		db:           db,
		clientRepo:   clientRepo,
		paymentRepo:  paymentRepo,
		settingsRepo: settingsRepo,
		notify:       notify,
		now:          time.Now,
	}
}

// Process records one payment and returns the receipt. Everything between
// BeginTx and Commit is one atomic unit: on any error no partial state is
// left behind.
//
// Locking order is client row first, then the instance's settings row. The
// client lock stops two submissions for the same client from reading stale
// balances; the settings lock serializes payment id allocation per instance,
// since MAX(payment_id)+1 on its own races under concurrent writers.
//
// Repeatable-read snapshots make a transaction that blocked on the client
// lock abort with a serialization failure once the first writer commits.
// Such an abort leaves nothing behind, so the transaction is rerun; the
// duplicate window still rejects a genuine double-submit on the rerun.
func (s *PaymentService) Process(ctx context.Context, instanceID int, clientName string, amount decimal.Decimal, operator string) (*models.Receipt, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, billing.ErrInvalidAmount
	}

	var receipt *models.Receipt
	var err error
	for attempt := 1; ; attempt++ {
		receipt, err = s.processOnce(ctx, instanceID, clientName, amount, operator)
		if err == nil || attempt >= maxTxRetries || !isSerializationFailure(err) {
			break
		}
		log.Printf("[payments][tx] serialization conflict, retrying (attempt %d of %d)", attempt, maxTxRetries)
	}
	if err != nil {
		return nil, err
	}

	// Notification failures never fail a committed payment.
	if err := s.notify.PaymentProcessed(receipt); err != nil {
		log.Printf("[payments][notify] warning: %v", err)
	}

	return receipt, nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}

func (s *PaymentService) processOnce(ctx context.Context, instanceID int, clientName string, amount decimal.Decimal, operator string) (*models.Receipt, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	clients := s.clientRepo.WithTx(tx)
	payments := s.paymentRepo.WithTx(tx)
	settings := s.settingsRepo.WithTx(tx)

	client, err := clients.GetActiveByNameForUpdate(ctx, instanceID, clientName)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, billing.ErrClientNotFound
	}

	now := s.now()
	dupID, err := payments.FindRecentDuplicateID(ctx, instanceID, client.ID, amount, now.Add(-DuplicateWindow))
	if err != nil {
		return nil, err
	}
	if dupID != 0 {
		return nil, &billing.DuplicatePaymentError{PaymentID: dupID}
	}

	startID, err := settings.LockPaymentSequence(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	nextID, err := payments.NextPaymentID(ctx, instanceID, startID)
	if err != nil {
		return nil, err
	}

	res := billing.Compute(billing.ClientState{
		MonthlyFee:     client.MonthlyFee,
		PrevCounter:    client.PrevCounter,
		CurrentCounter: client.CurrentCounter,
		KilowattPrice:  client.KilowattPrice,
		PrevBalance:    client.PrevBalance,
	})

	// The first payment carries the full outstanding balance; later ones
	// are net of everything already paid.
	isFirst := client.PaymentAmt.IsZero()
	totalDueBefore := res.CurrentBalance
	if !isFirst {
		paid, err := payments.SumByClient(ctx, instanceID, client.ID)
		if err != nil {
			return nil, err
		}
		totalDueBefore = res.CurrentBalance.Sub(paid)
	}

	newBalance := totalDueBefore.Sub(amount)
	newPaymentTotal := client.PaymentAmt.Add(amount)

	if err := clients.UpdateAfterPayment(ctx, client.ID, repositories.ClientPaymentUpdate{
		PaymentAmt:     newPaymentTotal,
		NewBalance:     newBalance,
		LastPaidBy:     operator,
		AmountUsage:    res.AmountUsage,
		TotalUsage:     res.TotalUsage,
		CurrentBalance: res.CurrentBalance,
		PayID:          strconv.Itoa(nextID),
	}); err != nil {
		return nil, err
	}

	if _, err := payments.Insert(ctx, &models.Payment{
		InstanceID:     instanceID,
		PaymentID:      nextID,
		ClientID:       client.ID,
		DateEntered:    now,
		Username:       operator,
		PrevBalance:    client.PrevBalance,
		TotalDueBefore: totalDueBefore,
		PaymentAmount:  amount,
		NewBalance:     newBalance,
		CustomerID:     client.CustID,
		MonthlyFee:     client.MonthlyFee,
		PrevCounter:    client.PrevCounter,
		CurrentCounter: client.CurrentCounter,
		TotalUsage:     res.TotalUsage,
		KilowattPrice:  client.KilowattPrice,
		AmountUsage:    res.AmountUsage,
		PrevBalanceAt:  client.PrevBalance,
		CurrentBalAt:   res.CurrentBalance,
		IsFirstPayment: isFirst,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}

	return &models.Receipt{
		ClientName:     client.Name,
		Date:           now.Format("2006-01-02 15:04"),
		PaymentID:      strconv.Itoa(nextID),
		MonthlyFee:     client.MonthlyFee,
		PrevCounter:    client.PrevCounter,
		CurrentCounter: client.CurrentCounter,
		TotalUsage:     res.TotalUsage,
		KilowattPrice:  client.KilowattPrice,
		AmountUsage:    res.AmountUsage,
		AmountDue:      res.AmountDue,
		PrevBalance:    client.PrevBalance,
		TotalDueBefore: totalDueBefore,
		PaymentAmount:  amount,
		NewBalance:     newBalance,
		CustID:         client.CustID,
		IsFirstPayment: isFirst,
	}, nil
}

// TotalPayments returns the instance-wide sum of all recorded payments.
func (s *PaymentService) TotalPayments(ctx context.Context, instanceID int) (decimal.Decimal, error) {
	return s.paymentRepo.SumAll(ctx, instanceID)
}

// List returns ledger rows for the history screen.
func (s *PaymentService) List(ctx context.Context, instanceID int, f models.PaymentFilter) ([]*models.Payment, error) {
	return s.paymentRepo.List(ctx, instanceID, f)
}
