package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one immutable ledger row. It snapshots every figure that went
// into the transaction so a receipt can be reproduced later without touching
// the client row again. Rows are inserted once and never updated.
type Payment struct {
	ID             int             `json:"id"`
	InstanceID     int             `json:"instance_id"`
	PaymentID      int             `json:"payment_id"`
	ClientID       int             `json:"client_id"`
	DateEntered    time.Time       `json:"date_entered"`
	Username       string          `json:"username"`
	PrevBalance    decimal.Decimal `json:"previous_balance_logged"`
	TotalDueBefore decimal.Decimal `json:"total_due_before_payment"`
	PaymentAmount  decimal.Decimal `json:"payment_amount"`
	NewBalance     decimal.Decimal `json:"new_balance"`
	CustomerID     string          `json:"customer_id"`
	MonthlyFee     decimal.Decimal `json:"monthly_fee"`
	PrevCounter    int             `json:"previous_counter"`
	CurrentCounter int             `json:"current_counter"`
	TotalUsage     int             `json:"total_usage"`
	KilowattPrice  decimal.Decimal `json:"kilowatt_price"`
	AmountUsage    decimal.Decimal `json:"amount_usage"`
	PrevBalanceAt  decimal.Decimal `json:"previous_balance_data"`
	CurrentBalAt   decimal.Decimal `json:"current_balance_data"`
	IsFirstPayment bool            `json:"is_first_payment"`

	// ClientName is filled only on queries that join the clients table.
	ClientName string `json:"client_name,omitempty"`
}

// PaymentFilter narrows the ledger listing. Zero values mean "no filter".
type PaymentFilter struct {
	ClientName string
	Username   string
	FromDate   string // YYYY-MM-DD
	ToDate     string // YYYY-MM-DD
}
