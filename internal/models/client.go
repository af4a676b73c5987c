package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is the mutable "current" billing view of one metered account.
// Money columns are NUMERIC in Postgres and must stay decimal end to end.
type Client struct {
	ID             int             `json:"id"`
	InstanceID     int             `json:"instance_id"`
	Name           string          `json:"name"`
	MonthlyFee     decimal.Decimal `json:"monthly_fee"`
	PrevCounter    int             `json:"prev_counter"`
	CurrentCounter int             `json:"current_counter"`
	TotalUsage     int             `json:"total_usage"`
	KilowattPrice  decimal.Decimal `json:"kilowatt_price"`
	AmountUsage    decimal.Decimal `json:"amount_usage"`
	PrevBalance    decimal.Decimal `json:"prev_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	PaymentAmt     decimal.Decimal `json:"payment_amt"`
	NewBalance     decimal.Decimal `json:"new_balance"`
	LastPaidBy     string          `json:"last_paid_by"`
	PayID          string          `json:"pay_id"`
	CustID         string          `json:"cust_id"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Notes          string          `json:"notes"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ClientSearchRow is the trimmed projection returned by name search.
type ClientSearchRow struct {
	ID             int             `json:"-"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	LastPayment    decimal.Decimal `json:"lastPayment"`
}
