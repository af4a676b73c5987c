package models

import "github.com/shopspring/decimal"

// Receipt is the payment result returned to the operator and rendered on
// paper. Field names match what the terminal UI expects.
type Receipt struct {
	ClientName     string          `json:"clientName"`
	Date           string          `json:"date"`
	PaymentID      string          `json:"paymentId"`
	MonthlyFee     decimal.Decimal `json:"monthlyFee"`
	PrevCounter    int             `json:"prevCounter"`
	CurrentCounter int             `json:"currentCounter"`
	TotalUsage     int             `json:"totalUsage"`
	KilowattPrice  decimal.Decimal `json:"kiloWattPrice"`
	AmountUsage    decimal.Decimal `json:"amountUsage"`
	AmountDue      decimal.Decimal `json:"amountDue"`
	PrevBalance    decimal.Decimal `json:"prevBalanceLogged"`
	TotalDueBefore decimal.Decimal `json:"totalDueBeforePayment"`
	PaymentAmount  decimal.Decimal `json:"paymentAmount"`
	NewBalance     decimal.Decimal `json:"newBalance"`
	CustID         string          `json:"custID"`
	IsFirstPayment bool            `json:"isFirstPayment"`
}
