// Package billing holds the pure billing arithmetic and the domain errors
// of the payment path. Nothing in here touches the database.
package billing

import "github.com/shopspring/decimal"

// ClientState is the slice of a client row the calculator needs.
type ClientState struct {
	MonthlyFee     decimal.Decimal
	PrevCounter    int
	CurrentCounter int
	KilowattPrice  decimal.Decimal
	PrevBalance    decimal.Decimal
}

// Result is what one meter period costs and what the account stands at.
type Result struct {
	TotalUsage     int
	AmountUsage    decimal.Decimal
	AmountDue      decimal.Decimal
	CurrentBalance decimal.Decimal
}

// Compute derives usage and amounts from the counters and prices.
//
// TotalUsage may come out negative when a meter was reset between readings;
// the calculator passes it through and leaves the policy to the caller.
func Compute(c ClientState) Result {
	totalUsage := c.CurrentCounter - c.PrevCounter
	amountUsage := decimal.NewFromInt(int64(totalUsage)).Mul(c.KilowattPrice)
	amountDue := c.MonthlyFee.Add(amountUsage)

	return Result{
		TotalUsage:     totalUsage,
		AmountUsage:    amountUsage,
		AmountDue:      amountDue,
		CurrentBalance: c.PrevBalance.Add(amountDue),
	}
}
