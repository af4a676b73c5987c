package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotFound means no active client row matched the given name.
	ErrClientNotFound = errors.New("client not found")

	// ErrInvalidAmount rejects non-positive payment amounts before any
	// storage is touched.
	ErrInvalidAmount = errors.New("payment amount must be positive")
)

// DuplicatePaymentError reports an equivalent payment recorded inside the
// duplicate window. It carries the id of the row that already exists.
type DuplicatePaymentError struct {
	PaymentID int
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf("duplicate payment detected: payment %d already recorded", e.PaymentID)
}
