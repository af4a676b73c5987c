package models

// Settings holds the per-instance presentation and numbering options.
// Read-only as far as the payment path is concerned.
type Settings struct {
	InstanceID     int    `json:"-"`
	HeaderTitle    string `json:"headerTitle"`
	ReceiptHeader  string `json:"receiptHeader"`
	PaymentIDStart int    `json:"paymentIdStart"`
	CurrencySymbol string `json:"currencySymbol"`
}
