package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction records one payment attempt on a booking. OrderID is the
// gateway-assigned order identifier and is unique across all transactions;
// it is the idempotency key the reconciler operates on.
type Transaction struct {
	ID          int64             `json:"id"`
	BookingID   int64             `json:"booking_id"`
	Gateway     string            `json:"gateway"`
	OrderID     string            `json:"order_id"`
	CaptureID   *string           `json:"capture_id,omitempty"`
	AmountCents int64             `json:"amount_cents"`
	Status      TransactionStatus `json:"status"`
	RawStatus   string            `json:"raw_status"` // last gateway-reported status, verbatim
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
