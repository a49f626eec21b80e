package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "PENDING"
	BookingStatusPaymentPending BookingStatus = "PAYMENT_PENDING"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCompleted      BookingStatus = "COMPLETED"
	BookingStatusDisputed       BookingStatus = "DISPUTED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

// Booking is a scheduled consultation session between a seeker and a provider.
// AmountCents is fixed at creation and never recomputed after confirmation.
type Booking struct {
	ID          int64         `json:"id"`
	SeekerID    int64         `json:"seeker_id"`
	ProviderID  int64         `json:"provider_id"`
	StartAt     time.Time     `json:"start_at"`
	EndAt       time.Time     `json:"end_at"`
	AmountCents int64         `json:"amount_cents"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Meeting is the session resource created when a booking's payment is
// confirmed. The completion code is stored as a bcrypt hash; the plain code
// is shared with the participants out of band.
type Meeting struct {
	ID                 int64     `json:"id"`
	BookingID          int64     `json:"booking_id"`
	JoinURL            string    `json:"join_url"`
	CompletionCodeHash string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}
