package domain

import "time"

type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "OPEN"
	DisputeStatusUnderReview DisputeStatus = "UNDER_REVIEW"
	DisputeStatusResolved    DisputeStatus = "RESOLVED"
	DisputeStatusWithdrawn   DisputeStatus = "WITHDRAWN"
)

// IsOpen reports whether the dispute still blocks the booking's earnings
// from being auto-approved by the sweeper.
func (s DisputeStatus) IsOpen() bool {
	return s == DisputeStatusOpen || s == DisputeStatusUnderReview
}

type Dispute struct {
	ID         int64         `json:"id"`
	BookingID  int64         `json:"booking_id"`
	OpenedBy   int64         `json:"opened_by"`
	Reason     string        `json:"reason"`
	Status     DisputeStatus `json:"status"`
	Resolution string        `json:"resolution,omitempty"`
	ResolvedBy *int64        `json:"resolved_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
