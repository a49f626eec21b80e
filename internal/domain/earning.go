package domain

import "time"

type EarningStatus string

const (
	EarningStatusPending  EarningStatus = "PENDING"
	EarningStatusDisputed EarningStatus = "DISPUTED"
	EarningStatusApproved EarningStatus = "APPROVED"
	EarningStatusPaidOut  EarningStatus = "PAID_OUT"
)

// ApprovedBySystem marks earnings auto-approved by the dispute window sweeper.
const ApprovedBySystem = "AUTO"

// ProviderEarning is the provider's share of a completed booking. Created
// exactly once per booking. CommissionRateBps is the commission rate
// snapshotted at creation time so later config changes never alter the math.
// Invariant: CommissionCents + NetCents == GrossCents.
type ProviderEarning struct {
	ID                int64         `json:"id"`
	BookingID         int64         `json:"booking_id"`
	ProviderID        int64         `json:"provider_id"`
	GrossCents        int64         `json:"gross_cents"`
	CommissionCents   int64         `json:"commission_cents"`
	NetCents          int64         `json:"net_cents"`
	CommissionRateBps int32         `json:"commission_rate_bps"`
	Status            EarningStatus `json:"status"`
	DisputeDeadline   time.Time     `json:"dispute_deadline"`
	ApprovedBy        string        `json:"approved_by,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
