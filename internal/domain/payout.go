package domain

import "time"

type PayoutStatus string

const (
	PayoutStatusRequested  PayoutStatus = "REQUESTED"
	PayoutStatusApproved   PayoutStatus = "APPROVED"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusCompleted  PayoutStatus = "COMPLETED"
	PayoutStatusRejected   PayoutStatus = "REJECTED"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

// IsTerminal reports whether no further transition can happen. A FAILED
// payout is terminal for the in-flight constraint but may still have its
// earnings released by staff.
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusRejected || s == PayoutStatusFailed
}

// Payout is a provider's withdrawal request. ActualCents is locked in at
// approval time (requested minus staff-set fee). ReleasedAt is set when a
// failed payout's earnings were manually returned to the pool.
type Payout struct {
	ID             int64        `json:"id"`
	ProviderID     int64        `json:"provider_id"`
	BankAccountID  int64        `json:"bank_account_id"`
	RequestedCents int64        `json:"requested_cents"`
	FeeCents       int64        `json:"fee_cents"`
	ActualCents    int64        `json:"actual_cents"`
	Status         PayoutStatus `json:"status"`
	TransferID     string       `json:"transfer_id,omitempty"`
	RejectReason   string       `json:"reject_reason,omitempty"`
	ReleasedAt     *time.Time   `json:"released_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// PayoutEarning links a payout to an earning that funded it, with the
// per-line amount actually drawn. An earning consumed partially keeps its
// remainder available; the line records only the consumed slice. This join
// is the audit trail of which earnings funded which payout.
type PayoutEarning struct {
	ID          int64     `json:"id"`
	PayoutID    int64     `json:"payout_id"`
	EarningID   int64     `json:"earning_id"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

type PayoutAction string

const (
	PayoutActionRequested         PayoutAction = "REQUESTED"
	PayoutActionApproved          PayoutAction = "APPROVED"
	PayoutActionRejected          PayoutAction = "REJECTED"
	PayoutActionTransferInitiated PayoutAction = "TRANSFER_INITIATED"
	PayoutActionTransferFailed    PayoutAction = "TRANSFER_FAILED"
	PayoutActionCompleted         PayoutAction = "COMPLETED"
	PayoutActionFailed            PayoutAction = "FAILED"
	PayoutActionReleased          PayoutAction = "EARNINGS_RELEASED"
)

// PayoutLog is an append-only audit entry. Entries are never mutated or
// deleted. ActorUserID is nil for system actions.
type PayoutLog struct {
	ID          int64        `json:"id"`
	PayoutID    int64        `json:"payout_id"`
	ActorUserID *int64       `json:"actor_user_id,omitempty"`
	Action      PayoutAction `json:"action"`
	Details     string       `json:"details,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
