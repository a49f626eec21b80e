package repository

import (
	"context"
	"time"

	"consultly-backend/internal/domain"
)

// ConfirmPaymentParams carries everything the confirm-once transaction
// needs: the transaction row to complete, the capture id reported by the
// gateway, and the meeting resource to create.
type ConfirmPaymentParams struct {
	BookingID          int64
	TransactionID      int64
	CaptureID          string
	JoinURL            string
	CompletionCodeHash string
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// UpdateStatus is a compare-and-set transition; returns
	// domain.ErrConcurrencyConflict when the booking is not in `from`.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	// ConfirmPayment atomically marks the transaction completed, the booking
	// CONFIRMED, creates the meeting and increments the provider's session
	// counter. Returns domain.ErrConcurrencyConflict if another caller
	// already confirmed (or the booking left PAYMENT_PENDING).
	ConfirmPayment(ctx context.Context, p ConfirmPaymentParams) error
	// CancelPayment marks the transaction failed and the booking CANCELLED
	// in one transaction. Idempotent: a booking already cancelled is a no-op.
	CancelPayment(ctx context.Context, bookingID, transactionID int64, rawStatus string) error
	// ListExpiredPaymentPending returns PAYMENT_PENDING bookings whose start
	// time is at or before the cutoff.
	ListExpiredPaymentPending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	// PurgeWithTransactions hard-deletes an unpaid booking and its payment
	// attempts. Only valid for PAYMENT_PENDING bookings.
	PurgeWithTransactions(ctx context.Context, bookingID int64) error
	// ListConfirmedEndedBefore returns CONFIRMED bookings whose end time has
	// passed, for auto-completion.
	ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	// ListUnremindedStartingBefore returns CONFIRMED bookings starting at or
	// before the cutoff that have not had a reminder sent yet.
	ListUnremindedStartingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	MarkReminderSent(ctx context.Context, bookingID int64) error
	GetMeetingByBooking(ctx context.Context, bookingID int64) (*domain.Meeting, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error)
	GetCompletedByBooking(ctx context.Context, bookingID int64) (*domain.Transaction, error)
	MarkRefunded(ctx context.Context, orderID string) error
}

// SweepCandidate is a pending earning past its dispute deadline, annotated
// with whether its booking currently has an open dispute.
type SweepCandidate struct {
	EarningID      int64
	BookingID      int64
	HasOpenDispute bool
}

type EarningsRepository interface {
	// CreateForBooking inserts the earning and flips the booking to
	// COMPLETED in one transaction. The unique booking_id constraint makes
	// creation at-most-once: created is false when an earning already exists.
	CreateForBooking(ctx context.Context, e *domain.ProviderEarning) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*domain.ProviderEarning, error)
	GetByBooking(ctx context.Context, bookingID int64) (*domain.ProviderEarning, error)
	ListByProvider(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.ProviderEarning, int32, error)
	// ListSweepable returns PENDING earnings whose dispute deadline has
	// passed, each annotated with the open-dispute flag.
	ListSweepable(ctx context.Context, now time.Time) ([]SweepCandidate, error)
	// Sweep transitions one PENDING earning to APPROVED or DISPUTED. The
	// status guard in the UPDATE makes concurrent sweepers safe; returns
	// false when another run got there first.
	Sweep(ctx context.Context, earningID int64, to domain.EarningStatus, approvedBy string) (bool, error)
	// Release transitions a PENDING or DISPUTED earning to APPROVED, used by
	// staff dispute resolution. Returns false when the earning is in neither
	// state.
	Release(ctx context.Context, earningID int64, approvedBy string) (bool, error)
	// ApprovedBalance is the provider's spendable total: sum of available
	// amounts over APPROVED earnings.
	ApprovedBalance(ctx context.Context, providerID int64) (int64, error)
}

type PayoutRepository interface {
	// CreateWithAllocation runs the whole payout request in one transaction:
	// locks the provider's APPROVED earnings oldest-first, verifies no other
	// in-flight payout exists, consumes earnings FIFO (splitting the last
	// one), marks fully consumed earnings PAID_OUT, writes the allocation
	// lines and the audit log entry. Insufficient balance fails the whole
	// request with a PreconditionError; nothing is created.
	CreateWithAllocation(ctx context.Context, providerID, bankAccountID, requestedCents int64) (*domain.Payout, error)
	GetByID(ctx context.Context, id int64) (*domain.Payout, error)
	GetByTransferID(ctx context.Context, transferID string) (*domain.Payout, error)
	ListByProvider(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.Payout, int32, error)
	ListByStatus(ctx context.Context, status domain.PayoutStatus) ([]domain.Payout, error)
	ListAllocations(ctx context.Context, payoutID int64) ([]domain.PayoutEarning, error)
	// Approve locks in the fee: REQUESTED -> APPROVED with
	// actual = requested - fee, plus a log entry, in one transaction.
	Approve(ctx context.Context, payoutID, staffID, feeCents int64) error
	// RejectAndRelease flips REQUESTED -> REJECTED, restores every fully
	// consumed earning to APPROVED and logs the rejection, in one
	// transaction. Partial allocations are released implicitly: lines of
	// rejected payouts no longer count against an earning's available amount.
	RejectAndRelease(ctx context.Context, payoutID, staffID int64, reason string) error
	// MarkProcessing records a successful transfer call: APPROVED ->
	// PROCESSING with the external transfer id.
	MarkProcessing(ctx context.Context, payoutID int64, transferID string) error
	// MarkFailed records a failed disbursement. Earnings stay consumed until
	// staff release them explicitly.
	MarkFailed(ctx context.Context, payoutID int64, detail string) error
	MarkCompleted(ctx context.Context, payoutID int64) error
	// ReleaseFailed restores a FAILED payout's earnings to the pool after
	// staff verified with the gateway that no money moved.
	ReleaseFailed(ctx context.Context, payoutID, staffID int64) error
	HasNonTerminalForProvider(ctx context.Context, providerID int64) (bool, error)
	HasNonTerminalForAccount(ctx context.Context, bankAccountID int64) (bool, error)
}

type PayoutLogRepository interface {
	Create(ctx context.Context, entry *domain.PayoutLog) error
	ListByPayout(ctx context.Context, payoutID int64) ([]domain.PayoutLog, error)
}

type BankAccountRepository interface {
	// Create fails with a PreconditionError when the provider already has an
	// active non-deleted account (enforced by a partial unique index).
	Create(ctx context.Context, acct *domain.ProviderBankAccount) error
	GetByID(ctx context.Context, id int64) (*domain.ProviderBankAccount, error)
	GetActiveByProvider(ctx context.Context, providerID int64) (*domain.ProviderBankAccount, error)
	MarkPennyTestSent(ctx context.Context, id int64, pennyCents int64, reference string) error
	// MarkVerified is a CAS: PENNY_TEST_SENT -> VERIFIED + active.
	MarkVerified(ctx context.Context, id int64) error
	// IncrementAttempts bumps the counter and rejects the account once it
	// reaches the max; returns the new attempt count and status.
	IncrementAttempts(ctx context.Context, id int64) (int32, domain.BankAccountStatus, error)
	MarkDeleted(ctx context.Context, id int64) error

	CreateDeleteRequest(ctx context.Context, req *domain.BankAccountDeleteRequest) error
	GetDeleteRequest(ctx context.Context, id int64) (*domain.BankAccountDeleteRequest, error)
	ListPendingDeleteRequests(ctx context.Context) ([]domain.BankAccountDeleteRequest, error)
	// ReviewDeleteRequest approves or rejects a pending request. Approval
	// soft-deletes the account; it fails with a PreconditionError when the
	// account is referenced by a non-terminal payout (checked in the same
	// transaction).
	ReviewDeleteRequest(ctx context.Context, requestID, staffID int64, approve bool) error
}

type DisputeRepository interface {
	Create(ctx context.Context, d *domain.Dispute) error
	GetByID(ctx context.Context, id int64) (*domain.Dispute, error)
	GetOpenByBooking(ctx context.Context, bookingID int64) (*domain.Dispute, error)
	Resolve(ctx context.Context, id, staffID int64, resolution string) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
