package service

import (
	"context"

	"consultly-backend/internal/domain"
)

type BookingService interface {
	CreateBooking(ctx context.Context, seekerID, providerID int64, startAt, endAt string, amountCents int64) (*domain.Booking, error)
	// InitiatePayment opens a gateway checkout session for the booking and
	// records the pending transaction. Returns the URL to send the seeker to.
	InitiatePayment(ctx context.Context, seekerID, bookingID int64, gatewayName string) (payURL string, err error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
}

type ReconcilerService interface {
	// Reconcile maps a gateway notification onto internal state. Keyed by
	// the external order id; safe to invoke redundantly from webhook,
	// redirect return and polling.
	Reconcile(ctx context.Context, gatewayName, orderID string) (*domain.Transaction, error)
	// ExpireOverdueBookings purges PAYMENT_PENDING bookings whose start time
	// is inside the payment deadline lead. Returns the number purged.
	ExpireOverdueBookings(ctx context.Context) (int, error)
}

type EarningsService interface {
	// CompleteSession marks a confirmed session complete (gated by the
	// shared one-time code) and creates the provider earning exactly once.
	CompleteSession(ctx context.Context, userID, bookingID int64, code string) (*domain.ProviderEarning, error)
	// AutoCompleteElapsed completes confirmed bookings past their end time.
	AutoCompleteElapsed(ctx context.Context) (int, error)
	// SweepDisputeWindows approves pending earnings whose window elapsed and
	// freezes those with an open dispute. Returns (approved, frozen).
	SweepDisputeWindows(ctx context.Context) (int, int, error)
	ListEarnings(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.ProviderEarning, int32, error)
	GetBalance(ctx context.Context, providerID int64) (int64, error)
}

type PayoutService interface {
	RequestPayout(ctx context.Context, providerID, amountCents int64) (*domain.Payout, error)
	ApprovePayout(ctx context.Context, staffID, payoutID, feeCents int64) (*domain.Payout, error)
	RejectPayout(ctx context.Context, staffID, payoutID int64, reason string) error
	// ReleaseFailedPayout returns a FAILED payout's consumed earnings to the
	// pool after staff verified no money moved.
	ReleaseFailedPayout(ctx context.Context, staffID, payoutID int64) error
	// CheckTransferStatuses polls the gateway for PROCESSING payouts and
	// settles them. Returns the number settled.
	CheckTransferStatuses(ctx context.Context) (int, error)
	// ReconcileTransfer settles a single payout from a gateway transfer
	// webhook.
	ReconcileTransfer(ctx context.Context, transferID string) error
	ListPayouts(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.Payout, int32, error)
	ListPendingPayouts(ctx context.Context) ([]domain.Payout, error)
	GetPayout(ctx context.Context, payoutID int64) (*domain.Payout, []domain.PayoutLog, error)
}

type BankAccountService interface {
	// AddAccount registers the account and sends the penny test.
	AddAccount(ctx context.Context, providerID int64, bankName, accountNumber, holderName string) (*domain.ProviderBankAccount, error)
	// VerifyPennyAmount checks the provider's claimed micro-deposit amount.
	// On mismatch returns the remaining attempts alongside the error.
	VerifyPennyAmount(ctx context.Context, providerID int64, claimedCents int64) (remaining int32, err error)
	RequestDeletion(ctx context.Context, providerID int64, reason string) (*domain.BankAccountDeleteRequest, error)
	ReviewDeleteRequest(ctx context.Context, staffID, requestID int64, approve bool) error
	ListPendingDeleteRequests(ctx context.Context) ([]domain.BankAccountDeleteRequest, error)
	GetActiveAccount(ctx context.Context, providerID int64) (*domain.ProviderBankAccount, error)
}

type DisputeService interface {
	OpenDispute(ctx context.Context, userID, bookingID int64, reason string) (*domain.Dispute, error)
	// ResolveDispute closes the dispute and settles the frozen earning:
	// releasing approves it back to the provider, withholding keeps it
	// frozen and refunds the seeker's payment.
	ResolveDispute(ctx context.Context, staffID, disputeID int64, resolution string, releaseEarning bool) error
}

type ReminderService interface {
	// SendUpcomingSessionReminders emails both sides of confirmed bookings
	// starting within the reminder window. Returns the number sent.
	SendUpcomingSessionReminders(ctx context.Context) (int, error)
}

type EmailService interface {
	SendBookingConfirmed(ctx context.Context, email, name string, bookingID int64, joinURL, completionCode string) error
	SendPaymentFailed(ctx context.Context, email, name string, bookingID int64) error
	SendSessionReminder(ctx context.Context, email, name string, bookingID int64, startAt string) error
	SendPennyTestSent(ctx context.Context, email, name, bankName string) error
	SendPayoutApproved(ctx context.Context, email, name string, actualCents int64) error
	SendPayoutRejected(ctx context.Context, email, name, reason string) error
	SendPayoutCompleted(ctx context.Context, email, name string, actualCents int64) error
}
