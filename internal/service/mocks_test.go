package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/repository"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockBookingRepo) ConfirmPayment(ctx context.Context, p repository.ConfirmPaymentParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockBookingRepo) CancelPayment(ctx context.Context, bookingID, transactionID int64, rawStatus string) error {
	args := m.Called(ctx, bookingID, transactionID, rawStatus)
	return args.Error(0)
}
func (m *MockBookingRepo) ListExpiredPaymentPending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) PurgeWithTransactions(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}
func (m *MockBookingRepo) ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListUnremindedStartingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) MarkReminderSent(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}
func (m *MockBookingRepo) GetMeetingByBooking(ctx context.Context, bookingID int64) (*domain.Meeting, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) GetCompletedByBooking(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) MarkRefunded(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// MockEarningsRepo
type MockEarningsRepo struct {
	mock.Mock
}

func (m *MockEarningsRepo) CreateForBooking(ctx context.Context, e *domain.ProviderEarning) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}
func (m *MockEarningsRepo) GetByID(ctx context.Context, id int64) (*domain.ProviderEarning, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderEarning), args.Error(1)
}
func (m *MockEarningsRepo) GetByBooking(ctx context.Context, bookingID int64) (*domain.ProviderEarning, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderEarning), args.Error(1)
}
func (m *MockEarningsRepo) ListByProvider(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.ProviderEarning, int32, error) {
	args := m.Called(ctx, providerID, page, pageSize)
	return args.Get(0).([]domain.ProviderEarning), args.Get(1).(int32), args.Error(2)
}
func (m *MockEarningsRepo) ListSweepable(ctx context.Context, now time.Time) ([]repository.SweepCandidate, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]repository.SweepCandidate), args.Error(1)
}
func (m *MockEarningsRepo) Sweep(ctx context.Context, earningID int64, to domain.EarningStatus, approvedBy string) (bool, error) {
	args := m.Called(ctx, earningID, to, approvedBy)
	return args.Bool(0), args.Error(1)
}
func (m *MockEarningsRepo) Release(ctx context.Context, earningID int64, approvedBy string) (bool, error) {
	args := m.Called(ctx, earningID, approvedBy)
	return args.Bool(0), args.Error(1)
}
func (m *MockEarningsRepo) ApprovedBalance(ctx context.Context, providerID int64) (int64, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPayoutRepo
type MockPayoutRepo struct {
	mock.Mock
}

func (m *MockPayoutRepo) CreateWithAllocation(ctx context.Context, providerID, bankAccountID, requestedCents int64) (*domain.Payout, error) {
	args := m.Called(ctx, providerID, bankAccountID, requestedCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) GetByID(ctx context.Context, id int64) (*domain.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) GetByTransferID(ctx context.Context, transferID string) (*domain.Payout, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) ListByProvider(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.Payout, int32, error) {
	args := m.Called(ctx, providerID, page, pageSize)
	return args.Get(0).([]domain.Payout), args.Get(1).(int32), args.Error(2)
}
func (m *MockPayoutRepo) ListByStatus(ctx context.Context, status domain.PayoutStatus) ([]domain.Payout, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) ListAllocations(ctx context.Context, payoutID int64) ([]domain.PayoutEarning, error) {
	args := m.Called(ctx, payoutID)
	return args.Get(0).([]domain.PayoutEarning), args.Error(1)
}
func (m *MockPayoutRepo) Approve(ctx context.Context, payoutID, staffID, feeCents int64) error {
	args := m.Called(ctx, payoutID, staffID, feeCents)
	return args.Error(0)
}
func (m *MockPayoutRepo) RejectAndRelease(ctx context.Context, payoutID, staffID int64, reason string) error {
	args := m.Called(ctx, payoutID, staffID, reason)
	return args.Error(0)
}
func (m *MockPayoutRepo) MarkProcessing(ctx context.Context, payoutID int64, transferID string) error {
	args := m.Called(ctx, payoutID, transferID)
	return args.Error(0)
}
func (m *MockPayoutRepo) MarkFailed(ctx context.Context, payoutID int64, detail string) error {
	args := m.Called(ctx, payoutID, detail)
	return args.Error(0)
}
func (m *MockPayoutRepo) MarkCompleted(ctx context.Context, payoutID int64) error {
	args := m.Called(ctx, payoutID)
	return args.Error(0)
}
func (m *MockPayoutRepo) ReleaseFailed(ctx context.Context, payoutID, staffID int64) error {
	args := m.Called(ctx, payoutID, staffID)
	return args.Error(0)
}
func (m *MockPayoutRepo) HasNonTerminalForProvider(ctx context.Context, providerID int64) (bool, error) {
	args := m.Called(ctx, providerID)
	return args.Bool(0), args.Error(1)
}
func (m *MockPayoutRepo) HasNonTerminalForAccount(ctx context.Context, bankAccountID int64) (bool, error) {
	args := m.Called(ctx, bankAccountID)
	return args.Bool(0), args.Error(1)
}

// MockPayoutLogRepo
type MockPayoutLogRepo struct {
	mock.Mock
}

func (m *MockPayoutLogRepo) Create(ctx context.Context, entry *domain.PayoutLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockPayoutLogRepo) ListByPayout(ctx context.Context, payoutID int64) ([]domain.PayoutLog, error) {
	args := m.Called(ctx, payoutID)
	return args.Get(0).([]domain.PayoutLog), args.Error(1)
}

// MockBankAccountRepo
type MockBankAccountRepo struct {
	mock.Mock
}

func (m *MockBankAccountRepo) Create(ctx context.Context, acct *domain.ProviderBankAccount) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}
func (m *MockBankAccountRepo) GetByID(ctx context.Context, id int64) (*domain.ProviderBankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderBankAccount), args.Error(1)
}
func (m *MockBankAccountRepo) GetActiveByProvider(ctx context.Context, providerID int64) (*domain.ProviderBankAccount, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderBankAccount), args.Error(1)
}
func (m *MockBankAccountRepo) MarkPennyTestSent(ctx context.Context, id int64, pennyCents int64, reference string) error {
	args := m.Called(ctx, id, pennyCents, reference)
	return args.Error(0)
}
func (m *MockBankAccountRepo) MarkVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBankAccountRepo) IncrementAttempts(ctx context.Context, id int64) (int32, domain.BankAccountStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int32), args.Get(1).(domain.BankAccountStatus), args.Error(2)
}
func (m *MockBankAccountRepo) MarkDeleted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBankAccountRepo) CreateDeleteRequest(ctx context.Context, req *domain.BankAccountDeleteRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockBankAccountRepo) GetDeleteRequest(ctx context.Context, id int64) (*domain.BankAccountDeleteRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountDeleteRequest), args.Error(1)
}
func (m *MockBankAccountRepo) ListPendingDeleteRequests(ctx context.Context) ([]domain.BankAccountDeleteRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.BankAccountDeleteRequest), args.Error(1)
}
func (m *MockBankAccountRepo) ReviewDeleteRequest(ctx context.Context, requestID, staffID int64, approve bool) error {
	args := m.Called(ctx, requestID, staffID, approve)
	return args.Error(0)
}

// MockDisputeRepo
type MockDisputeRepo struct {
	mock.Mock
}

func (m *MockDisputeRepo) Create(ctx context.Context, d *domain.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockDisputeRepo) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}
func (m *MockDisputeRepo) GetOpenByBooking(ctx context.Context, bookingID int64) (*domain.Dispute, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}
func (m *MockDisputeRepo) Resolve(ctx context.Context, id, staffID int64, resolution string) error {
	args := m.Called(ctx, id, staffID, resolution)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmed(ctx context.Context, email, name string, bookingID int64, joinURL, completionCode string) error {
	args := m.Called(ctx, email, name, bookingID, joinURL, completionCode)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentFailed(ctx context.Context, email, name string, bookingID int64) error {
	args := m.Called(ctx, email, name, bookingID)
	return args.Error(0)
}
func (m *MockEmailService) SendSessionReminder(ctx context.Context, email, name string, bookingID int64, startAt string) error {
	args := m.Called(ctx, email, name, bookingID, startAt)
	return args.Error(0)
}
func (m *MockEmailService) SendPennyTestSent(ctx context.Context, email, name, bankName string) error {
	args := m.Called(ctx, email, name, bankName)
	return args.Error(0)
}
func (m *MockEmailService) SendPayoutApproved(ctx context.Context, email, name string, actualCents int64) error {
	args := m.Called(ctx, email, name, actualCents)
	return args.Error(0)
}
func (m *MockEmailService) SendPayoutRejected(ctx context.Context, email, name, reason string) error {
	args := m.Called(ctx, email, name, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPayoutCompleted(ctx context.Context, email, name string, actualCents int64) error {
	args := m.Called(ctx, email, name, actualCents)
	return args.Error(0)
}

// MockGateway implements gateway.PaymentGateway
type MockGateway struct {
	mock.Mock
	GatewayName string
}

func (m *MockGateway) Name() string {
	if m.GatewayName != "" {
		return m.GatewayName
	}
	return "cardpay"
}
func (m *MockGateway) CreateSession(ctx context.Context, bookingID int64, amountCents int64, customer gateway.Customer) (*gateway.Session, error) {
	args := m.Called(ctx, bookingID, amountCents, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}
func (m *MockGateway) VerifyStatus(ctx context.Context, orderID string) (*gateway.PaymentResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentResult), args.Error(1)
}
func (m *MockGateway) Refund(ctx context.Context, orderID string, amountCents int64) error {
	args := m.Called(ctx, orderID, amountCents)
	return args.Error(0)
}
func (m *MockGateway) Transfer(ctx context.Context, dest gateway.BankDetails, amountCents int64, reference string) (*gateway.TransferResult, error) {
	args := m.Called(ctx, dest, amountCents, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TransferResult), args.Error(1)
}
func (m *MockGateway) TransferStatus(ctx context.Context, transferID string) (*gateway.TransferResult, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TransferResult), args.Error(1)
}
