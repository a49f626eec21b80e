package service

import (
	"context"
	"errors"
	"time"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository"
)

type disputeService struct {
	disputeRepo  repository.DisputeRepository
	bookingRepo  repository.BookingRepository
	earningsRepo repository.EarningsRepository
	txRepo       repository.TransactionRepository
	gateways     *gateway.Registry
}

func NewDisputeService(
	disputeRepo repository.DisputeRepository,
	bookingRepo repository.BookingRepository,
	earningsRepo repository.EarningsRepository,
	txRepo repository.TransactionRepository,
	gateways *gateway.Registry,
) DisputeService {
	return &disputeService{
		disputeRepo:  disputeRepo,
		bookingRepo:  bookingRepo,
		earningsRepo: earningsRepo,
		txRepo:       txRepo,
		gateways:     gateways,
	}
}

// OpenDispute is only possible while the booking's earning is still inside
// its dispute window. Once the sweeper approved the money, disputes go
// through support channels instead.
func (s *disputeService) OpenDispute(ctx context.Context, userID, bookingID int64, reason string) (*domain.Dispute, error) {
	if reason == "" {
		return nil, domain.Validationf("a dispute reason is required")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SeekerID != userID && booking.ProviderID != userID {
		return nil, domain.Validationf("user %d is not a participant of booking %d", userID, bookingID)
	}
	if booking.Status != domain.BookingStatusCompleted && booking.Status != domain.BookingStatusDisputed {
		return nil, domain.Preconditionf("booking %d is not disputable in status %s", bookingID, booking.Status)
	}

	earning, err := s.earningsRepo.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if earning.Status != domain.EarningStatusPending {
		return nil, domain.Preconditionf("the dispute window for booking %d has closed", bookingID)
	}
	if time.Now().After(earning.DisputeDeadline) {
		return nil, domain.Preconditionf("the dispute window for booking %d has closed", bookingID)
	}

	if existing, err := s.disputeRepo.GetOpenByBooking(ctx, bookingID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	dispute := &domain.Dispute{
		BookingID: bookingID,
		OpenedBy:  userID,
		Reason:    reason,
		Status:    domain.DisputeStatusOpen,
	}
	if err := s.disputeRepo.Create(ctx, dispute); err != nil {
		return nil, err
	}

	_ = s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusCompleted, domain.BookingStatusDisputed)
	return dispute, nil
}

// ResolveDispute closes the dispute and settles the frozen earning. A
// released earning becomes withdrawable immediately; withholding it refunds
// the seeker's payment through the gateway it came in on.
func (s *disputeService) ResolveDispute(ctx context.Context, staffID, disputeID int64, resolution string, releaseEarning bool) error {
	if resolution == "" {
		return domain.Validationf("a resolution note is required")
	}

	dispute, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return err
	}
	if err := s.disputeRepo.Resolve(ctx, disputeID, staffID, resolution); err != nil {
		return err
	}

	earning, err := s.earningsRepo.GetByBooking(ctx, dispute.BookingID)
	if err != nil {
		logger.Error("dispute resolved but earning lookup failed", "dispute_id", disputeID, "booking_id", dispute.BookingID, "error", err)
		return nil
	}

	if releaseEarning {
		released, err := s.earningsRepo.Release(ctx, earning.ID, domain.ApprovedBySystem)
		if err != nil {
			return err
		}
		if !released {
			logger.Warn("earning was not releasable", "earning_id", earning.ID, "status", earning.Status)
		}
	} else {
		if earning.Status == domain.EarningStatusPending {
			// The window had not elapsed yet; freeze so the sweeper never
			// approves money staff just withheld.
			if _, err := s.earningsRepo.Sweep(ctx, earning.ID, domain.EarningStatusDisputed, ""); err != nil {
				return err
			}
		}
		s.refundSeeker(ctx, dispute.BookingID)
	}

	_ = s.bookingRepo.UpdateStatus(ctx, dispute.BookingID, domain.BookingStatusDisputed, domain.BookingStatusCompleted)
	return nil
}

// refundSeeker returns the payment behind an upheld dispute. Best effort: a
// gateway failure is logged for manual follow-up while the earning stays
// frozen, so the provider cannot withdraw the contested money either way.
func (s *disputeService) refundSeeker(ctx context.Context, bookingID int64) {
	tx, err := s.txRepo.GetCompletedByBooking(ctx, bookingID)
	if err != nil {
		logger.Error("no completed payment found for refund", "booking_id", bookingID, "error", err)
		return
	}

	g, err := s.gateways.Get(tx.Gateway)
	if err != nil {
		logger.Error("refund gateway lookup failed", "booking_id", bookingID, "gateway", tx.Gateway, "error", err)
		return
	}
	if err := g.Refund(ctx, tx.OrderID, tx.AmountCents); err != nil {
		logger.Error("refund failed, manual follow-up required",
			"booking_id", bookingID, "order_id", tx.OrderID, "amount_cents", tx.AmountCents, "error", err)
		return
	}
	if err := s.txRepo.MarkRefunded(ctx, tx.OrderID); err != nil {
		logger.Error("refund sent but transaction not marked", "order_id", tx.OrderID, "error", err)
	}
}
