package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository"
	"consultly-backend/internal/utils"
)

type earningsService struct {
	earningsRepo repository.EarningsRepository
	bookingRepo  repository.BookingRepository
	userRepo     repository.UserRepository
	// commissionRateBps is the platform-wide rate, overridable per provider.
	commissionRateBps int32
	disputeWindow     time.Duration
}

func NewEarningsService(
	earningsRepo repository.EarningsRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	commissionRateBps int32,
	disputeWindow time.Duration,
) EarningsService {
	return &earningsService{
		earningsRepo:      earningsRepo,
		bookingRepo:       bookingRepo,
		userRepo:          userRepo,
		commissionRateBps: commissionRateBps,
		disputeWindow:     disputeWindow,
	}
}

func (s *earningsService) CompleteSession(ctx context.Context, userID, bookingID int64, code string) (*domain.ProviderEarning, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SeekerID != userID && booking.ProviderID != userID {
		return nil, domain.Validationf("user %d is not a participant of booking %d", userID, bookingID)
	}
	if booking.Status == domain.BookingStatusCompleted {
		return s.earningsRepo.GetByBooking(ctx, bookingID)
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return nil, domain.Preconditionf("booking %d is not completable in status %s", bookingID, booking.Status)
	}

	meeting, err := s.bookingRepo.GetMeetingByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(meeting.CompletionCodeHash), []byte(code)); err != nil {
		return nil, domain.Validationf("invalid completion code")
	}

	earning, _, err := s.createEarning(ctx, booking)
	return earning, err
}

// createEarning books the provider's share for a confirmed session. The
// commission rate in force right now is snapshotted onto the earning row.
func (s *earningsService) createEarning(ctx context.Context, booking *domain.Booking) (*domain.ProviderEarning, bool, error) {
	rate := s.commissionRateBps
	provider, err := s.userRepo.GetByID(ctx, booking.ProviderID)
	if err != nil {
		return nil, false, err
	}
	if provider.CommissionRateBps != nil {
		rate = *provider.CommissionRateBps
	}

	commission, net := utils.SplitCommission(booking.AmountCents, rate)
	earning := &domain.ProviderEarning{
		BookingID:         booking.ID,
		ProviderID:        booking.ProviderID,
		GrossCents:        booking.AmountCents,
		CommissionCents:   commission,
		NetCents:          net,
		CommissionRateBps: rate,
		Status:            domain.EarningStatusPending,
		DisputeDeadline:   time.Now().Add(s.disputeWindow),
	}

	created, err := s.earningsRepo.CreateForBooking(ctx, earning)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := s.earningsRepo.GetByBooking(ctx, booking.ID)
		return existing, false, err
	}
	return earning, true, nil
}

func (s *earningsService) AutoCompleteElapsed(ctx context.Context) (int, error) {
	bookings, err := s.bookingRepo.ListConfirmedEndedBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range bookings {
		_, created, err := s.createEarning(ctx, &bookings[i])
		if err != nil {
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				continue
			}
			logger.Error("failed to auto-complete session", "booking_id", bookings[i].ID, "error", err)
			continue
		}
		if created {
			completed++
		}
	}
	return completed, nil
}

// SweepDisputeWindows settles every pending earning whose window elapsed:
// no open dispute means the money is approved for withdrawal, an open
// dispute freezes it until staff resolve.
func (s *earningsService) SweepDisputeWindows(ctx context.Context) (int, int, error) {
	candidates, err := s.earningsRepo.ListSweepable(ctx, time.Now())
	if err != nil {
		return 0, 0, err
	}

	approved, frozen := 0, 0
	for _, c := range candidates {
		if c.HasOpenDispute {
			swept, err := s.earningsRepo.Sweep(ctx, c.EarningID, domain.EarningStatusDisputed, "")
			if err != nil {
				logger.Error("failed to freeze disputed earning", "earning_id", c.EarningID, "error", err)
				continue
			}
			if swept {
				_ = s.bookingRepo.UpdateStatus(ctx, c.BookingID, domain.BookingStatusCompleted, domain.BookingStatusDisputed)
				frozen++
			}
			continue
		}

		swept, err := s.earningsRepo.Sweep(ctx, c.EarningID, domain.EarningStatusApproved, domain.ApprovedBySystem)
		if err != nil {
			logger.Error("failed to approve earning", "earning_id", c.EarningID, "error", err)
			continue
		}
		if swept {
			approved++
		}
	}
	return approved, frozen, nil
}

func (s *earningsService) ListEarnings(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.ProviderEarning, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.earningsRepo.ListByProvider(ctx, providerID, page, pageSize)
}

func (s *earningsService) GetBalance(ctx context.Context, providerID int64) (int64, error) {
	return s.earningsRepo.ApprovedBalance(ctx, providerID)
}
