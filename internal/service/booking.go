package service

import (
	"context"
	"time"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/repository"
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	txRepo      repository.TransactionRepository
	userRepo    repository.UserRepository
	gateways    *gateway.Registry
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	gateways *gateway.Registry,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		txRepo:      txRepo,
		userRepo:    userRepo,
		gateways:    gateways,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, seekerID, providerID int64, startAtStr, endAtStr string, amountCents int64) (*domain.Booking, error) {
	if amountCents <= 0 {
		return nil, domain.Validationf("amount must be positive")
	}
	if seekerID == providerID {
		return nil, domain.Validationf("seeker and provider must differ")
	}

	startAt, err := time.Parse(time.RFC3339, startAtStr)
	if err != nil {
		return nil, domain.Validationf("invalid start time: %v", err)
	}
	endAt, err := time.Parse(time.RFC3339, endAtStr)
	if err != nil {
		return nil, domain.Validationf("invalid end time: %v", err)
	}
	if !endAt.After(startAt) {
		return nil, domain.Validationf("end time must be after start time")
	}
	if startAt.Before(time.Now()) {
		return nil, domain.Validationf("start time must be in the future")
	}

	provider, err := s.userRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider.Role != domain.UserRoleProvider {
		return nil, domain.Validationf("user %d is not a provider", providerID)
	}

	booking := &domain.Booking{
		SeekerID:    seekerID,
		ProviderID:  providerID,
		StartAt:     startAt,
		EndAt:       endAt,
		AmountCents: amountCents,
		Status:      domain.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// InitiatePayment opens a checkout session and records the pending
// transaction with the gateway's order id. Repeated calls open a fresh
// session; the reconciler settles whichever order the gateway reports on.
func (s *bookingService) InitiatePayment(ctx context.Context, seekerID, bookingID int64, gatewayName string) (string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.SeekerID != seekerID {
		return "", domain.Validationf("booking %d does not belong to user %d", bookingID, seekerID)
	}
	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusPaymentPending {
		return "", domain.Preconditionf("booking %d is not payable in status %s", bookingID, booking.Status)
	}

	g, err := s.gateways.Get(gatewayName)
	if err != nil {
		return "", domain.Validationf("%v", err)
	}

	seeker, err := s.userRepo.GetByID(ctx, seekerID)
	if err != nil {
		return "", err
	}

	session, err := g.CreateSession(ctx, booking.ID, booking.AmountCents, gateway.Customer{
		Name:  seeker.Name,
		Email: seeker.Email,
	})
	if err != nil {
		return "", err
	}

	tx := &domain.Transaction{
		BookingID:   booking.ID,
		Gateway:     g.Name(),
		OrderID:     session.OrderID,
		AmountCents: booking.AmountCents,
		Status:      domain.TransactionStatusPending,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return "", err
	}

	if booking.Status == domain.BookingStatusPending {
		if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusPending, domain.BookingStatusPaymentPending); err != nil {
			return "", err
		}
	}

	return session.PayURL, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SeekerID != userID && booking.ProviderID != userID {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user.Role != domain.UserRoleStaff {
			return nil, domain.ErrNotFound
		}
	}
	return booking, nil
}
