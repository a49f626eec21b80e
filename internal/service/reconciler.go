package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository"
)

type reconcilerService struct {
	txRepo      repository.TransactionRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	gateways    *gateway.Registry
	emailSvc    EmailService
	baseURL     string
	// deadlineLead is how close to its start time an unpaid booking may get
	// before it is expired and purged.
	deadlineLead time.Duration
}

func NewReconcilerService(
	txRepo repository.TransactionRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	gateways *gateway.Registry,
	emailSvc EmailService,
	baseURL string,
	deadlineLead time.Duration,
) ReconcilerService {
	return &reconcilerService{
		txRepo:       txRepo,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		gateways:     gateways,
		emailSvc:     emailSvc,
		baseURL:      baseURL,
		deadlineLead: deadlineLead,
	}
}

// Reconcile verifies the order with the gateway and drives the transaction
// and its booking to the matching state. Every trigger (webhook, redirect
// return, manual poll) funnels through here, so each path is a no-op when
// another already settled the order.
func (s *reconcilerService) Reconcile(ctx context.Context, gatewayName, orderID string) (*domain.Transaction, error) {
	g, err := s.gateways.Get(gatewayName)
	if err != nil {
		return nil, domain.Validationf("%v", err)
	}

	tx, err := s.txRepo.GetByOrderID(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		// Payment landed for a purged booking. The money must go back; the
		// session it paid for no longer exists.
		s.refundOrphan(ctx, g, orderID)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if tx.Gateway != gatewayName {
		return nil, domain.Validationf("order %s belongs to gateway %s", orderID, tx.Gateway)
	}
	if tx.Status == domain.TransactionStatusCompleted || tx.Status == domain.TransactionStatusRefunded {
		return tx, nil
	}

	result, err := g.VerifyStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case gateway.StatusPaid:
		if result.AmountCents != tx.AmountCents {
			logger.Error("paid amount does not match order",
				"order_id", orderID, "expected_cents", tx.AmountCents, "paid_cents", result.AmountCents)
			return nil, domain.Preconditionf("order %s paid amount %d does not match expected %d",
				orderID, result.AmountCents, tx.AmountCents)
		}
		booking, err := s.bookingRepo.GetByID(ctx, tx.BookingID)
		if err != nil {
			return nil, err
		}
		if booking.Status == domain.BookingStatusPaymentPending && time.Until(booking.StartAt) < s.deadlineLead {
			// The payment cleared inside the deadline lead. The slot is
			// already forfeit; the money goes back.
			return nil, s.expirePaid(ctx, g, tx, booking)
		}
		if err := s.confirm(ctx, g, tx, result); err != nil {
			return nil, err
		}
	case gateway.StatusFailed, gateway.StatusCancelled:
		if err := s.bookingRepo.CancelPayment(ctx, tx.BookingID, tx.ID, result.Raw); err != nil {
			return nil, err
		}
		s.notifyPaymentFailed(ctx, tx.BookingID)
	case gateway.StatusPending:
		// Nothing to record yet.
	}

	return s.txRepo.GetByOrderID(ctx, orderID)
}

func (s *reconcilerService) confirm(ctx context.Context, g gateway.PaymentGateway, tx *domain.Transaction, result *gateway.PaymentResult) error {
	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	joinURL := fmt.Sprintf("%s/meetings/%d", s.baseURL, tx.BookingID)

	err = s.bookingRepo.ConfirmPayment(ctx, repository.ConfirmPaymentParams{
		BookingID:          tx.BookingID,
		TransactionID:      tx.ID,
		CaptureID:          result.CaptureID,
		JoinURL:            joinURL,
		CompletionCodeHash: string(hash),
	})
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		// A concurrent trigger confirmed first.
		return nil
	}
	if err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, tx.BookingID)
	if err != nil {
		logger.Warn("booking confirmed but lookup for notification failed", "booking_id", tx.BookingID, "error", err)
		return nil
	}
	if seeker, err := s.userRepo.GetByID(ctx, booking.SeekerID); err == nil {
		_ = s.emailSvc.SendBookingConfirmed(ctx, seeker.Email, seeker.Name, booking.ID, joinURL, code)
	}
	if provider, err := s.userRepo.GetByID(ctx, booking.ProviderID); err == nil {
		_ = s.emailSvc.SendBookingConfirmed(ctx, provider.Email, provider.Name, booking.ID, joinURL, "")
	}
	return nil
}

func (s *reconcilerService) notifyPaymentFailed(ctx context.Context, bookingID int64) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return
	}
	if seeker, err := s.userRepo.GetByID(ctx, booking.SeekerID); err == nil {
		_ = s.emailSvc.SendPaymentFailed(ctx, seeker.Email, seeker.Name, booking.ID)
	}
}

// expirePaid handles a payment that cleared after the booking's payment
// deadline but before the expiry job purged it. The booking is purged here
// and the money refunded; a concurrency conflict on the purge means another
// trigger settled the booking first, so the caller retries.
func (s *reconcilerService) expirePaid(ctx context.Context, g gateway.PaymentGateway, tx *domain.Transaction, booking *domain.Booking) error {
	if err := s.bookingRepo.PurgeWithTransactions(ctx, booking.ID); err != nil {
		return err
	}
	logger.Warn("payment cleared past the booking deadline, refunding",
		"gateway", g.Name(), "booking_id", booking.ID, "order_id", tx.OrderID, "amount_cents", tx.AmountCents)
	if err := g.Refund(ctx, tx.OrderID, tx.AmountCents); err != nil {
		logger.Error("refund of expired booking payment failed, manual follow-up required",
			"gateway", g.Name(), "order_id", tx.OrderID, "amount_cents", tx.AmountCents, "error", err)
	}
	return domain.Preconditionf("booking %d expired before its payment completed", booking.ID)
}

// refundOrphan handles a payment that succeeded after its booking was
// purged. Refund is best effort: on gateway failure the discrepancy is
// logged for manual follow-up, never silently dropped.
func (s *reconcilerService) refundOrphan(ctx context.Context, g gateway.PaymentGateway, orderID string) {
	result, err := g.VerifyStatus(ctx, orderID)
	if err != nil || result.Status != gateway.StatusPaid {
		return
	}
	logger.Warn("late payment for unknown order, refunding", "gateway", g.Name(), "order_id", orderID, "amount_cents", result.AmountCents)
	if err := g.Refund(ctx, orderID, result.AmountCents); err != nil {
		logger.Error("refund of orphaned payment failed, manual follow-up required",
			"gateway", g.Name(), "order_id", orderID, "amount_cents", result.AmountCents, "error", err)
	}
}

// ExpireOverdueBookings purges unpaid bookings whose start time is inside
// the payment deadline lead. A booking confirmed between listing and purge
// fails the status guard and is skipped.
func (s *reconcilerService) ExpireOverdueBookings(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(s.deadlineLead)
	bookings, err := s.bookingRepo.ListExpiredPaymentPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, b := range bookings {
		if err := s.bookingRepo.PurgeWithTransactions(ctx, b.ID); err != nil {
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				continue
			}
			logger.Error("failed to purge expired booking", "booking_id", b.ID, "error", err)
			continue
		}
		purged++
	}
	return purged, nil
}
