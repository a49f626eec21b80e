package service

import (
	"context"
	"time"

	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository"
)

type reminderService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	emailSvc    EmailService
	// leadTime is how far ahead of the session start reminders go out.
	leadTime time.Duration
}

func NewReminderService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	leadTime time.Duration,
) ReminderService {
	return &reminderService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		leadTime:    leadTime,
	}
}

func (s *reminderService) SendUpcomingSessionReminders(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(s.leadTime)
	bookings, err := s.bookingRepo.ListUnremindedStartingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range bookings {
		startAt := b.StartAt.Format(time.RFC1123)
		if seeker, err := s.userRepo.GetByID(ctx, b.SeekerID); err == nil {
			_ = s.emailSvc.SendSessionReminder(ctx, seeker.Email, seeker.Name, b.ID, startAt)
		}
		if provider, err := s.userRepo.GetByID(ctx, b.ProviderID); err == nil {
			_ = s.emailSvc.SendSessionReminder(ctx, provider.Email, provider.Name, b.ID, startAt)
		}
		if err := s.bookingRepo.MarkReminderSent(ctx, b.ID); err != nil {
			logger.Warn("failed to mark reminder as sent", "booking_id", b.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
