package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"consultly-backend/internal/domain"
)

func TestReminder_SendUpcomingSessionReminders(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	userRepo := new(MockUserRepo)
	emailSvc := new(MockEmailService)
	svc := NewReminderService(bookingRepo, userRepo, emailSvc, 24*time.Hour)
	ctx := context.Background()

	start := time.Now().Add(12 * time.Hour)
	bookings := []domain.Booking{
		{ID: 10, SeekerID: 1, ProviderID: 2, StartAt: start, Status: domain.BookingStatusConfirmed},
		{ID: 11, SeekerID: 3, ProviderID: 2, StartAt: start, Status: domain.BookingStatusConfirmed},
	}
	bookingRepo.On("ListUnremindedStartingBefore", ctx, mock.AnythingOfType("time.Time")).Return(bookings, nil)
	userRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Email: "s@x.com", Name: "Sam"}, nil)
	userRepo.On("GetByID", ctx, int64(3)).Return(&domain.User{ID: 3, Email: "t@x.com", Name: "Toni"}, nil)
	userRepo.On("GetByID", ctx, int64(2)).Return(&domain.User{ID: 2, Email: "p@x.com", Name: "Pat"}, nil)
	emailSvc.On("SendSessionReminder", ctx, mock.Anything, mock.Anything, mock.AnythingOfType("int64"), mock.Anything).Return(nil)
	bookingRepo.On("MarkReminderSent", ctx, int64(10)).Return(nil)
	bookingRepo.On("MarkReminderSent", ctx, int64(11)).Return(nil)

	sent, err := svc.SendUpcomingSessionReminders(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, sent)
	emailSvc.AssertNumberOfCalls(t, "SendSessionReminder", 4)
}

func TestReminder_MarkFailureDoesNotCount(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	userRepo := new(MockUserRepo)
	emailSvc := new(MockEmailService)
	svc := NewReminderService(bookingRepo, userRepo, emailSvc, 24*time.Hour)
	ctx := context.Background()

	bookings := []domain.Booking{{ID: 10, SeekerID: 1, ProviderID: 2, StartAt: time.Now().Add(time.Hour)}}
	bookingRepo.On("ListUnremindedStartingBefore", ctx, mock.AnythingOfType("time.Time")).Return(bookings, nil)
	userRepo.On("GetByID", ctx, mock.AnythingOfType("int64")).Return(&domain.User{Email: "x@x.com", Name: "X"}, nil)
	emailSvc.On("SendSessionReminder", ctx, mock.Anything, mock.Anything, mock.AnythingOfType("int64"), mock.Anything).Return(nil)
	bookingRepo.On("MarkReminderSent", ctx, int64(10)).Return(assert.AnError)

	sent, err := svc.SendUpcomingSessionReminders(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, sent)
}
