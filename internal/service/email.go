package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendBookingConfirmed(ctx context.Context, email, name string, bookingID int64, joinURL, completionCode string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour session (booking #%d) is confirmed.\n\nJoin here: %s", name, bookingID, joinURL)
	if completionCode != "" {
		body += fmt.Sprintf("\n\nYour session completion code is: %s\nShare it with your consultant at the end of the session to confirm it took place.", completionCode)
	}
	body += "\n\nBest regards,\nThe Consultly Team"
	return s.send(email, fmt.Sprintf("Session Confirmed - Booking #%d", bookingID), body)
}

func (s *emailService) SendPaymentFailed(ctx context.Context, email, name string, bookingID int64) error {
	body := fmt.Sprintf("Hello %s,\n\nYour payment for booking #%d did not go through. The session is not reserved; please try booking again.\n\nBest regards,\nThe Consultly Team", name, bookingID)
	return s.send(email, fmt.Sprintf("Payment Failed - Booking #%d", bookingID), body)
}

func (s *emailService) SendSessionReminder(ctx context.Context, email, name string, bookingID int64, startAt string) error {
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder that your session (booking #%d) starts at %s.\n\nBest regards,\nThe Consultly Team", name, bookingID, startAt)
	return s.send(email, fmt.Sprintf("Upcoming Session - Booking #%d", bookingID), body)
}

func (s *emailService) SendPennyTestSent(ctx context.Context, email, name, bankName string) error {
	body := fmt.Sprintf("Hello %s,\n\nWe have sent a small verification deposit to your %s account. Check your bank statement in the next business days and enter the exact amount to verify the account.\n\nBest regards,\nThe Consultly Team", name, bankName)
	return s.send(email, "Verify Your Bank Account", body)
}

func (s *emailService) SendPayoutApproved(ctx context.Context, email, name string, actualCents int64) error {
	body := fmt.Sprintf("Hello %s,\n\nYour payout has been approved. $%.2f is on its way to your bank account.\n\nBest regards,\nThe Consultly Team", name, float64(actualCents)/100)
	return s.send(email, "Payout Approved", body)
}

func (s *emailService) SendPayoutRejected(ctx context.Context, email, name, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour payout request was rejected.\n\nReason: %s\n\nThe requested earnings are available again for a new request.\n\nBest regards,\nThe Consultly Team", name, reason)
	return s.send(email, "Payout Rejected", body)
}

func (s *emailService) SendPayoutCompleted(ctx context.Context, email, name string, actualCents int64) error {
	body := fmt.Sprintf("Hello %s,\n\n$%.2f has been transferred to your bank account.\n\nBest regards,\nThe Consultly Team", name, float64(actualCents)/100)
	return s.send(email, "Payout Completed", body)
}
