package jobs

import (
	"consultly-backend/internal/logger"
)

// ExpireUnpaidBookings purges bookings whose payment deadline passed
// without a completed payment, freeing the provider's slot.
func (jr *JobRunner) ExpireUnpaidBookings() {
	jr.runWithRecovery("expire_unpaid_bookings", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		purged, err := jr.services.Reconciler.ExpireOverdueBookings(ctx)
		if err != nil {
			logger.Error("Failed to expire unpaid bookings", "error", err)
			return
		}
		if purged > 0 {
			logger.Info("Expired unpaid bookings", "purged", purged)
		}
	})
}

// AutoCompleteSessions completes confirmed sessions whose scheduled end
// time has passed without either side entering the completion code.
func (jr *JobRunner) AutoCompleteSessions() {
	jr.runWithRecovery("auto_complete_sessions", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		completed, err := jr.services.Earnings.AutoCompleteElapsed(ctx)
		if err != nil {
			logger.Error("Failed to auto-complete sessions", "error", err)
			return
		}
		if completed > 0 {
			logger.Info("Auto-completed elapsed sessions", "completed", completed)
		}
	})
}

// SendSessionReminders emails both parties of upcoming sessions.
func (jr *JobRunner) SendSessionReminders() {
	jr.runWithRecovery("send_session_reminders", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		sent, err := jr.services.Reminder.SendUpcomingSessionReminders(ctx)
		if err != nil {
			logger.Error("Failed to send session reminders", "error", err)
			return
		}
		if sent > 0 {
			logger.Info("Sent session reminders", "sent", sent)
		}
	})
}
