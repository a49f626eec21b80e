package http

import (
	"net/http"

	"consultly-backend/internal/jobs"
)

// CronHandler exposes the scheduled jobs as HTTP triggers for external
// schedulers. Protected by the shared cron secret.
type CronHandler struct {
	runner *jobs.JobRunner
}

func NewCronHandler(runner *jobs.JobRunner) *CronHandler {
	return &CronHandler{runner: runner}
}

func (h *CronHandler) trigger(job func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *CronHandler) SweepDisputeWindows() http.HandlerFunc {
	return h.trigger(h.runner.SweepDisputeWindows)
}

func (h *CronHandler) ExpireUnpaidBookings() http.HandlerFunc {
	return h.trigger(h.runner.ExpireUnpaidBookings)
}

func (h *CronHandler) AutoCompleteSessions() http.HandlerFunc {
	return h.trigger(h.runner.AutoCompleteSessions)
}

func (h *CronHandler) PollTransferStatuses() http.HandlerFunc {
	return h.trigger(h.runner.PollTransferStatuses)
}

func (h *CronHandler) SendSessionReminders() http.HandlerFunc {
	return h.trigger(h.runner.SendSessionReminders)
}
