package jobs

import (
	"consultly-backend/internal/logger"
)

// PollTransferStatuses asks the gateway about in-flight payout transfers
// and settles the ones that finished. Also retries approved payouts whose
// transfer never reached the gateway.
func (jr *JobRunner) PollTransferStatuses() {
	jr.runWithRecovery("poll_transfer_statuses", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		settled, err := jr.services.Payout.CheckTransferStatuses(ctx)
		if err != nil {
			logger.Error("Failed to poll transfer statuses", "error", err)
			return
		}
		if settled > 0 {
			logger.Info("Settled payout transfers", "settled", settled)
		}
	})
}
