package jobs

import (
	"consultly-backend/internal/logger"
)

// SweepDisputeWindows approves pending earnings whose dispute window
// elapsed and freezes the ones with an open dispute.
func (jr *JobRunner) SweepDisputeWindows() {
	jr.runWithRecovery("sweep_dispute_windows", func() {
		ctx, cancel := jr.jobContext()
		defer cancel()

		approved, frozen, err := jr.services.Earnings.SweepDisputeWindows(ctx)
		if err != nil {
			logger.Error("Failed to sweep dispute windows", "error", err)
			return
		}
		if approved > 0 || frozen > 0 {
			logger.Info("Swept dispute windows", "approved", approved, "frozen", frozen)
		}
	})
}
