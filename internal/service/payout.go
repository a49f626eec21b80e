package service

import (
	"context"
	"fmt"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository"
)

type payoutService struct {
	payoutRepo repository.PayoutRepository
	logRepo    repository.PayoutLogRepository
	bankRepo   repository.BankAccountRepository
	userRepo   repository.UserRepository
	gateways   *gateway.Registry
	emailSvc   EmailService
	minCents   int64
	maxCents   int64
}

func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	logRepo repository.PayoutLogRepository,
	bankRepo repository.BankAccountRepository,
	userRepo repository.UserRepository,
	gateways *gateway.Registry,
	emailSvc EmailService,
	minCents, maxCents int64,
) PayoutService {
	return &payoutService{
		payoutRepo: payoutRepo,
		logRepo:    logRepo,
		bankRepo:   bankRepo,
		userRepo:   userRepo,
		gateways:   gateways,
		emailSvc:   emailSvc,
		minCents:   minCents,
		maxCents:   maxCents,
	}
}

func (s *payoutService) RequestPayout(ctx context.Context, providerID, amountCents int64) (*domain.Payout, error) {
	if amountCents < s.minCents {
		return nil, domain.Validationf("payout amount %d is below the minimum of %d cents", amountCents, s.minCents)
	}
	if amountCents > s.maxCents {
		return nil, domain.Validationf("payout amount %d exceeds the maximum of %d cents", amountCents, s.maxCents)
	}

	acct, err := s.bankRepo.GetActiveByProvider(ctx, providerID)
	if err != nil {
		return nil, domain.Preconditionf("provider %d has no bank account on file", providerID)
	}
	if acct.Status != domain.BankAccountStatusVerified || !acct.IsActive {
		return nil, domain.Preconditionf("bank account %d is not verified", acct.ID)
	}

	return s.payoutRepo.CreateWithAllocation(ctx, providerID, acct.ID, amountCents)
}

// ApprovePayout locks in the fee, then hands the payout to the gateway. The
// transfer call runs outside any database transaction; its outcome is
// recorded afterwards. A gateway outage leaves the payout APPROVED for the
// poll job to pick up.
func (s *payoutService) ApprovePayout(ctx context.Context, staffID, payoutID, feeCents int64) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if feeCents < 0 {
		return nil, domain.Validationf("fee must not be negative")
	}
	if feeCents >= payout.RequestedCents {
		return nil, domain.Validationf("fee %d must be below the requested amount %d", feeCents, payout.RequestedCents)
	}

	if err := s.payoutRepo.Approve(ctx, payoutID, staffID, feeCents); err != nil {
		return nil, err
	}

	payout, err = s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	if provider, uerr := s.userRepo.GetByID(ctx, payout.ProviderID); uerr == nil {
		_ = s.emailSvc.SendPayoutApproved(ctx, provider.Email, provider.Name, payout.ActualCents)
	}

	if err := s.initiateTransfer(ctx, payout); err != nil {
		if gateway.IsUnavailable(err) {
			logger.Warn("transfer gateway unavailable, payout stays approved", "payout_id", payout.ID, "error", err)
			return payout, nil
		}
		return nil, err
	}
	return s.payoutRepo.GetByID(ctx, payoutID)
}

// initiateTransfer sends an APPROVED payout to the bank. A rejection is
// terminal and marks the payout FAILED; the consumed earnings stay held
// until staff release them.
func (s *payoutService) initiateTransfer(ctx context.Context, payout *domain.Payout) error {
	acct, err := s.bankRepo.GetByID(ctx, payout.BankAccountID)
	if err != nil {
		return err
	}

	result, err := s.gateways.Transfers().Transfer(ctx, gateway.BankDetails{
		BankName:      acct.BankName,
		AccountNumber: acct.AccountNumber,
		HolderName:    acct.HolderName,
	}, payout.ActualCents, fmt.Sprintf("po-%d", payout.ID))
	if err != nil {
		if gateway.IsRejected(err) {
			if merr := s.payoutRepo.MarkFailed(ctx, payout.ID, err.Error()); merr != nil {
				return merr
			}
		}
		return err
	}

	if err := s.payoutRepo.MarkProcessing(ctx, payout.ID, result.TransferID); err != nil {
		return err
	}
	if result.Status == gateway.StatusPaid {
		return s.settle(ctx, payout.ID, result)
	}
	return nil
}

func (s *payoutService) settle(ctx context.Context, payoutID int64, result *gateway.TransferResult) error {
	switch result.Status {
	case gateway.StatusPaid:
		if err := s.payoutRepo.MarkCompleted(ctx, payoutID); err != nil {
			return err
		}
		payout, err := s.payoutRepo.GetByID(ctx, payoutID)
		if err != nil {
			return err
		}
		if provider, uerr := s.userRepo.GetByID(ctx, payout.ProviderID); uerr == nil {
			_ = s.emailSvc.SendPayoutCompleted(ctx, provider.Email, provider.Name, payout.ActualCents)
		}
	case gateway.StatusFailed, gateway.StatusCancelled:
		return s.payoutRepo.MarkFailed(ctx, payoutID, "transfer ended as "+result.Raw)
	}
	return nil
}

func (s *payoutService) RejectPayout(ctx context.Context, staffID, payoutID int64, reason string) error {
	if reason == "" {
		return domain.Validationf("a rejection reason is required")
	}
	if err := s.payoutRepo.RejectAndRelease(ctx, payoutID, staffID, reason); err != nil {
		return err
	}

	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil
	}
	if provider, uerr := s.userRepo.GetByID(ctx, payout.ProviderID); uerr == nil {
		_ = s.emailSvc.SendPayoutRejected(ctx, provider.Email, provider.Name, reason)
	}
	return nil
}

func (s *payoutService) ReleaseFailedPayout(ctx context.Context, staffID, payoutID int64) error {
	return s.payoutRepo.ReleaseFailed(ctx, payoutID, staffID)
}

// CheckTransferStatuses retries stuck approvals and polls in-flight
// transfers. APPROVED payouts without a transfer id never reached the
// gateway; PROCESSING ones are asked about their outcome.
func (s *payoutService) CheckTransferStatuses(ctx context.Context) (int, error) {
	settled := 0

	approved, err := s.payoutRepo.ListByStatus(ctx, domain.PayoutStatusApproved)
	if err != nil {
		return 0, err
	}
	for i := range approved {
		if approved[i].TransferID != "" {
			continue
		}
		if err := s.initiateTransfer(ctx, &approved[i]); err != nil {
			logger.Warn("retrying transfer failed", "payout_id", approved[i].ID, "error", err)
		}
	}

	processing, err := s.payoutRepo.ListByStatus(ctx, domain.PayoutStatusProcessing)
	if err != nil {
		return settled, err
	}
	for _, p := range processing {
		result, err := s.gateways.Transfers().TransferStatus(ctx, p.TransferID)
		if err != nil {
			logger.Warn("transfer status check failed", "payout_id", p.ID, "transfer_id", p.TransferID, "error", err)
			continue
		}
		if result.Status == gateway.StatusPending {
			continue
		}
		if err := s.settle(ctx, p.ID, result); err != nil {
			logger.Error("failed to settle transfer", "payout_id", p.ID, "error", err)
			continue
		}
		settled++
	}
	return settled, nil
}

func (s *payoutService) ReconcileTransfer(ctx context.Context, transferID string) error {
	payout, err := s.payoutRepo.GetByTransferID(ctx, transferID)
	if err != nil {
		return err
	}
	if payout.Status != domain.PayoutStatusProcessing {
		return nil
	}

	result, err := s.gateways.Transfers().TransferStatus(ctx, transferID)
	if err != nil {
		return err
	}
	if result.Status == gateway.StatusPending {
		return nil
	}
	return s.settle(ctx, payout.ID, result)
}

func (s *payoutService) ListPayouts(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.Payout, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.payoutRepo.ListByProvider(ctx, providerID, page, pageSize)
}

func (s *payoutService) ListPendingPayouts(ctx context.Context) ([]domain.Payout, error) {
	return s.payoutRepo.ListByStatus(ctx, domain.PayoutStatusRequested)
}

func (s *payoutService) GetPayout(ctx context.Context, payoutID int64) (*domain.Payout, []domain.PayoutLog, error) {
	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, nil, err
	}
	logs, err := s.logRepo.ListByPayout(ctx, payoutID)
	if err != nil {
		return nil, nil, err
	}
	return payout, logs, nil
}
