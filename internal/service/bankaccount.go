package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/gateway"
	"consultly-backend/internal/repository"

	"github.com/google/uuid"
)

type bankAccountService struct {
	bankRepo   repository.BankAccountRepository
	payoutRepo repository.PayoutRepository
	userRepo   repository.UserRepository
	gateways   *gateway.Registry
	emailSvc   EmailService
}

func NewBankAccountService(
	bankRepo repository.BankAccountRepository,
	payoutRepo repository.PayoutRepository,
	userRepo repository.UserRepository,
	gateways *gateway.Registry,
	emailSvc EmailService,
) BankAccountService {
	return &bankAccountService{
		bankRepo:   bankRepo,
		payoutRepo: payoutRepo,
		userRepo:   userRepo,
		gateways:   gateways,
		emailSvc:   emailSvc,
	}
}

// AddAccount registers the account and sends the penny test. When an
// earlier attempt created the row but the gateway was down before the test
// went out, the PENDING row is reused instead of failing on the uniqueness
// constraint.
func (s *bankAccountService) AddAccount(ctx context.Context, providerID int64, bankName, accountNumber, holderName string) (*domain.ProviderBankAccount, error) {
	if bankName == "" || accountNumber == "" || holderName == "" {
		return nil, domain.Validationf("bank name, account number and holder name are required")
	}

	acct := &domain.ProviderBankAccount{
		ProviderID:    providerID,
		BankName:      bankName,
		AccountNumber: accountNumber,
		HolderName:    holderName,
		Status:        domain.BankAccountStatusPending,
	}
	err := s.bankRepo.Create(ctx, acct)
	if domain.IsPrecondition(err) {
		existing, gerr := s.bankRepo.GetActiveByProvider(ctx, providerID)
		if gerr != nil || existing.Status != domain.BankAccountStatusPending {
			return nil, err
		}
		acct = existing
	} else if err != nil {
		return nil, err
	}

	if err := s.sendPennyTest(ctx, acct); err != nil {
		return nil, err
	}
	return s.bankRepo.GetByID(ctx, acct.ID)
}

// sendPennyTest wires a random amount between one and ten cents to the
// account. The amount is the shared secret the provider reads off their
// statement.
func (s *bankAccountService) sendPennyTest(ctx context.Context, acct *domain.ProviderBankAccount) error {
	pennyCents := int64(rand.Intn(10) + 1)
	reference := fmt.Sprintf("verify-%d-%s", acct.ID, uuid.NewString()[:8])

	_, err := s.gateways.Transfers().Transfer(ctx, gateway.BankDetails{
		BankName:      acct.BankName,
		AccountNumber: acct.AccountNumber,
		HolderName:    acct.HolderName,
	}, pennyCents, reference)
	if err != nil {
		return err
	}

	if err := s.bankRepo.MarkPennyTestSent(ctx, acct.ID, pennyCents, reference); err != nil {
		return err
	}

	if provider, uerr := s.userRepo.GetByID(ctx, acct.ProviderID); uerr == nil {
		_ = s.emailSvc.SendPennyTestSent(ctx, provider.Email, provider.Name, acct.BankName)
	}
	return nil
}

// VerifyPennyAmount checks the claimed amount against the wired one with a
// one cent tolerance for bank rounding. Each wrong claim burns an attempt;
// the account locks permanently when they run out.
func (s *bankAccountService) VerifyPennyAmount(ctx context.Context, providerID int64, claimedCents int64) (int32, error) {
	acct, err := s.bankRepo.GetActiveByProvider(ctx, providerID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, domain.Preconditionf("provider %d has no bank account on file", providerID)
	}
	if err != nil {
		return 0, err
	}
	if acct.Status == domain.BankAccountStatusRejected {
		return 0, domain.Preconditionf("bank account %d is locked after too many failed attempts", acct.ID)
	}
	if acct.Status != domain.BankAccountStatusPennyTestSent {
		return 0, domain.Preconditionf("bank account %d is not awaiting verification", acct.ID)
	}

	diff := claimedCents - acct.PennyCents
	if diff >= -1 && diff <= 1 {
		if err := s.bankRepo.MarkVerified(ctx, acct.ID); err != nil {
			return 0, err
		}
		return 0, nil
	}

	attempts, status, err := s.bankRepo.IncrementAttempts(ctx, acct.ID)
	if err != nil {
		return 0, err
	}
	if status == domain.BankAccountStatusRejected {
		return 0, domain.Preconditionf("bank account %d is locked after %d failed attempts", acct.ID, attempts)
	}
	remaining := int32(domain.MaxPennyTestAttempts) - attempts
	return remaining, domain.Validationf("amount does not match, %d attempts remaining", remaining)
}

func (s *bankAccountService) RequestDeletion(ctx context.Context, providerID int64, reason string) (*domain.BankAccountDeleteRequest, error) {
	acct, err := s.bankRepo.GetActiveByProvider(ctx, providerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Preconditionf("provider %d has no bank account on file", providerID)
	}
	if err != nil {
		return nil, err
	}

	inflight, err := s.payoutRepo.HasNonTerminalForAccount(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if inflight {
		return nil, domain.Preconditionf("bank account %d has in-flight payouts", acct.ID)
	}

	req := &domain.BankAccountDeleteRequest{
		BankAccountID: acct.ID,
		ProviderID:    providerID,
		Reason:        reason,
		Status:        domain.DeleteRequestStatusPending,
	}
	if err := s.bankRepo.CreateDeleteRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *bankAccountService) ReviewDeleteRequest(ctx context.Context, staffID, requestID int64, approve bool) error {
	return s.bankRepo.ReviewDeleteRequest(ctx, requestID, staffID, approve)
}

func (s *bankAccountService) ListPendingDeleteRequests(ctx context.Context) ([]domain.BankAccountDeleteRequest, error) {
	return s.bankRepo.ListPendingDeleteRequests(ctx)
}

func (s *bankAccountService) GetActiveAccount(ctx context.Context, providerID int64) (*domain.ProviderBankAccount, error) {
	return s.bankRepo.GetActiveByProvider(ctx, providerID)
}
