package domain

import "time"

type BankAccountStatus string

const (
	BankAccountStatusPending       BankAccountStatus = "PENDING"
	BankAccountStatusPennyTestSent BankAccountStatus = "PENNY_TEST_SENT"
	BankAccountStatusVerified      BankAccountStatus = "VERIFIED"
	BankAccountStatusRejected      BankAccountStatus = "REJECTED"
	BankAccountStatusDeleted       BankAccountStatus = "DELETED"
)

// MaxPennyTestAttempts is the number of wrong guesses after which an account
// is permanently rejected.
const MaxPennyTestAttempts = 3

// ProviderBankAccount is a payout destination. Only a VERIFIED, active
// account may be referenced by a payout, and a provider has at most one
// active non-deleted account at a time.
type ProviderBankAccount struct {
	ID             int64             `json:"id"`
	ProviderID     int64             `json:"provider_id"`
	BankName       string            `json:"bank_name"`
	AccountNumber  string            `json:"account_number"`
	HolderName     string            `json:"holder_name"`
	Status         BankAccountStatus `json:"status"`
	PennyCents     int64             `json:"-"` // expected micro-deposit amount, never exposed
	PennyReference string            `json:"-"` // gateway transfer reference of the penny test
	Attempts       int32             `json:"attempts"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type DeleteRequestStatus string

const (
	DeleteRequestStatusPending  DeleteRequestStatus = "PENDING"
	DeleteRequestStatusApproved DeleteRequestStatus = "APPROVED"
	DeleteRequestStatusRejected DeleteRequestStatus = "REJECTED"
)

// BankAccountDeleteRequest is a staff-reviewed request to retire a bank
// account. Approval is blocked while the account has in-flight payouts.
type BankAccountDeleteRequest struct {
	ID            int64               `json:"id"`
	BankAccountID int64               `json:"bank_account_id"`
	ProviderID    int64               `json:"provider_id"`
	Reason        string              `json:"reason"`
	Status        DeleteRequestStatus `json:"status"`
	ReviewedBy    *int64              `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}
