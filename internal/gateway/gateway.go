package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Status is the normalized payment status shared by all gateway adapters.
// Provider-specific vocabularies collapse into these four values.
type Status string

const (
	StatusPaid      Status = "PAID"
	StatusPending   Status = "PENDING"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

type Customer struct {
	Name  string
	Email string
}

// Session is a gateway checkout the seeker is sent to.
type Session struct {
	OrderID string
	PayURL  string
}

// PaymentResult is the gateway's view of an order, normalized. Raw keeps the
// provider's verbatim status string for audit.
type PaymentResult struct {
	Status      Status
	AmountCents int64
	// CaptureID is the provider's capture reference, set once the payment
	// settled. Empty for providers that do not report one.
	CaptureID string
	Raw       string
}

type BankDetails struct {
	BankName      string
	AccountNumber string
	HolderName    string
}

type TransferResult struct {
	TransferID string
	Status     Status
	Raw        string
}

// PaymentGateway abstracts one external payment provider. Implementations
// are stateless and may be retried freely; every method performs exactly one
// external call and no local side effects.
type PaymentGateway interface {
	Name() string
	CreateSession(ctx context.Context, bookingID int64, amountCents int64, customer Customer) (*Session, error)
	VerifyStatus(ctx context.Context, orderID string) (*PaymentResult, error)
	Refund(ctx context.Context, orderID string, amountCents int64) error
	// Transfer sends money out to a bank account (payouts, penny tests).
	Transfer(ctx context.Context, dest BankDetails, amountCents int64, reference string) (*TransferResult, error)
	TransferStatus(ctx context.Context, transferID string) (*TransferResult, error)
}

// UnavailableError is a transient gateway failure (network error, timeout,
// 5xx). Safe to retry with backoff.
type UnavailableError struct {
	Gateway string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("gateway %s unavailable: %v", e.Gateway, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// RejectedError is a terminal decline from the provider (invalid account
// details, declined card). Never retried.
type RejectedError struct {
	Gateway string
	Code    string
	Reason  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("gateway %s rejected request (%s): %s", e.Gateway, e.Code, e.Reason)
}

func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// Registry resolves gateways by name for webhook and redirect routing.
type Registry struct {
	gateways map[string]PaymentGateway
	// transferGateway handles outbound transfers; not every payin gateway
	// supports them.
	transferGateway PaymentGateway
}

func NewRegistry(transferGateway PaymentGateway, gateways ...PaymentGateway) *Registry {
	m := make(map[string]PaymentGateway, len(gateways))
	for _, g := range gateways {
		m[g.Name()] = g
	}
	return &Registry{gateways: m, transferGateway: transferGateway}
}

func (r *Registry) Get(name string) (PaymentGateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("unknown payment gateway %q", name)
	}
	return g, nil
}

// Transfers returns the gateway used for outbound bank transfers.
func (r *Registry) Transfers() PaymentGateway { return r.transferGateway }
