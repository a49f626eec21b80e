package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"consultly-backend/internal/logger"
)

// CardPayClient talks to the card/wallet gateway's JSON API. Payments are
// captured on the gateway side; we learn the outcome via webhook or by
// polling VerifyStatus. This is also the transfer-capable gateway used for
// payouts and penny tests.
type CardPayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewCardPayClient(baseURL, apiKey string, timeout time.Duration) *CardPayClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CardPayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *CardPayClient) Name() string { return "cardpay" }

type cardpayOrderRequest struct {
	Reference     string `json:"reference"`
	AmountCents   int64  `json:"amount"`
	Currency      string `json:"currency"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type cardpayOrderResponse struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount"`
	CaptureID   string `json:"capture_id,omitempty"`
}

type cardpayTransferRequest struct {
	Reference     string `json:"reference"`
	AmountCents   int64  `json:"amount"`
	Currency      string `json:"currency"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

type cardpayTransferResponse struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
}

type cardpayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *CardPayClient) CreateSession(ctx context.Context, bookingID int64, amountCents int64, customer Customer) (*Session, error) {
	reference := fmt.Sprintf("bk-%d-%s", bookingID, uuid.NewString()[:8])
	payload := cardpayOrderRequest{
		Reference:     reference,
		AmountCents:   amountCents,
		Currency:      "USD",
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
	}

	var resp cardpayOrderResponse
	if err := c.do(ctx, http.MethodPost, "/v1/orders", payload, &resp); err != nil {
		return nil, err
	}
	return &Session{OrderID: resp.OrderID, PayURL: resp.CheckoutURL}, nil
}

func (c *CardPayClient) VerifyStatus(ctx context.Context, orderID string) (*PaymentResult, error) {
	var resp cardpayOrderResponse
	if err := c.do(ctx, http.MethodGet, "/v1/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}
	return &PaymentResult{
		Status:      normalizeCardpayStatus(resp.Status),
		AmountCents: resp.AmountCents,
		CaptureID:   resp.CaptureID,
		Raw:         resp.Status,
	}, nil
}

func (c *CardPayClient) Refund(ctx context.Context, orderID string, amountCents int64) error {
	payload := map[string]any{"order_id": orderID, "amount": amountCents}
	return c.do(ctx, http.MethodPost, "/v1/refunds", payload, &struct{}{})
}

func (c *CardPayClient) Transfer(ctx context.Context, dest BankDetails, amountCents int64, reference string) (*TransferResult, error) {
	payload := cardpayTransferRequest{
		Reference:     reference,
		AmountCents:   amountCents,
		Currency:      "USD",
		BankName:      dest.BankName,
		AccountNumber: dest.AccountNumber,
		HolderName:    dest.HolderName,
	}

	var resp cardpayTransferResponse
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", payload, &resp); err != nil {
		return nil, err
	}
	return &TransferResult{
		TransferID: resp.TransferID,
		Status:     normalizeCardpayStatus(resp.Status),
		Raw:        resp.Status,
	}, nil
}

func (c *CardPayClient) TransferStatus(ctx context.Context, transferID string) (*TransferResult, error) {
	var resp cardpayTransferResponse
	if err := c.do(ctx, http.MethodGet, "/v1/transfers/"+transferID, nil, &resp); err != nil {
		return nil, err
	}
	return &TransferResult{
		TransferID: resp.TransferID,
		Status:     normalizeCardpayStatus(resp.Status),
		Raw:        resp.Status,
	}, nil
}

func (c *CardPayClient) do(ctx context.Context, method, path string, payload, out any) error {
	op := method + " " + path
	logger.ExternalServiceCall(c.Name(), op)
	err := c.send(ctx, method, path, payload, out)
	logger.ExternalServiceResult(c.Name(), op, err)
	return err
}

func (c *CardPayClient) send(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal cardpay request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build cardpay request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Gateway: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{Gateway: c.Name(), Err: err}
	}

	if resp.StatusCode >= 500 {
		return &UnavailableError{Gateway: c.Name(), Err: fmt.Errorf("status %d: %s", resp.StatusCode, raw)}
	}
	if resp.StatusCode >= 400 {
		var apiErr cardpayError
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Code == "" {
			return &RejectedError{Gateway: c.Name(), Code: fmt.Sprintf("http_%d", resp.StatusCode), Reason: string(raw)}
		}
		return &RejectedError{Gateway: c.Name(), Code: apiErr.Code, Reason: apiErr.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode cardpay response: %w", err)
	}
	return nil
}

// normalizeCardpayStatus collapses the cardpay vocabulary into the shared
// status set.
func normalizeCardpayStatus(raw string) Status {
	switch raw {
	case "SUCCESS", "CAPTURED", "COMPLETED":
		return StatusPaid
	case "CREATED", "PROCESSING", "PENDING":
		return StatusPending
	case "CANCELLED", "EXPIRED":
		return StatusCancelled
	default:
		// DECLINED, REVERSED, FAILED and anything unrecognized.
		return StatusFailed
	}
}
