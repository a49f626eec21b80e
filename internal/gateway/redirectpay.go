package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"consultly-backend/internal/logger"
)

// RedirectPayClient integrates the hosted-page redirect gateway. The seeker
// is sent to the gateway's page and comes back through our return endpoint;
// the only reliable source of truth is the status lookup by order reference.
// RedirectPay does payins only; transfers are not supported.
type RedirectPayClient struct {
	baseURL    string
	merchantID string
	secretKey  string
	returnURL  string
	httpClient *http.Client
}

func NewRedirectPayClient(baseURL, merchantID, secretKey, returnURL string, timeout time.Duration) *RedirectPayClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RedirectPayClient{
		baseURL:    baseURL,
		merchantID: merchantID,
		secretKey:  secretKey,
		returnURL:  returnURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *RedirectPayClient) Name() string { return "redirectpay" }

type redirectpayStatusResponse struct {
	Reference string `json:"reference"`
	State     string `json:"state"`
	Amount    int64  `json:"amount"`
}

func (c *RedirectPayClient) CreateSession(ctx context.Context, bookingID int64, amountCents int64, customer Customer) (*Session, error) {
	reference := fmt.Sprintf("rp-%d-%s", bookingID, uuid.NewString()[:8])

	form := url.Values{}
	form.Set("merchant_id", c.merchantID)
	form.Set("reference", reference)
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", "USD")
	form.Set("customer_email", customer.Email)
	form.Set("return_url", c.returnURL+"?order_id="+reference)

	raw, err := c.call(ctx, http.MethodPost, "/checkout/create", form)
	if err != nil {
		return nil, err
	}

	var out struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode redirectpay response: %w", err)
	}
	return &Session{OrderID: reference, PayURL: out.RedirectURL}, nil
}

func (c *RedirectPayClient) VerifyStatus(ctx context.Context, orderID string) (*PaymentResult, error) {
	form := url.Values{}
	form.Set("reference", orderID)

	raw, err := c.call(ctx, http.MethodGet, "/checkout/status", form)
	if err != nil {
		return nil, err
	}

	var out redirectpayStatusResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode redirectpay response: %w", err)
	}
	return &PaymentResult{
		Status:      normalizeRedirectpayState(out.State),
		AmountCents: out.Amount,
		Raw:         out.State,
	}, nil
}

func (c *RedirectPayClient) Refund(ctx context.Context, orderID string, amountCents int64) error {
	form := url.Values{}
	form.Set("merchant_id", c.merchantID)
	form.Set("reference", orderID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))

	_, err := c.call(ctx, http.MethodPost, "/checkout/refund", form)
	return err
}

func (c *RedirectPayClient) Transfer(ctx context.Context, dest BankDetails, amountCents int64, reference string) (*TransferResult, error) {
	return nil, &RejectedError{Gateway: c.Name(), Code: "unsupported", Reason: "redirectpay does not support outbound transfers"}
}

func (c *RedirectPayClient) TransferStatus(ctx context.Context, transferID string) (*TransferResult, error) {
	return nil, &RejectedError{Gateway: c.Name(), Code: "unsupported", Reason: "redirectpay does not support outbound transfers"}
}

func (c *RedirectPayClient) call(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	op := method + " " + path
	logger.ExternalServiceCall(c.Name(), op)
	raw, err := c.send(ctx, method, path, form)
	logger.ExternalServiceResult(c.Name(), op, err)
	return raw, err
}

func (c *RedirectPayClient) send(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build redirectpay request: %w", err)
	}
	req.URL.RawQuery = form.Encode()
	req.Header.Set("X-Api-Key", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Gateway: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Gateway: c.Name(), Err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &UnavailableError{Gateway: c.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return nil, &RejectedError{Gateway: c.Name(), Code: fmt.Sprintf("http_%d", resp.StatusCode), Reason: string(raw)}
	}
	return raw, nil
}

func normalizeRedirectpayState(state string) Status {
	switch state {
	case "paid", "settled":
		return StatusPaid
	case "initiated", "awaiting_payment":
		return StatusPending
	case "abandoned", "expired":
		return StatusCancelled
	default:
		return StatusFailed
	}
}
