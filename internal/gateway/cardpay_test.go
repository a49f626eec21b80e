package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardpayServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *CardPayClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewCardPayClient(srv.URL, "test-key", 0)
}

func TestCardPayClient_CreateSession(t *testing.T) {
	_, client := cardpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req cardpayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(5000), req.AmountCents)
		assert.Equal(t, "USD", req.Currency)

		json.NewEncoder(w).Encode(cardpayOrderResponse{
			OrderID:     "ord_123",
			CheckoutURL: "https://pay.example/ord_123",
			Status:      "CREATED",
		})
	})

	session, err := client.CreateSession(context.Background(), 7, 5000, Customer{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ord_123", session.OrderID)
	assert.Equal(t, "https://pay.example/ord_123", session.PayURL)
}

func TestCardPayClient_VerifyStatus_Normalization(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"SUCCESS", StatusPaid},
		{"CAPTURED", StatusPaid},
		{"COMPLETED", StatusPaid},
		{"CREATED", StatusPending},
		{"PROCESSING", StatusPending},
		{"PENDING", StatusPending},
		{"CANCELLED", StatusCancelled},
		{"EXPIRED", StatusCancelled},
		{"DECLINED", StatusFailed},
		{"SOMETHING_NEW", StatusFailed},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			_, client := cardpayServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/orders/ord_1", r.URL.Path)
				json.NewEncoder(w).Encode(cardpayOrderResponse{
					OrderID: "ord_1", Status: tc.raw, AmountCents: 1000, CaptureID: "cap_1",
				})
			})

			result, err := client.VerifyStatus(context.Background(), "ord_1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Status)
			assert.Equal(t, tc.raw, result.Raw)
			assert.Equal(t, int64(1000), result.AmountCents)
		})
	}
}

func TestCardPayClient_ServerErrorIsUnavailable(t *testing.T) {
	_, client := cardpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.VerifyStatus(context.Background(), "ord_1")
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsRejected(err))
}

func TestCardPayClient_ClientErrorIsRejected(t *testing.T) {
	_, client := cardpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(cardpayError{Code: "invalid_account", Message: "account number failed validation"})
	})

	_, err := client.Transfer(context.Background(), BankDetails{BankName: "Test", AccountNumber: "123", HolderName: "Ann"}, 1000, "po-1")
	assert.True(t, IsRejected(err))
	assert.False(t, IsUnavailable(err))

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "invalid_account", rejected.Code)
}

func TestCardPayClient_NetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on
	client := NewCardPayClient(srv.URL, "test-key", 0)

	_, err := client.VerifyStatus(context.Background(), "ord_1")
	assert.True(t, IsUnavailable(err))
}

func TestCardPayClient_Transfer(t *testing.T) {
	_, client := cardpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transfers", r.URL.Path)

		var req cardpayTransferRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "po-42", req.Reference)
		assert.Equal(t, int64(85000), req.AmountCents)

		json.NewEncoder(w).Encode(cardpayTransferResponse{TransferID: "tr_99", Status: "PROCESSING"})
	})

	result, err := client.Transfer(context.Background(), BankDetails{BankName: "First", AccountNumber: "9", HolderName: "Ann"}, 85000, "po-42")
	require.NoError(t, err)
	assert.Equal(t, "tr_99", result.TransferID)
	assert.Equal(t, StatusPending, result.Status)
}
