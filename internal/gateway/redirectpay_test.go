package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectPayClient_CreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/create", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "m-1", r.URL.Query().Get("merchant_id"))
		assert.Equal(t, "2500", r.URL.Query().Get("amount"))
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("reference"), "rp-9-"))

		json.NewEncoder(w).Encode(map[string]string{"redirect_url": "https://rp.example/pay/abc"})
	}))
	defer srv.Close()

	client := NewRedirectPayClient(srv.URL, "m-1", "secret", "https://app.example/payments/return/redirectpay", 0)
	session, err := client.CreateSession(context.Background(), 9, 2500, Customer{Email: "ann@example.com"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.OrderID, "rp-9-"))
	assert.Equal(t, "https://rp.example/pay/abc", session.PayURL)
}

func TestRedirectPayClient_VerifyStatus_Normalization(t *testing.T) {
	cases := []struct {
		state string
		want  Status
	}{
		{"paid", StatusPaid},
		{"settled", StatusPaid},
		{"initiated", StatusPending},
		{"awaiting_payment", StatusPending},
		{"abandoned", StatusCancelled},
		{"expired", StatusCancelled},
		{"rejected", StatusFailed},
	}

	for _, tc := range cases {
		t.Run(tc.state, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/checkout/status", r.URL.Path)
				assert.Equal(t, "rp-1-x", r.URL.Query().Get("reference"))
				json.NewEncoder(w).Encode(redirectpayStatusResponse{Reference: "rp-1-x", State: tc.state, Amount: 700})
			}))
			defer srv.Close()

			client := NewRedirectPayClient(srv.URL, "m-1", "secret", "https://app.example/return", 0)
			result, err := client.VerifyStatus(context.Background(), "rp-1-x")
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Status)
			assert.Equal(t, int64(700), result.AmountCents)
		})
	}
}

func TestRedirectPayClient_Refund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/refund", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "m-1", r.URL.Query().Get("merchant_id"))
		assert.Equal(t, "rp-1-x", r.URL.Query().Get("reference"))
		assert.Equal(t, "700", r.URL.Query().Get("amount"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewRedirectPayClient(srv.URL, "m-1", "secret", "https://app.example/return", 0)
	err := client.Refund(context.Background(), "rp-1-x", 700)
	assert.NoError(t, err)
}

func TestRedirectPayClient_ErrorMapping(t *testing.T) {
	t.Run("4xx is terminal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown reference", http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewRedirectPayClient(srv.URL, "m-1", "secret", "https://app.example/return", 0)
		_, err := client.VerifyStatus(context.Background(), "rp-gone")
		assert.True(t, IsRejected(err))
	})

	t.Run("5xx is retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewRedirectPayClient(srv.URL, "m-1", "secret", "https://app.example/return", 0)
		err := client.Refund(context.Background(), "rp-1-x", 700)
		assert.True(t, IsUnavailable(err))
	})
}

func TestRedirectPayClient_TransfersUnsupported(t *testing.T) {
	client := NewRedirectPayClient("http://unused", "m-1", "secret", "https://app.example/return", 0)

	_, err := client.Transfer(context.Background(), BankDetails{}, 100, "po-1")
	assert.True(t, IsRejected(err))

	_, err = client.TransferStatus(context.Background(), "tr-1")
	assert.True(t, IsRejected(err))
}

func TestRegistry(t *testing.T) {
	cardpay := NewCardPayClient("http://cp", "k", 0)
	redirectpay := NewRedirectPayClient("http://rp", "m", "s", "r", 0)
	registry := NewRegistry(cardpay, cardpay, redirectpay)

	g, err := registry.Get("cardpay")
	require.NoError(t, err)
	assert.Equal(t, "cardpay", g.Name())

	g, err = registry.Get("redirectpay")
	require.NoError(t, err)
	assert.Equal(t, "redirectpay", g.Name())

	_, err = registry.Get("paypal")
	assert.Error(t, err)

	assert.Equal(t, "cardpay", registry.Transfers().Name())
}
