package bkash

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/paygate-payment-gateway/internal/config"
	"github.com/paygate-payment-gateway/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(newTestLogger(), &config.BkashConfig{
		BaseURL:   baseURL,
		AppKey:    "app-key",
		AppSecret: "app-secret",
		Username:  "sandbox",
		Password:  "sandbox",
		Timeout:   5 * time.Second,
	})
}

// tokenGrantHandler serves a successful token grant, asserting the
// credential exchange headers and body
func tokenGrantHandler(t *testing.T, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sandbox", r.Header.Get("username"))
		assert.Equal(t, "sandbox", r.Header.Get("password"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "app-key", body["app_key"])
		assert.Equal(t, "app-secret", body["app_secret"])

		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": token})
	}
}

func TestClient_CreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			assert.Equal(t, "app-key", r.Header.Get("X-APP-Key"))

			var body createRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "100.00", body.Amount, "amount must be a 2-decimal major-unit string")
			assert.Equal(t, "BDT", body.Currency)
			assert.Equal(t, "ORD1", body.MerchantInvoiceNumber)
			assert.Equal(t, "https://merchant.example/return", body.CallbackURL)
			assert.Equal(t, "sale", body.Intent)

			_ = json.NewEncoder(w).Encode(map[string]string{
				"bkashURL":  "https://bkash.example/checkout/abc",
				"paymentID": "TR001",
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := newTestClient(srv.URL)
		result, err := client.CreatePayment(ctx, gateway.CreatePaymentRequest{
			TransactionRef: "TXN-20260831-abc",
			OrderID:        "ORD1",
			Amount:         decimal.RequireFromString("100.00"),
			Currency:       "BDT",
			CallbackURL:    "https://merchant.example/return",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://bkash.example/checkout/abc", result.PaymentURL)
		assert.Equal(t, "TR001", result.GatewayReference)
	})

	t.Run("GatewayRejects", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorMessage":"invalid wallet"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := newTestClient(srv.URL)
		result, err := client.CreatePayment(ctx, gateway.CreatePaymentRequest{
			OrderID: "ORD1", Amount: decimal.RequireFromString("10.00"), Currency: "BDT",
		})

		assert.Nil(t, result)
		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, GatewayName, gwErr.Gateway)
	})

	t.Run("MissingResponseFields", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"statusMessage": "ok"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.CreatePayment(ctx, gateway.CreatePaymentRequest{
			OrderID: "ORD1", Amount: decimal.RequireFromString("10.00"), Currency: "BDT",
		})

		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Contains(t, gwErr.Message, "missing")
	})

	t.Run("TokenGrantFails", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.CreatePayment(ctx, gateway.CreatePaymentRequest{
			OrderID: "ORD1", Amount: decimal.RequireFromString("10.00"), Currency: "BDT",
		})

		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "token grant", gwErr.Op)
	})

	t.Run("SubCentAmountRejectedBeforeDispatch", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		created := false
		mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
			created = true
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.CreatePayment(ctx, gateway.CreatePaymentRequest{
			OrderID: "ORD1", Amount: decimal.RequireFromString("12.505"), Currency: "BDT",
		})

		assert.Error(t, err)
		assert.False(t, created, "no create call should reach the gateway")
	})
}

func TestClient_VerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Completed", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		mux.HandleFunc("/payment/status/TR001", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"transactionStatus": "Completed"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		paid, err := newTestClient(srv.URL).VerifyPayment(ctx, "TR001")
		require.NoError(t, err)
		assert.True(t, paid)
	})

	t.Run("NotYetPaid", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		mux.HandleFunc("/payment/status/TR001", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"transactionStatus": "Initiated"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		paid, err := newTestClient(srv.URL).VerifyPayment(ctx, "TR001")
		require.NoError(t, err)
		assert.False(t, paid, "a not-yet-paid answer is false, not an error")
	})

	t.Run("StaleTokenRefreshedOnce", func(t *testing.T) {
		grants := 0
		statusCalls := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", func(w http.ResponseWriter, r *http.Request) {
			grants++
			_ = json.NewEncoder(w).Encode(map[string]string{"id_token": "token-" + string(rune('0'+grants))})
		})
		mux.HandleFunc("/payment/status/TR001", func(w http.ResponseWriter, r *http.Request) {
			statusCalls++
			if statusCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"transactionStatus": "Completed"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		paid, err := newTestClient(srv.URL).VerifyPayment(ctx, "TR001")
		require.NoError(t, err)
		assert.True(t, paid)
		assert.Equal(t, 2, grants, "one initial grant plus exactly one refresh")
		assert.Equal(t, 2, statusCalls, "exactly one retry after the refresh")
	})

	t.Run("UnauthorizedAfterRefresh", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token/grant", tokenGrantHandler(t, "token-1"))
		mux.HandleFunc("/payment/status/TR001", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		paid, err := newTestClient(srv.URL).VerifyPayment(ctx, "TR001")
		assert.False(t, paid)
		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Contains(t, gwErr.Message, "unauthorized")
	})
}

func TestClient_ExtractWebhookReference(t *testing.T) {
	client := newTestClient("http://unused")

	assert.Equal(t, "TR001", client.ExtractWebhookReference(map[string]string{"paymentID": "TR001"}))
	assert.Empty(t, client.ExtractWebhookReference(map[string]string{"status": "success"}))
}
