package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/config"
	"storefront/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *RazorpayClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRazorpay(config.RazorpayConfig{BaseURL: srv.URL, KeyID: "key", KeySecret: "secret"}, timeout)
}

func TestFetchPayment_Captured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Errorf("expected basic auth, got %q %q", user, pass)
		}
		if r.URL.Path != "/payments/pay_123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"pay_123","amount":125050,"currency":"inr","status":"captured"}`))
	}, time.Second)

	p, err := client.FetchPayment(context.Background(), "pay_123")
	if err != nil {
		t.Fatalf("FetchPayment: %v", err)
	}
	if !p.Captured() || p.Currency != "INR" {
		t.Fatalf("unexpected payment %+v", p)
	}
	if !p.Amount.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("expected 1250.50, got %s", p.Amount)
	}
}

func TestFetchPayment_UnknownReference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`))
	}, time.Second)

	_, err := client.FetchPayment(context.Background(), "pay_missing")
	if !errors.Is(err, domain.ErrPaymentNotConfirmed) {
		t.Fatalf("expected ErrPaymentNotConfirmed, got %v", err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected gateway description in error, got %v", err)
	}
}

func TestFetchPayment_ServerErrorAndTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, time.Second)
	if _, err := client.FetchPayment(context.Background(), "pay_1"); !IsUnavailable(err) {
		t.Fatalf("expected ErrGatewayUnavailable on 502, got %v", err)
	}

	slow := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}, 20*time.Millisecond)
	if _, err := slow.FetchPayment(context.Background(), "pay_1"); !IsUnavailable(err) {
		t.Fatalf("expected ErrGatewayUnavailable on timeout, got %v", err)
	}
}

func TestCreateIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["amount"] != float64(49999) || body["currency"] != "INR" || body["payment_capture"] != float64(1) {
			t.Errorf("unexpected body %v", body)
		}
		receipt, _ := body["receipt"].(string)
		if !strings.HasPrefix(receipt, "rcpt_") {
			t.Errorf("unexpected receipt %q", receipt)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "order_abc", "amount": 49999, "currency": "INR", "receipt": receipt, "status": "created",
		})
	}, time.Second)

	intent, err := client.CreateIntent(context.Background(), decimal.RequireFromString("499.99"), "inr")
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.IntentID != "order_abc" || !strings.HasPrefix(intent.ReceiptID, "rcpt_") {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if !intent.Amount.Equal(decimal.RequireFromString("499.99")) {
		t.Fatalf("unexpected amount %s", intent.Amount)
	}

	if _, err := client.CreateIntent(context.Background(), decimal.Zero, "INR"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero amount, got %v", err)
	}
}
