// Package payment talks to the Razorpay REST API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"storefront/internal/config"
	"storefront/internal/domain"
)

// StatusCaptured is the gateway status of a settled payment.
const StatusCaptured = "captured"

// Payment is the gateway view of a payment reference.
type Payment struct {
	ID       string
	Status   string
	Amount   decimal.Decimal
	Currency string
}

// Captured reports whether the payment has been irrevocably charged.
func (p Payment) Captured() bool {
	return p.Status == StatusCaptured
}

// Intent is a gateway order the client pays against.
type Intent struct {
	IntentID  string          `json:"intentId"`
	ReceiptID string          `json:"receiptId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
}

type Gateway interface {
	FetchPayment(ctx context.Context, ref string) (*Payment, error)
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*Intent, error)
}

// RazorpayClient implements Gateway with basic-auth JSON calls.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewRazorpay(cfg config.RazorpayConfig, timeout time.Duration) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: timeout},
	}
}

type razorpayPayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) FetchPayment(ctx context.Context, ref string) (*Payment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: payment reference required", domain.ErrInvalidArgument)
	}
	var out razorpayPayment
	status, err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(ref), nil, &out)
	if err != nil {
		if status >= 400 && status < 500 && status != http.StatusUnauthorized && status != http.StatusForbidden {
			return nil, fmt.Errorf("%w: %v", domain.ErrPaymentNotConfirmed, err)
		}
		return nil, err
	}
	return &Payment{
		ID:       out.ID,
		Status:   out.Status,
		Amount:   fromMinorUnits(out.Amount),
		Currency: strings.ToUpper(out.Currency),
	}, nil
}

func (c *RazorpayClient) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*Intent, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}
	req := map[string]any{
		"amount":          toMinorUnits(amount),
		"currency":        strings.ToUpper(currency),
		"receipt":         "rcpt_" + uuid.NewString(),
		"payment_capture": 1,
	}
	var out razorpayOrder
	status, err := c.do(ctx, http.MethodPost, "/orders", req, &out)
	if err != nil {
		if status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		return nil, err
	}
	return &Intent{
		IntentID:  out.ID,
		ReceiptID: out.Receipt,
		Amount:    fromMinorUnits(out.Amount),
		Currency:  strings.ToUpper(out.Currency),
		Status:    out.Status,
	}, nil
}

// do sends the request and decodes a 2xx body into out. Transport failures,
// timeouts and 5xx or auth errors are reported as ErrGatewayUnavailable.
func (c *RazorpayClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: razorpay %s %s: %v", domain.ErrGatewayUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read razorpay response: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		var apiErr razorpayError
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.Error.Description
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		err := fmt.Errorf("razorpay %s %s: status %d: %s", method, path, resp.StatusCode, msg)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return resp.StatusCode, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
		}
		return resp.StatusCode, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode razorpay response: %v", domain.ErrGatewayUnavailable, err)
	}
	return resp.StatusCode, nil
}

// IsUnavailable reports whether err is a transient gateway failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrGatewayUnavailable)
}

// toMinorUnits converts 12.34 into 1234 (paise, cents).
func toMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
