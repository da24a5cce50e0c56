// File: internal/infra/gateway/paywall.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"creator-payments/internal/config"
	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ adapter.GatewayDriver = (*PaywallDriver)(nil)

// PaywallDriver integrates the Paywall wallet provider: hosted checkout with
// a redirect URL, signed server-to-server callbacks, and a capture step to
// settle the funds.
type PaywallDriver struct {
	apiKey   string
	secret   string
	baseURL  string
	callback string
	payments repository.PaymentRepository
	client   *http.Client
}

func NewPaywallDriver(cfg config.DriverConfig, payments repository.PaymentRepository) *PaywallDriver {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Sandbox {
			baseURL = "https://sandbox.paywall.example.com/v2"
		} else {
			baseURL = "https://api.paywall.example.com/v2"
		}
	}
	timeout := time.Duration(cfg.HTTPTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaywallDriver{
		apiKey:   cfg.APIKey,
		secret:   cfg.Secret,
		baseURL:  baseURL,
		callback: cfg.CallbackURL,
		payments: payments,
		client:   &http.Client{Timeout: timeout},
	}
}

func (d *PaywallDriver) ID() string   { return "paywall" }
func (d *PaywallDriver) Name() string { return "Paywall" }
func (d *PaywallDriver) IsCard() bool { return false }

type paywallCheckoutResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Session string `json:"session"`
	URL     string `json:"url"`
}

func (d *PaywallDriver) Buy(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	body := map[string]any{
		"api_key":      d.apiKey,
		"amount":       p.Amount,
		"reference":    p.Token,
		"callback_url": d.callback,
	}
	var out paywallCheckoutResponse
	if err := d.post(ctx, "/checkout/session", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 {
		return nil, fmt.Errorf("paywall checkout rejected: code=%d message=%s", out.Code, out.Message)
	}
	return adapter.Response{"session": out.Session, "url": out.URL}, nil
}

func (d *PaywallDriver) Subscribe(ctx context.Context, p *model.Payment, target *model.User, bundle *model.Bundle) (adapter.Response, error) {
	body := map[string]any{
		"api_key":      d.apiKey,
		"amount":       p.Amount,
		"reference":    p.Token,
		"callback_url": d.callback,
		"recurring":    true,
		"interval":     "month",
	}
	// A bundle prices several months at once; bill the whole period as one
	// recurring cycle.
	if bundle != nil {
		body["interval_count"] = bundle.Months
	}
	var out paywallCheckoutResponse
	if err := d.post(ctx, "/checkout/subscription", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 {
		return nil, fmt.Errorf("paywall subscription rejected: code=%d message=%s", out.Code, out.Message)
	}
	return adapter.Response{"session": out.Session, "url": out.URL}, nil
}

// ValidateCallback authenticates the inbound notification: the signature must
// match HMAC(amount+reference+status, secret), the provider status must be
// OK, and the reference must resolve to a payment of the same amount.
// Anything else yields (nil, nil).
func (d *PaywallDriver) ValidateCallback(ctx context.Context, req *adapter.CallbackRequest) (*model.Payment, error) {
	amount := req.Params["amount"]
	reference := req.Params["reference"]
	status := req.Params["status"]
	want := callbackSignature(d.secret, amount, reference, status)
	if !signatureEqual(want, req.Params["signature"]) {
		return nil, nil
	}
	if status != "OK" || reference == "" {
		return nil, nil
	}

	p, err := d.payments.FindByToken(ctx, nil, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if strconv.FormatInt(p.Amount, 10) != amount {
		return nil, nil
	}
	return p, nil
}

type paywallCaptureResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	RefID   int64  `json:"ref_id"`
}

func (d *PaywallDriver) ProcessPayment(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	body := map[string]any{
		"api_key":   d.apiKey,
		"amount":    p.Amount,
		"reference": p.Token,
	}
	var out paywallCaptureResponse
	if err := d.post(ctx, "/checkout/capture", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 && out.Code != 101 { // 101: already captured
		return nil, fmt.Errorf("paywall capture rejected: code=%d message=%s", out.Code, out.Message)
	}
	return adapter.Response{"ref_id": strconv.FormatInt(out.RefID, 10)}, nil
}

func (d *PaywallDriver) post(ctx context.Context, path string, body map[string]any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("paywall %s: unexpected status %d: %s", path, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
