// File: internal/infra/gateway/cardlink.go
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
var _ adapter.CardDriver = (*CardlinkDriver)(nil)

// CardlinkDriver is the distinguished card processor. It tokenizes raw card
// input into a durable reference during method onboarding and charges either
// a stored method or a one-shot card through a client-secret flow.
type CardlinkDriver struct {
	apiKey   string
	secret   string
	baseURL  string
	payments repository.PaymentRepository
	client   *http.Client
}

func NewCardlinkDriver(cfg config.DriverConfig, payments repository.PaymentRepository) *CardlinkDriver {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Sandbox {
			baseURL = "https://sandbox.cardlink.example.com/v1"
		} else {
			baseURL = "https://api.cardlink.example.com/v1"
		}
	}
	timeout := time.Duration(cfg.HTTPTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CardlinkDriver{
		apiKey:   cfg.APIKey,
		secret:   cfg.Secret,
		baseURL:  baseURL,
		payments: payments,
		client:   &http.Client{Timeout: timeout},
	}
}

func (d *CardlinkDriver) ID() string   { return "cardlink" }
func (d *CardlinkDriver) Name() string { return "Cardlink" }
func (d *CardlinkDriver) IsCard() bool { return true }

type cardlinkChargeResponse struct {
	Code         int    `json:"code"`
	Message      string `json:"message"`
	ClientSecret string `json:"client_secret"`
}

func (d *CardlinkDriver) Buy(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	body := map[string]any{
		"api_key":   d.apiKey,
		"amount":    p.Amount,
		"reference": p.Token,
		"customer":  p.UserID,
	}
	var out cardlinkChargeResponse
	if err := d.post(ctx, "/charges", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 {
		return nil, fmt.Errorf("cardlink charge rejected: code=%d message=%s", out.Code, out.Message)
	}
	return adapter.Response{"client_secret": out.ClientSecret}, nil
}

func (d *CardlinkDriver) Subscribe(ctx context.Context, p *model.Payment, target *model.User, bundle *model.Bundle) (adapter.Response, error) {
	body := map[string]any{
		"api_key":   d.apiKey,
		"amount":    p.Amount,
		"reference": p.Token,
		"customer":  p.UserID,
		"recurring": true,
	}
	if bundle != nil {
		body["interval_count"] = bundle.Months
	}
	var out cardlinkChargeResponse
	if err := d.post(ctx, "/subscriptions", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 {
		return nil, fmt.Errorf("cardlink subscription rejected: code=%d message=%s", out.Code, out.Message)
	}
	return adapter.Response{"client_secret": out.ClientSecret}, nil
}

func (d *CardlinkDriver) ValidateCallback(ctx context.Context, req *adapter.CallbackRequest) (*model.Payment, error) {
	reference := req.Params["reference"]
	amount := req.Params["amount"]
	want := callbackSignature(d.secret, reference, amount)
	if !signatureEqual(want, req.Headers["X-Cardlink-Signature"]) {
		return nil, nil
	}
	if reference == "" {
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

type cardlinkCaptureResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	RefID   string `json:"ref_id"`
}

func (d *CardlinkDriver) ProcessPayment(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	body := map[string]any{
		"api_key":   d.apiKey,
		"reference": p.Token,
	}
	var out cardlinkCaptureResponse
	if err := d.post(ctx, "/charges/capture", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 && out.Code != 101 { // 101: already captured
		return nil, fmt.Errorf("cardlink capture rejected: code=%d message=%s", out.Code, out.Message)
	}
	return adapter.Response{"ref_id": out.RefID}, nil
}

type cardlinkTokenizeResponse struct {
	Code  int    `json:"code"`
	Token string `json:"token"`
	Last4 string `json:"last4"`
	Brand string `json:"brand"`
}

// ExtractCardInfo tokenizes onboarding input. A decline is (nil, nil), not an
// error; transport failures are errors.
func (d *CardlinkDriver) ExtractCardInfo(ctx context.Context, input map[string]string, user *model.User) (map[string]string, error) {
	body := map[string]any{
		"api_key":  d.apiKey,
		"customer": user.ID,
		"number":   input["number"],
		"expiry":   input["expiry"],
		"cvc":      input["cvc"],
		"holder":   input["holder"],
	}
	var out cardlinkTokenizeResponse
	if err := d.post(ctx, "/tokens", body, &out); err != nil {
		return nil, err
	}
	if out.Code != 100 || out.Token == "" {
		return nil, nil
	}
	return map[string]string{
		"token": out.Token,
		"last4": out.Last4,
		"brand": out.Brand,
	}, nil
}

func (d *CardlinkDriver) post(ctx context.Context, path string, body map[string]any, out any) error {
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
		return fmt.Errorf("cardlink %s: unexpected status %d: %s", path, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
