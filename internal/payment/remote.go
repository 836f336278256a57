package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"pizzeria-api/internal/model"

	"github.com/shopspring/decimal"
)

// RemoteConfig locates a hosted payment processor.
type RemoteConfig struct {
	Endpoint string
	APIKey   string
}

// remoteProvider talks JSON over HTTPS to a hosted processor.
type remoteProvider struct {
	name   string
	cfg    RemoteConfig
	client *http.Client
}

// NewRemoteProvider creates a provider backed by a hosted processor.
// The provider is disabled when the endpoint or API key is missing.
func NewRemoteProvider(name string, cfg RemoteConfig, client *http.Client) Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &remoteProvider{
		name:   name,
		cfg:    RemoteConfig{Endpoint: strings.TrimRight(cfg.Endpoint, "/"), APIKey: cfg.APIKey},
		client: client,
	}
}

func (r *remoteProvider) Name() string { return r.name }

func (r *remoteProvider) Enabled() bool {
	return r.cfg.Endpoint != "" && r.cfg.APIKey != ""
}

type intentPayload struct {
	AmountCents int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type intentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	AmountCents  int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
}

type refundPayload struct {
	AmountCents int64 `json:"amount,omitempty"`
}

type refundResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount"`
}

func (r *remoteProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	metadata := map[string]string{"order_id": req.OrderID}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	amount, err := toCents(req.Amount)
	if err != nil {
		return nil, err
	}

	var resp intentResponse
	err = r.do(ctx, "/v1/intents", intentPayload{
		AmountCents: amount,
		Currency:    req.Currency,
		Metadata:    metadata,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return r.intent(resp), nil
}

func (r *remoteProvider) Confirm(ctx context.Context, intentID string) (*Intent, error) {
	var resp intentResponse
	if err := r.do(ctx, "/v1/intents/"+url.PathEscape(intentID)+"/confirm", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return r.intent(resp), nil
}

func (r *remoteProvider) Refund(ctx context.Context, intentID string, amount decimal.Decimal) (*Refund, error) {
	cents, err := toCents(amount)
	if err != nil {
		return nil, err
	}

	var resp refundResponse
	err = r.do(ctx, "/v1/intents/"+url.PathEscape(intentID)+"/refunds", refundPayload{AmountCents: cents}, &resp)
	if err != nil {
		return nil, err
	}
	return &Refund{
		ID:       resp.ID,
		IntentID: intentID,
		Provider: r.name,
		Amount:   fromCents(resp.AmountCents),
		Status:   resp.Status,
	}, nil
}

func (r *remoteProvider) intent(resp intentResponse) *Intent {
	return &Intent{
		ID:           resp.ID,
		Provider:     r.name,
		Status:       resp.Status,
		Amount:       fromCents(resp.AmountCents),
		Currency:     resp.Currency,
		ClientSecret: resp.ClientSecret,
	}
}

func (r *remoteProvider) do(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", r.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", r.name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.name, err)
	}
	return nil
}

// walletProvider routes a wallet payment through the card processor that tokenises it.
type walletProvider struct {
	name string
	card Provider
}

// NewWalletProvider creates a wallet provider on top of a card provider.
// It is enabled exactly when the card provider is.
func NewWalletProvider(name string, card Provider) Provider {
	return &walletProvider{name: name, card: card}
}

func (w *walletProvider) Name() string  { return w.name }
func (w *walletProvider) Enabled() bool { return w.card.Enabled() }

func (w *walletProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	metadata := map[string]string{"wallet": w.name}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	req.Metadata = metadata

	intent, err := w.card.CreateIntent(ctx, req)
	if err != nil {
		return nil, err
	}
	intent.Provider = w.name
	return intent, nil
}

func (w *walletProvider) Confirm(ctx context.Context, intentID string) (*Intent, error) {
	intent, err := w.card.Confirm(ctx, intentID)
	if err != nil {
		return nil, err
	}
	intent.Provider = w.name
	return intent, nil
}

func (w *walletProvider) Refund(ctx context.Context, intentID string, amount decimal.Decimal) (*Refund, error) {
	refund, err := w.card.Refund(ctx, intentID, amount)
	if err != nil {
		return nil, err
	}
	refund.Provider = w.name
	return refund, nil
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

func toCents(d decimal.Decimal) (int64, error) {
	c := d.Shift(2).Round(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, model.ErrInvalidOrder.WithDetail(fmt.Sprintf("amount %s out of range", d), nil)
	}
	return c.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
