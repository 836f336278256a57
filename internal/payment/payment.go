// Package payment routes payment operations to the configured providers.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pizzeria-api/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Provider names.
const (
	ProviderCash      = "cash"
	ProviderStripe    = "stripe"
	ProviderSquare    = "square"
	ProviderPayPal    = "paypal"
	ProviderApplePay  = "apple_pay"
	ProviderGooglePay = "google_pay"
)

// Intent statuses.
const (
	StatusRequiresConfirmation = "requires_confirmation"
	StatusCompleted            = "completed"
	StatusRefunded             = "refunded"
	StatusFailed               = "failed"
)

// IntentRequest describes an amount to collect for an order.
type IntentRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	OrderID  string            `json:"orderId"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Intent is a provider-side payment attempt.
type Intent struct {
	ID           string          `json:"id"`
	Provider     string          `json:"provider"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ClientSecret string          `json:"clientSecret,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Refund is the result of returning funds for an intent.
type Refund struct {
	ID       string          `json:"id"`
	IntentID string          `json:"intentId"`
	Provider string          `json:"provider"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
}

// Method is a payment option offered to customers.
type Method struct {
	Provider    string          `json:"provider"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	FeeRate     decimal.Decimal `json:"feeRate"`
	Enabled     bool            `json:"enabled"`
}

// Provider is one payment processor.
type Provider interface {
	Name() string
	Enabled() bool
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	Confirm(ctx context.Context, intentID string) (*Intent, error)
	Refund(ctx context.Context, intentID string, amount decimal.Decimal) (*Refund, error)
}

var methodInfo = map[string]Method{
	ProviderCash:      {Name: "Cash", Description: "Pay with cash on pickup or delivery", FeeRate: decimal.Zero},
	ProviderStripe:    {Name: "Credit/Debit Card", Description: "Visa, Mastercard, American Express", FeeRate: decimal.RequireFromString("0.029")},
	ProviderPayPal:    {Name: "PayPal", Description: "Pay with your PayPal account", FeeRate: decimal.RequireFromString("0.034")},
	ProviderSquare:    {Name: "Square", Description: "Secure card processing by Square", FeeRate: decimal.RequireFromString("0.026")},
	ProviderApplePay:  {Name: "Apple Pay", Description: "Quick and secure payment with Touch ID", FeeRate: decimal.RequireFromString("0.029")},
	ProviderGooglePay: {Name: "Google Pay", Description: "Fast checkout with Google Pay", FeeRate: decimal.RequireFromString("0.029")},
}

// Gateway dispatches to registered providers and bounds every call with a timeout.
type Gateway struct {
	providers map[string]Provider
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewGateway creates a gateway over the given providers.
func NewGateway(timeout time.Duration, logger zerolog.Logger, providers ...Provider) *Gateway {
	g := &Gateway{
		providers: make(map[string]Provider, len(providers)),
		timeout:   timeout,
		logger:    logger.With().Str("component", "payment").Logger(),
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

// AvailableMethods lists every enabled provider with its fee rate.
func (g *Gateway) AvailableMethods() []Method {
	methods := make([]Method, 0, len(g.providers))
	for name, p := range g.providers {
		if !p.Enabled() {
			continue
		}
		m := methodInfo[name]
		m.Provider = name
		m.Enabled = true
		if m.Name == "" {
			m.Name = name
		}
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Provider < methods[j].Provider })
	return methods
}

// CreateIntent starts a payment with provider.
func (g *Gateway) CreateIntent(ctx context.Context, provider string, req IntentRequest) (*Intent, error) {
	p, err := g.provider(provider)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, model.ErrInvalidOrder.WithDetail("payment amount must be positive", nil)
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	intent, err := p.CreateIntent(ctx, req)
	if err != nil {
		return nil, g.failure(provider, "create intent", err)
	}
	g.logger.Info().
		Str("provider", provider).
		Str("intent_id", intent.ID).
		Str("order_id", req.OrderID).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("payment intent created")
	return intent, nil
}

// Confirm completes a previously created intent.
func (g *Gateway) Confirm(ctx context.Context, provider, intentID string) (*Intent, error) {
	p, err := g.provider(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	intent, err := p.Confirm(ctx, intentID)
	if err != nil {
		return nil, g.failure(provider, "confirm", err)
	}
	return intent, nil
}

// Refund returns amount for an intent; a zero amount refunds in full.
func (g *Gateway) Refund(ctx context.Context, provider, intentID string, amount decimal.Decimal) (*Refund, error) {
	p, err := g.provider(provider)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, model.ErrInvalidOrder.WithDetail("refund amount must not be negative", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	refund, err := p.Refund(ctx, intentID, amount)
	if err != nil {
		return nil, g.failure(provider, "refund", err)
	}
	g.logger.Info().Str("provider", provider).Str("intent_id", intentID).Msg("payment refunded")
	return refund, nil
}

func (g *Gateway) provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, model.ErrUnknownPaymentProvider.WithDetail(name, nil)
	}
	if !p.Enabled() {
		return nil, model.ErrPaymentProviderUnavailable.WithDetail(fmt.Sprintf("%s is not configured", name), nil)
	}
	return p, nil
}

func (g *Gateway) failure(provider, op string, err error) error {
	g.logger.Error().Err(err).Str("provider", provider).Str("op", op).Msg("payment provider call failed")

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrPaymentProviderUnavailable.WithDetail(fmt.Sprintf("%s %s timed out", provider, op), err)
	}
	return model.ErrPaymentProviderUnavailable.WithDetail(fmt.Sprintf("%s %s failed", provider, op), err)
}
