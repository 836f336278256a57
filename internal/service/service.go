package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pizzeria-api/internal/model"
	"pizzeria-api/internal/payment"
	"pizzeria-api/internal/seed"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService defines operations for order placement and management.
type OrderService interface {
	// PlaceOrder prices, persists and announces a new order for actor.
	PlaceOrder(ctx context.Context, actor *model.User, req *model.PlaceOrderRequest) (*model.Order, error)

	// ListMyOrders returns the actor's own orders, newest first.
	ListMyOrders(ctx context.Context, actor *model.User) ([]model.Order, error)

	// GetOrder returns an order visible to actor. Orders owned by someone else
	// are reported as not found unless actor is an admin.
	GetOrder(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Order, error)

	// ListAllOrders returns every order, optionally narrowed to one status.
	ListAllOrders(ctx context.Context, status string) ([]model.Order, error)

	// UpdateStatus moves an order along its lifecycle and notifies the customer.
	UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.Order, error)

	// StatusHistory returns the recorded transitions of an order, oldest first.
	StatusHistory(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error)
}

// AuthService defines account and token operations.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, error)

	// BootstrapAdmin creates the configured admin account if it does not exist yet.
	BootstrapAdmin(ctx context.Context, email, password string) error
}

// CatalogService defines menu operations.
type CatalogService interface {
	ListPizzas(ctx context.Context) ([]model.Pizza, error)
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	Categories() model.Categories
	CreatePizza(ctx context.Context, pizza *model.Pizza) (*model.Pizza, error)
	CreateMenuItem(ctx context.Context, item *model.MenuItem) (*model.MenuItem, error)

	// Seed loads the menu at path and writes it when the catalog is empty.
	Seed(ctx context.Context, loader seed.Loader, path string) (bool, error)
}

// PaymentService defines payment operations on orders.
type PaymentService interface {
	AvailableMethods() []payment.Method
	CreateIntentForOrder(ctx context.Context, actor *model.User, orderID uuid.UUID, req *model.PaymentIntentRequest) (*payment.Intent, error)
	Confirm(ctx context.Context, actor *model.User, orderID uuid.UUID, intentID string, req *model.PaymentConfirmRequest) (*payment.Intent, error)
	Refund(ctx context.Context, intentID string, req *model.RefundRequest) (*payment.Refund, error)
}

// PaymentGateway is the subset of payment.Gateway used by PaymentService.
type PaymentGateway interface {
	AvailableMethods() []payment.Method
	CreateIntent(ctx context.Context, provider string, req payment.IntentRequest) (*payment.Intent, error)
	Confirm(ctx context.Context, provider, intentID string) (*payment.Intent, error)
	Refund(ctx context.Context, provider, intentID string, amount decimal.Decimal) (*payment.Refund, error)
}

// withTimeout bounds ctx by d. A non-positive d only adds cancellation.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// storeError maps a repository failure to what callers should see.
// Domain errors pass through, deadlines become retryable upstream errors and
// everything else is wrapped.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrUpstreamUnavailable.WithDetail("store did not respond during "+op, err)
	}
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
