package service

import (
	"context"
	"strings"

	"pizzeria-api/internal/model"
	"pizzeria-api/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orders  OrderService
	gateway PaymentGateway
	logger  zerolog.Logger
}

// NewPaymentService creates a new payment service. Order lookups go through
// orders so the same visibility rules apply.
func NewPaymentService(orders OrderService, gateway PaymentGateway, logger zerolog.Logger) PaymentService {
	return &paymentService{
		orders:  orders,
		gateway: gateway,
		logger:  logger.With().Str("service", "payment").Logger(),
	}
}

func (s *paymentService) AvailableMethods() []payment.Method {
	return s.gateway.AvailableMethods()
}

// CreateIntentForOrder opens a payment intent for the full total of an order owned by actor.
func (s *paymentService) CreateIntentForOrder(ctx context.Context, actor *model.User, orderID uuid.UUID, req *model.PaymentIntentRequest) (*payment.Intent, error) {
	if req == nil || strings.TrimSpace(req.Provider) == "" {
		return nil, model.ErrUnknownPaymentProvider.WithDetail("provider is required", nil)
	}

	order, err := s.orders.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.StatusCancelled {
		return nil, model.ErrInvalidOrder.WithDetail("order is cancelled", nil)
	}

	intent, err := s.gateway.CreateIntent(ctx, req.Provider, payment.IntentRequest{
		Amount:   order.Total,
		Currency: req.Currency,
		OrderID:  order.ID.String(),
		Metadata: map[string]string{
			"order_number": order.Number(),
			"user_id":      order.UserID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("provider", intent.Provider).
		Str("intent_id", intent.ID).
		Msg("payment intent created")
	return intent, nil
}

// Confirm completes an intent for an order owned by actor.
func (s *paymentService) Confirm(ctx context.Context, actor *model.User, orderID uuid.UUID, intentID string, req *model.PaymentConfirmRequest) (*payment.Intent, error) {
	if req == nil || strings.TrimSpace(req.Provider) == "" {
		return nil, model.ErrUnknownPaymentProvider.WithDetail("provider is required", nil)
	}

	order, err := s.orders.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.StatusCancelled {
		return nil, model.ErrInvalidOrder.WithDetail("order is cancelled", nil)
	}

	intent, err := s.gateway.Confirm(ctx, req.Provider, intentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("provider", intent.Provider).
		Str("intent_id", intent.ID).
		Str("status", intent.Status).
		Msg("payment intent confirmed")
	return intent, nil
}

func (s *paymentService) Refund(ctx context.Context, intentID string, req *model.RefundRequest) (*payment.Refund, error) {
	if req == nil || strings.TrimSpace(req.Provider) == "" {
		return nil, model.ErrUnknownPaymentProvider.WithDetail("provider is required", nil)
	}

	refund, err := s.gateway.Refund(ctx, req.Provider, intentID, req.Amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("intent_id", intentID).
		Str("provider", refund.Provider).
		Str("amount", refund.Amount.StringFixed(2)).
		Msg("payment refunded")
	return refund, nil
}
