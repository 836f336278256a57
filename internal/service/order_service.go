package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pizzeria-api/internal/delivery"
	"pizzeria-api/internal/lifecycle"
	"pizzeria-api/internal/model"
	"pizzeria-api/internal/notification"
	"pizzeria-api/internal/pricing"
	"pizzeria-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	myOrdersLimit  = 50
	allOrdersLimit = 100
)

// OrderSettings holds the ready-time estimates and collaborator timeouts used by orderService.
type OrderSettings struct {
	DeliveryReadyAfter time.Duration
	PickupReadyAfter   time.Duration
	StoreTimeout       time.Duration
	NotifyTimeout      time.Duration
}

// DefaultOrderSettings returns the settings the restaurant runs with.
func DefaultOrderSettings() OrderSettings {
	return OrderSettings{
		DeliveryReadyAfter: 45 * time.Minute,
		PickupReadyAfter:   25 * time.Minute,
		StoreTimeout:       5 * time.Second,
		NotifyTimeout:      3 * time.Second,
	}
}

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	engine    *pricing.Engine
	resolver  *delivery.Resolver
	notifier  notification.Notifier
	settings  OrderSettings
	now       func() time.Time
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	engine *pricing.Engine,
	resolver *delivery.Resolver,
	notifier notification.Notifier,
	settings OrderSettings,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		engine:    engine,
		resolver:  resolver,
		notifier:  notifier,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates the cart, computes delivery and pricing server-side,
// persists the order and sends best-effort notifications.
func (s *orderService) PlaceOrder(ctx context.Context, actor *model.User, req *model.PlaceOrderRequest) (*model.Order, error) {
	if actor == nil {
		return nil, model.ErrUnauthorised
	}
	if req == nil {
		return nil, model.ErrInvalidOrder.WithDetail("order request is empty", nil)
	}
	if err := pricing.ValidateLines(req.Items); err != nil {
		s.logger.Warn().Err(err).Str("user_id", actor.ID.String()).Msg("rejected cart")
		return nil, err
	}
	for i, line := range req.Items {
		if line.ItemType != model.ItemTypePizza && line.ItemType != model.ItemTypeMenuItem {
			return nil, model.ErrInvalidCart.WithDetail(fmt.Sprintf("item %d: unknown item type %q", i, line.ItemType), nil)
		}
	}
	if !req.OrderType.Valid() {
		return nil, model.ErrInvalidOrder.WithDetail("unknown order type "+string(req.OrderType), nil)
	}
	if !req.PaymentMethod.Valid() {
		return nil, model.ErrInvalidOrder.WithDetail("unknown payment method "+string(req.PaymentMethod), nil)
	}

	fee := decimal.Zero
	distance := decimal.Zero
	var address *model.Address
	readyAfter := s.settings.PickupReadyAfter

	if req.OrderType == model.OrderTypeDelivery {
		if req.DeliveryAddress == nil {
			return nil, model.ErrMissingAddress
		}
		quote, err := s.resolver.Resolve(ctx, *req.DeliveryAddress)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("user_id", actor.ID.String()).
				Str("distance_miles", quote.DistanceMiles.String()).
				Msg("delivery not possible")
			return nil, err
		}
		addr := *req.DeliveryAddress
		address = &addr
		fee = quote.Fee
		distance = quote.DistanceMiles
		readyAfter = s.settings.DeliveryReadyAfter
	}

	quote, err := s.engine.Price(req.Items, fee)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		ID:                    uuid.New(),
		UserID:                actor.ID,
		Lines:                 req.Items,
		OrderType:             req.OrderType,
		PaymentMethod:         req.PaymentMethod,
		DeliveryAddress:       address,
		DeliveryDistanceMiles: distance,
		Subtotal:              quote.Subtotal,
		DeliveryFee:           quote.DeliveryFee,
		Tax:                   quote.Tax,
		Total:                 quote.Total,
		Status:                model.StatusPending,
		SpecialInstructions:   req.SpecialInstructions,
		EstimatedReadyAt:      now.Add(readyAfter),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	storeCtx, cancel := withTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()
	if err := s.orderRepo.Create(storeCtx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, storeError("create order", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_type", string(order.OrderType)).
		Int("item_count", len(order.Lines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	s.notifyPlaced(ctx, order, contactOf(actor))

	return order, nil
}

func (s *orderService) notifyPlaced(ctx context.Context, order *model.Order, contact notification.Contact) {
	notifyCtx, cancel := withTimeout(ctx, s.settings.NotifyTimeout)
	defer cancel()

	if err := s.notifier.SendOrderConfirmation(notifyCtx, order, contact); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order confirmation not sent")
	}
	if err := s.notifier.SendAdminNewOrderAlert(notifyCtx, order); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("staff alert not sent")
	}
}

// ListMyOrders returns the actor's own orders, newest first.
func (s *orderService) ListMyOrders(ctx context.Context, actor *model.User) ([]model.Order, error) {
	if actor == nil {
		return nil, model.ErrUnauthorised
	}

	storeCtx, cancel := withTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()

	orders, err := s.orderRepo.List(storeCtx, model.OrderFilter{UserID: &actor.ID, Limit: myOrdersLimit})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", actor.ID.String()).Msg("failed to list orders")
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

// GetOrder returns an order visible to actor.
func (s *orderService) GetOrder(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Order, error) {
	if actor == nil {
		return nil, model.ErrUnauthorised
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("user_id", actor.ID.String()).
			Msg("order belongs to another user")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListAllOrders returns every order, optionally narrowed to one status.
func (s *orderService) ListAllOrders(ctx context.Context, status string) ([]model.Order, error) {
	filter := model.OrderFilter{Limit: allOrdersLimit}
	if strings.TrimSpace(status) != "" {
		parsed, err := lifecycle.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}

	storeCtx, cancel := withTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()

	orders, err := s.orderRepo.List(storeCtx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list all orders")
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. The status update and its
// history row are written in one transaction; the customer notification
// afterwards is best-effort.
func (s *orderService) UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.Order, error) {
	target, err := lifecycle.ParseStatus(status)
	if err != nil {
		s.logger.Warn().Str("order_id", id.String()).Str("status", status).Msg("unknown status requested")
		return nil, err
	}
	if actor == nil {
		return nil, model.ErrUnauthorised
	}
	if !actor.IsAdmin {
		return nil, model.ErrForbidden
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == target {
		s.logger.Debug().Str("order_id", id.String()).Str("status", string(target)).Msg("status unchanged")
		return order, nil
	}
	if err := lifecycle.Validate(order.OrderType, order.Status, target); err != nil {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("rejected status transition")
		return nil, err
	}

	now := s.now()
	if err := s.persistTransition(ctx, order, target, actor.ID, now); err != nil {
		return nil, err
	}

	from := order.Status
	order.Status = target
	order.UpdatedAt = now

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(target)).
		Str("changed_by", actor.ID.String()).
		Msg("order status updated")

	s.notifyStatus(ctx, order)

	return order, nil
}

func (s *orderService) persistTransition(ctx context.Context, order *model.Order, target model.OrderStatus, actorID uuid.UUID, now time.Time) (err error) {
	storeCtx, cancel := withTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()

	tx, err := s.orderRepo.BeginTx(storeCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return storeError("update order status", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(storeCtx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.UpdateStatus(storeCtx, tx, order.ID, target, now); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order status")
		return storeError("update order status", err)
	}

	change := &model.StatusChange{
		ID:         uuid.New(),
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   target,
		ChangedBy:  actorID,
		ChangedAt:  now,
	}
	if err = s.orderRepo.InsertStatusChange(storeCtx, tx, change); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to record status change")
		return storeError("record status change", err)
	}

	if err = tx.Commit(storeCtx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return storeError("update order status", err)
	}
	return nil
}

func (s *orderService) notifyStatus(ctx context.Context, order *model.Order) {
	notifyCtx, cancel := withTimeout(ctx, s.settings.NotifyTimeout)
	defer cancel()

	owner, err := s.userRepo.GetByID(notifyCtx, order.UserID)
	if err != nil || owner == nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order owner not found, status update not sent")
		return
	}
	if err := s.notifier.SendStatusUpdate(notifyCtx, order, order.Status, contactOf(owner)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("status update not sent")
	}
}

// StatusHistory returns the recorded transitions of an order.
func (s *orderService) StatusHistory(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	storeCtx, cancel := withTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()

	history, err := s.orderRepo.History(storeCtx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to load status history")
		return nil, storeError("load status history", err)
	}
	return history, nil
}

// load fetches an order or returns model.ErrOrderNotFound.
func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	storeCtx, cancel := withTimeout(ctx, s.settings.StoreTimeout)
	defer cancel()

	order, err := s.orderRepo.GetByID(storeCtx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, storeError("get order", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func contactOf(user *model.User) notification.Contact {
	return notification.Contact{
		Email: user.Email,
		Name:  strings.TrimSpace(user.FirstName + " " + user.LastName),
		Phone: user.Phone,
	}
}
