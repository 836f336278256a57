// Package notification renders and dispatches customer and staff notifications.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"pizzeria-api/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Notifier sends order notifications. Callers treat every error as non-fatal.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order, contact Contact) error
	SendStatusUpdate(ctx context.Context, order *model.Order, status model.OrderStatus, contact Contact) error
	SendAdminNewOrderAlert(ctx context.Context, order *model.Order) error
}

// Publisher is the subset of *amqp.Channel used to publish messages.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// amqpNotifier publishes rendered messages to a topic exchange for a mail worker to deliver.
type amqpNotifier struct {
	publisher Publisher
	exchange  string
	renderer  *Renderer
	logger    zerolog.Logger
}

// NewAMQPNotifier creates a notifier that publishes to exchange.
func NewAMQPNotifier(publisher Publisher, exchange string, renderer *Renderer, logger zerolog.Logger) Notifier {
	return &amqpNotifier{
		publisher: publisher,
		exchange:  exchange,
		renderer:  renderer,
		logger:    logger.With().Str("notifier", "amqp").Logger(),
	}
}

func (n *amqpNotifier) SendOrderConfirmation(ctx context.Context, order *model.Order, contact Contact) error {
	msg, err := n.renderer.Confirmation(order, contact)
	if err != nil {
		return err
	}
	return n.publish(ctx, msg)
}

func (n *amqpNotifier) SendStatusUpdate(ctx context.Context, order *model.Order, status model.OrderStatus, contact Contact) error {
	msg, err := n.renderer.StatusUpdate(order, status, contact)
	if err != nil {
		return err
	}
	return n.publish(ctx, msg)
}

func (n *amqpNotifier) SendAdminNewOrderAlert(ctx context.Context, order *model.Order) error {
	msg, err := n.renderer.AdminAlert(order)
	if err != nil {
		return err
	}
	if len(msg.To) == 0 {
		n.logger.Debug().Str("order_id", msg.OrderID).Msg("no staff recipients configured, skipping admin alert")
		return nil
	}
	return n.publish(ctx, msg)
}

func (n *amqpNotifier) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = n.publisher.PublishWithContext(ctx, n.exchange, string(msg.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderID + ":" + string(msg.Kind) + ":" + string(msg.Status),
		Timestamp:    msg.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", msg.Kind, err)
	}

	n.logger.Debug().
		Str("kind", string(msg.Kind)).
		Str("order_id", msg.OrderID).
		Int("recipients", len(msg.To)).
		Msg("notification published")
	return nil
}

// logNotifier writes rendered messages to the log. Used when no broker is configured.
type logNotifier struct {
	renderer *Renderer
	logger   zerolog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(renderer *Renderer, logger zerolog.Logger) Notifier {
	return &logNotifier{
		renderer: renderer,
		logger:   logger.With().Str("notifier", "log").Logger(),
	}
}

func (n *logNotifier) SendOrderConfirmation(ctx context.Context, order *model.Order, contact Contact) error {
	msg, err := n.renderer.Confirmation(order, contact)
	if err != nil {
		return err
	}
	n.log(msg)
	return nil
}

func (n *logNotifier) SendStatusUpdate(ctx context.Context, order *model.Order, status model.OrderStatus, contact Contact) error {
	msg, err := n.renderer.StatusUpdate(order, status, contact)
	if err != nil {
		return err
	}
	n.log(msg)
	return nil
}

func (n *logNotifier) SendAdminNewOrderAlert(ctx context.Context, order *model.Order) error {
	msg, err := n.renderer.AdminAlert(order)
	if err != nil {
		return err
	}
	n.log(msg)
	return nil
}

func (n *logNotifier) log(msg Message) {
	n.logger.Info().
		Str("kind", string(msg.Kind)).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("order_id", msg.OrderID).
		Msg("notification")
}
