package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

var errChannelClosed = errors.New("broker channel is closed")

// channel is the part of *amqp.Channel the broker uses.
type channel interface {
	Publisher
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

// connection is the part of *amqp.Connection the broker uses.
type connection interface {
	Channel() (channel, error)
	IsClosed() bool
	Close() error
}

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Broker publishes to a durable topic exchange. When the channel or the
// connection closes unexpectedly it redials, reopens the channel and
// redeclares the exchange until it succeeds or the broker is closed.
type Broker struct {
	url      string
	exchange string
	dial     func(url string) (connection, error)
	backoff  time.Duration
	logger   zerolog.Logger

	mu      sync.RWMutex
	conn    connection
	channel channel
	done    chan struct{}
}

// Dial connects to the broker at url and declares exchange as a durable topic exchange.
func Dial(url, exchange string, logger zerolog.Logger) (*Broker, error) {
	return dial(url, exchange, dialAMQP, time.Second, logger)
}

func dial(url, exchange string, dialer func(string) (connection, error), backoff time.Duration, logger zerolog.Logger) (*Broker, error) {
	const maxAttempts = 3

	b := &Broker{
		url:      url,
		exchange: exchange,
		dial:     dialer,
		backoff:  backoff,
		logger:   logger.With().Str("component", "broker").Logger(),
		done:     make(chan struct{}),
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = b.connect(); err == nil {
			return b, nil
		}
		if attempt < maxAttempts {
			wait := time.Duration(attempt) * backoff
			b.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("failed to connect to broker")
			time.Sleep(wait)
		}
	}
	b.Close()
	return nil, fmt.Errorf("failed to connect to broker after %d attempts: %w", maxAttempts, err)
}

// connect reuses the connection while it is open, then opens a channel and
// declares the exchange on it.
func (b *Broker) connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return errChannelClosed
	default:
	}

	if b.conn == nil || b.conn.IsClosed() {
		conn, err := b.dial(b.url)
		if err != nil {
			return fmt.Errorf("failed to dial: %w", err)
		}
		b.conn = conn
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", b.exchange, err)
	}

	b.channel = ch
	go b.watch(ch, ch.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// watch waits for ch to close. A nil close error means the channel was closed
// on purpose and nothing is reopened.
func (b *Broker) watch(ch channel, closed <-chan *amqp.Error) {
	var reason *amqp.Error
	select {
	case <-b.done:
		return
	case reason = <-closed:
	}
	if reason == nil {
		return
	}

	b.mu.Lock()
	if b.channel == ch {
		b.channel = nil
	}
	b.mu.Unlock()

	b.logger.Warn().Int("code", reason.Code).Str("reason", reason.Reason).Msg("broker channel closed, reopening")

	for attempt := 1; ; attempt++ {
		err := b.connect()
		if err == nil {
			b.logger.Info().Int("attempt", attempt).Msg("broker channel reopened")
			return
		}

		wait := min(time.Duration(attempt)*b.backoff, 30*b.backoff)
		b.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("failed to reopen broker channel")
		select {
		case <-b.done:
			return
		case <-time.After(wait):
		}
	}
}

// PublishWithContext publishes on the current channel. It fails while the
// channel is being reopened.
func (b *Broker) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	b.mu.RLock()
	ch := b.channel
	b.mu.RUnlock()

	if ch == nil {
		return errChannelClosed
	}
	return ch.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Close stops reconnecting and closes the channel and the connection.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	default:
		close(b.done)
	}

	if b.channel != nil {
		b.channel.Close()
		b.channel = nil
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
