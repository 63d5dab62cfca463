package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

const (
	prefetch   = 50
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Handler обработчик события, например notify.Dispatcher
type Handler interface {
	Publish(ctx context.Context, e model.BookingEvent) error
}

// Consumer читает очередь событий и передаёт их обработчику
type Consumer struct {
	url     string
	handler Handler
	logger  *zap.Logger
}

func NewConsumer(url string, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, logger: logger}
}

// Run читает очередь до отмены контекста, переподключаясь к брокеру
// с экспоненциальной задержкой
func (c *Consumer) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("Failed to dial rabbitmq",
				zap.Error(err),
				zap.Duration("retry_in", backoff),
			)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			c.logger.Info("Booking event consumer stopped")
			return
		}

		c.logger.Warn("Consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.logger.Warn("Failed to set QoS", zap.Error(err))
	}

	if err := declare(ch); err != nil {
		return err
	}

	deliveries, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", QueueName, err)
	}

	c.logger.Info("Booking event consumer started", zap.String("queue", QueueName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle подтверждает сообщение после доставки. Битые сообщения и
// сбои доставки отбрасываются без возврата в очередь.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if err := c.process(ctx, d.Body); err != nil {
		c.logger.Warn("Failed to handle booking event",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	e, err := Decode(body)
	if err != nil {
		return err
	}
	return c.handler.Publish(ctx, e)
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
