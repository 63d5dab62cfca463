package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// Publisher публикует события в долговечную очередь. Соединение
// открывается при первой публикации и переоткрывается после обрыва.
type Publisher struct {
	url    string
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// Publish отправляет событие как persistent JSON сообщение
func (p *Publisher) Publish(ctx context.Context, e model.BookingEvent) error {
	body, err := Encode(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		MessageId:    uuid.NewString(),
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt.UTC(),
		Type:         string(e.Type),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish booking event: %w", err)
	}

	p.logger.Debug("Booking event published",
		zap.String("message_id", msg.MessageId),
		zap.String("event", string(e.Type)),
		zap.Int64("booking_id", e.Booking.ID),
	)
	return nil
}

// Close закрывает соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	return err
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch); err != nil {
		_ = conn.Close()
		return nil, err
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// declare объявляет долговечную очередь, операция идемпотентна
func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueName, err)
	}
	return nil
}
