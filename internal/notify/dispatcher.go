package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// Dispatcher превращает события по записям в сообщения второй стороне
type Dispatcher struct {
	dir    Directory
	sender Sender
	logger *zap.Logger
}

func NewDispatcher(dir Directory, sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		dir:    dir,
		sender: sender,
		logger: logger,
	}
}

// Publish отправляет уведомление о событии получателю
func (d *Dispatcher) Publish(ctx context.Context, e model.BookingEvent) error {
	p, err := d.dir.Participants(ctx, e.Booking)
	if err != nil {
		return fmt.Errorf("resolve participants: %w", err)
	}

	to := RecipientFor(p, e.Recipient())
	if err := d.sender.Send(ctx, to, EventText(e, p)); err != nil {
		return fmt.Errorf("deliver %s: %w", e.Type, err)
	}

	d.logger.Info("Booking event delivered",
		zap.Int64("booking_id", e.Booking.ID),
		zap.String("event", string(e.Type)),
		zap.String("recipient_role", string(to.Role)),
	)
	return nil
}
