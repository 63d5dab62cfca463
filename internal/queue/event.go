// Package queue передача событий по записям через RabbitMQ.
// Сервис записи публикует события, консьюмер доставляет их участникам.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// QueueName очередь событий по записям
const QueueName = "booking.events"

// Encode сериализует событие для публикации
func Encode(e model.BookingEvent) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal booking event: %w", err)
	}
	return body, nil
}

// Decode разбирает событие из тела сообщения
func Decode(body []byte) (model.BookingEvent, error) {
	var e model.BookingEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return e, fmt.Errorf("unmarshal booking event: %w", err)
	}
	switch e.Type {
	case model.EventBookingRequested, model.EventBookingApproved,
		model.EventBookingRejected, model.EventBookingCancelled:
	default:
		return e, fmt.Errorf("unknown booking event type %q", e.Type)
	}
	if e.Booking.ID == 0 {
		return e, fmt.Errorf("booking event %s without booking id", e.Type)
	}
	return e, nil
}
