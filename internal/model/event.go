package model

import "time"

// EventType тип события по записи
type EventType string

const (
	EventBookingRequested EventType = "booking.requested"
	EventBookingApproved  EventType = "booking.approved"
	EventBookingRejected  EventType = "booking.rejected"
	EventBookingCancelled EventType = "booking.cancelled"
)

// BookingEvent событие, о котором нужно уведомить вторую сторону записи
type BookingEvent struct {
	Type       EventType `json:"type"`
	Booking    Booking   `json:"booking"`
	Actor      ActorRole `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recipient кому адресовано уведомление: всегда противоположная действующей сторона
func (e BookingEvent) Recipient() ActorRole {
	return e.Actor.Counterparty()
}
