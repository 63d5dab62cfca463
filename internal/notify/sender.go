// Package notify доставка уведомлений участникам записи
package notify

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// ErrNoChat у участника нет чата для доставки
var ErrNoChat = errors.New("notify: recipient has no chat")

// Recipient получатель уведомления
type Recipient struct {
	Role   model.ActorRole
	UserID int64
	ChatID int64
}

// RecipientFor получатель с ролью role среди участников записи
func RecipientFor(p model.Participants, role model.ActorRole) Recipient {
	userID := p.Guardian.ID
	if role == model.RoleTutor {
		userID = p.Tutor.ID
	}
	return Recipient{Role: role, UserID: userID, ChatID: p.ChatID(role)}
}

// Sender доставляет текст одному получателю
type Sender interface {
	Send(ctx context.Context, to Recipient, text string) error
}

// Directory участники записи с контактами
type Directory interface {
	Participants(ctx context.Context, booking model.Booking) (model.Participants, error)
}
