package model

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Ожидает одобрения репетитора
	BookingStatusApproved  BookingStatus = "approved"  // Подтверждено
	BookingStatusRejected  BookingStatus = "rejected"  // Отклонено репетитором
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
)

// BusyStatuses статусы, которые занимают время репетитора
var BusyStatuses = []BookingStatus{BookingStatusPending, BookingStatusApproved}

// IsBusy запись блокирует слот
func (s BookingStatus) IsBusy() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

// IsTerminal из статуса нет переходов
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled
}

// Valid известный статус
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// LessonKind тип занятия, определяет длительность
type LessonKind string

const (
	LessonKindStandard LessonKind = "standard"
	LessonKindExam     LessonKind = "exam"
)

// Duration длительность занятия
func (k LessonKind) Duration() time.Duration {
	switch k {
	case LessonKindExam:
		return 90 * time.Minute
	default:
		return 60 * time.Minute
	}
}

// Minutes длительность занятия в минутах
func (k LessonKind) Minutes() int {
	return int(k.Duration() / time.Minute)
}

// ParseLessonKind разбирает тип занятия
func ParseLessonKind(s string) (LessonKind, error) {
	switch LessonKind(s) {
	case LessonKindStandard, LessonKindExam:
		return LessonKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown lesson kind %q", ErrValidation, s)
}

// ActorRole сторона, выполняющая действие с записью
type ActorRole string

const (
	RoleTutor    ActorRole = "tutor"
	RoleGuardian ActorRole = "guardian"
)

// Counterparty вторая сторона записи
func (r ActorRole) Counterparty() ActorRole {
	if r == RoleTutor {
		return RoleGuardian
	}
	return RoleTutor
}

// ParseActorRole разбирает роль
func ParseActorRole(s string) (ActorRole, error) {
	switch ActorRole(s) {
	case RoleTutor, RoleGuardian:
		return ActorRole(s), nil
	}
	return "", fmt.Errorf("%w: unknown actor role %q", ErrValidation, s)
}

// ReminderKind тип напоминания о занятии
type ReminderKind string

const (
	Reminder24h ReminderKind = "24h"
	Reminder1h  ReminderKind = "1h"
)

type Booking struct {
	ID              int64         `json:"id"`
	TutorID         int64         `json:"tutor_id"`
	GuardianID      int64         `json:"guardian_id"`
	StudentID       int64         `json:"student_id"`
	Subject         string        `json:"subject"`
	LessonKind      LessonKind    `json:"lesson_kind"`
	Date            time.Time     `json:"date"`
	StartTime       TimeOfDay     `json:"start_time"`
	EndTime         TimeOfDay     `json:"end_time"`
	Price           int           `json:"price"` // в копейках
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
	CancelledBy     *ActorRole    `json:"cancelled_by,omitempty"`
	Notified24h     bool          `json:"notified_24h"`
	Notified1h      bool          `json:"notified_1h"`
}

// Interval занятое записью время
func (b *Booking) Interval() Slot {
	return Slot{Start: b.StartTime, End: b.EndTime}
}

// StartsAt момент начала занятия
func (b *Booking) StartsAt() time.Time {
	return b.StartTime.On(b.Date)
}

// EndsAt момент окончания занятия
func (b *Booking) EndsAt() time.Time {
	return b.EndTime.On(b.Date)
}

// ParticipantID идентификатор участника записи с указанной ролью
func (b *Booking) ParticipantID(role ActorRole) int64 {
	if role == RoleTutor {
		return b.TutorID
	}
	return b.GuardianID
}

// OwnedBy проверяет, что пользователь является участником записи в указанной роли
func (b *Booking) OwnedBy(actorID int64, role ActorRole) bool {
	switch role {
	case RoleTutor:
		return b.TutorID == actorID
	case RoleGuardian:
		return b.GuardianID == actorID
	}
	return false
}

// IsNotified проверяет флаг отправленного напоминания
func (b *Booking) IsNotified(kind ReminderKind) bool {
	if kind == Reminder24h {
		return b.Notified24h
	}
	return b.Notified1h
}
