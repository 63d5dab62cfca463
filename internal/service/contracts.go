package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// BookingStore хранилище записей
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	ListActiveByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]model.Booking, error)
	ListByTutor(ctx context.Context, tutorID int64, from, to time.Time, statuses ...model.BookingStatus) ([]model.Booking, error)
	ListByGuardian(ctx context.Context, guardianID int64) ([]model.Booking, error)
	ListPendingByTutor(ctx context.Context, tutorID int64) ([]model.Booking, error)
	ListApprovedBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	UpdateTransition(ctx context.Context, booking model.Booking, expected model.BookingStatus) error
	MarkNotified(ctx context.Context, id int64, kind model.ReminderKind) error
	LockTutor(ctx context.Context, tutorID int64) error
}

// AvailabilityStore хранилище шаблонов рабочих часов
type AvailabilityStore interface {
	GetAvailability(ctx context.Context, tutorID int64) (model.AvailabilityTemplate, error)
	SaveDay(ctx context.Context, tutorID int64, w model.Weekday, day model.DaySchedule) error
}

// UserDirectory справочник участников
type UserDirectory interface {
	GetStudent(ctx context.Context, id int64) (*model.Student, error)
	Participants(ctx context.Context, booking model.Booking) (model.Participants, error)
}

// TxManager выполняет функцию атомарно
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher доставляет события по записям второй стороне
type EventPublisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}
