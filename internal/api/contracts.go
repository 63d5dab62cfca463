package api

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

type AvailabilityService interface {
	AvailableDates(ctx context.Context, tutorID int64, durationMinutes int, from, to time.Time) ([]time.Time, error)
	FreeSlotsOn(ctx context.Context, tutorID int64, durationMinutes int, date time.Time) ([]model.Slot, error)
	Template(ctx context.Context, tutorID int64) (model.AvailabilityTemplate, error)
	SetDay(ctx context.Context, tutorID int64, w model.Weekday, day model.DaySchedule) (model.AvailabilityTemplate, error)
}

type BookingService interface {
	Commit(ctx context.Context, req service.CommitRequest) (*model.Booking, error)
	Approve(ctx context.Context, bookingID, tutorID int64) (*model.Booking, error)
	Reject(ctx context.Context, bookingID, tutorID int64, reason string) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID int64, role model.ActorRole) (*model.Booking, error)
	Get(ctx context.Context, bookingID, actorID int64, role model.ActorRole) (*model.Booking, error)
	PendingForTutor(ctx context.Context, tutorID int64) ([]model.Booking, error)
	ForGuardian(ctx context.Context, guardianID int64) ([]model.Booking, error)
}

type ScheduleService interface {
	TutorSchedule(ctx context.Context, tutorID int64, period service.Period) (*service.ScheduleSummary, error)
}
