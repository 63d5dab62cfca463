package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/clock"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/slots"
)

// CommitRequest заявка родителя на занятие
type CommitRequest struct {
	TutorID    int64
	GuardianID int64
	StudentID  int64
	Subject    string
	LessonKind model.LessonKind
	Date       time.Time
	Start      model.TimeOfDay
	End        model.TimeOfDay
	Price      int
}

type BookingService struct {
	bookings  BookingStore
	templates AvailabilityStore
	users     UserDirectory
	tx        TxManager
	events    EventPublisher
	clock     clock.Clock
	opts      BookingOptions
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewBookingService(
	bookings BookingStore,
	templates AvailabilityStore,
	users UserDirectory,
	tx TxManager,
	events EventPublisher,
	clk clock.Clock,
	opts BookingOptions,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		templates: templates,
		users:     users,
		tx:        tx,
		events:    events,
		clock:     clk,
		opts:      opts,
		metrics:   m,
		logger:    logger,
	}
}

// Commit создаёт заявку в статусе PENDING.
// Свободные окна пересчитываются в той же транзакции, что и вставка:
// если окно [Start, End) уже занято, возвращается ErrSlotNoLongerAvailable.
func (s *BookingService) Commit(ctx context.Context, req CommitRequest) (*model.Booking, error) {
	if err := s.validateCommit(req); err != nil {
		return nil, err
	}

	student, err := s.users.GetStudent(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student.GuardianID != req.GuardianID {
		return nil, fmt.Errorf("%w: student %d does not belong to guardian %d",
			model.ErrForbidden, req.StudentID, req.GuardianID)
	}

	now := s.clock.Now()
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, now.Location())
	if !req.Start.On(date).After(now) {
		return nil, fmt.Errorf("%w: %s %s", model.ErrSlotInPast, date.Format(time.DateOnly), req.Start)
	}

	booking := &model.Booking{
		TutorID:    req.TutorID,
		GuardianID: req.GuardianID,
		StudentID:  req.StudentID,
		Subject:    strings.TrimSpace(req.Subject),
		LessonKind: req.LessonKind,
		Date:       date,
		StartTime:  req.Start,
		EndTime:    req.End,
		Price:      req.Price,
		Status:     model.BookingStatusPending,
	}
	wanted := booking.Interval()

	err = s.tx.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.bookings.LockTutor(ctx, req.TutorID); err != nil {
			return err
		}

		template, err := s.templates.GetAvailability(ctx, req.TutorID)
		if err != nil {
			return fmt.Errorf("get availability: %w", err)
		}

		busy, err := s.bookings.ListActiveByTutor(ctx, req.TutorID, date, date)
		if err != nil {
			return fmt.Errorf("list active bookings: %w", err)
		}

		free, err := slots.FreeSlotsWithStep(template, busy, req.LessonKind.Minutes(), date, s.opts.SlotStep)
		if err != nil {
			return fmt.Errorf("compute free slots: %w", err)
		}
		if !slots.Contains(free, wanted) {
			return fmt.Errorf("%w: tutor %d at %s %s",
				model.ErrSlotNoLongerAvailable, req.TutorID, date.Format(time.DateOnly), wanted)
		}

		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, repository.ErrOverlap) || errors.Is(err, repository.ErrTxConflict) {
			err = fmt.Errorf("%w: %v", model.ErrSlotNoLongerAvailable, err)
		}
		if errors.Is(err, model.ErrSlotNoLongerAvailable) {
			s.metrics.BookingConflict()
			s.logger.Info("Slot taken before commit",
				zap.Int64("tutor_id", req.TutorID),
				zap.Int64("guardian_id", req.GuardianID),
				zap.String("date", date.Format(time.DateOnly)),
				zap.String("slot", wanted.String()),
			)
		}
		return nil, err
	}

	s.metrics.BookingCommitted()
	s.logger.Info("Booking requested",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("tutor_id", booking.TutorID),
		zap.Int64("guardian_id", booking.GuardianID),
		zap.Int64("student_id", booking.StudentID),
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("slot", wanted.String()),
		zap.String("lesson_kind", string(booking.LessonKind)),
	)

	s.publish(ctx, model.EventBookingRequested, *booking, model.RoleGuardian, now)

	return booking, nil
}

func (s *BookingService) validateCommit(req CommitRequest) error {
	if _, err := model.ParseLessonKind(string(req.LessonKind)); err != nil {
		return err
	}
	if strings.TrimSpace(req.Subject) == "" {
		return fmt.Errorf("%w: subject is required", model.ErrValidation)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: negative price %d", model.ErrValidation, req.Price)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", model.ErrValidation)
	}
	if expected := req.Start.Add(req.LessonKind.Duration()); req.End != expected {
		return fmt.Errorf("%w: %s lesson starting at %s must end at %s, got %s",
			model.ErrValidation, req.LessonKind, req.Start, expected, req.End)
	}
	return nil
}

// Approve репетитор подтверждает заявку
func (s *BookingService) Approve(ctx context.Context, bookingID, tutorID int64) (*model.Booking, error) {
	return s.transition(ctx, "approve", bookingID, tutorID, model.RoleTutor, model.EventBookingApproved,
		func(b model.Booking, now time.Time) (model.Booking, error) {
			return b.Approve(now)
		})
}

// Reject репетитор отклоняет заявку с указанием причины
func (s *BookingService) Reject(ctx context.Context, bookingID, tutorID int64, reason string) (*model.Booking, error) {
	return s.transition(ctx, "reject", bookingID, tutorID, model.RoleTutor, model.EventBookingRejected,
		func(b model.Booking, now time.Time) (model.Booking, error) {
			return b.Reject(now, reason)
		})
}

// Cancel отмена записи родителем или репетитором
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID int64, role model.ActorRole) (*model.Booking, error) {
	if _, err := model.ParseActorRole(string(role)); err != nil {
		return nil, err
	}
	return s.transition(ctx, "cancel", bookingID, actorID, role, model.EventBookingCancelled,
		func(b model.Booking, now time.Time) (model.Booking, error) {
			return b.Cancel(now, role, s.opts.TutorCancelNotice)
		})
}

type transitionFunc func(b model.Booking, now time.Time) (model.Booking, error)

// transition загружает запись, проверяет участника, применяет переход
// и сохраняет его compare-and-set по исходному статусу
func (s *BookingService) transition(
	ctx context.Context,
	action string,
	bookingID, actorID int64,
	role model.ActorRole,
	event model.EventType,
	apply transitionFunc,
) (*model.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if !current.OwnedBy(actorID, role) {
		return nil, fmt.Errorf("%w: %s %d is not a participant of booking %d",
			model.ErrForbidden, role, actorID, bookingID)
	}

	now := s.clock.Now()
	updated, err := apply(*current, now)
	if err != nil {
		s.metrics.Transition(action, metrics.ResultRejected)
		return nil, err
	}

	if err := s.bookings.UpdateTransition(ctx, updated, current.Status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			s.metrics.Transition(action, metrics.ResultRejected)
			return nil, fmt.Errorf("%w: %v", model.ErrStaleBooking, err)
		}
		s.metrics.Transition(action, metrics.ResultError)
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.metrics.Transition(action, metrics.ResultOK)
	s.logger.Info("Booking status changed",
		zap.Int64("booking_id", bookingID),
		zap.String("action", action),
		zap.String("actor_role", string(role)),
		zap.Int64("actor_id", actorID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)

	s.publish(ctx, event, updated, role, now)

	return &updated, nil
}

// publish ошибки доставки только логируются: переход уже сохранён
func (s *BookingService) publish(ctx context.Context, t model.EventType, b model.Booking, actor model.ActorRole, now time.Time) {
	if s.events == nil {
		return
	}

	event := model.BookingEvent{Type: t, Booking: b, Actor: actor, OccurredAt: now}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish booking event",
			zap.Int64("booking_id", b.ID),
			zap.String("event", string(t)),
			zap.Error(err),
		)
	}
}

// Get запись, доступная только её участникам
func (s *BookingService) Get(ctx context.Context, bookingID, actorID int64, role model.ActorRole) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if !b.OwnedBy(actorID, role) {
		return nil, fmt.Errorf("%w: %s %d is not a participant of booking %d",
			model.ErrForbidden, role, actorID, bookingID)
	}
	return b, nil
}

// PendingForTutor заявки, ожидающие решения репетитора
func (s *BookingService) PendingForTutor(ctx context.Context, tutorID int64) ([]model.Booking, error) {
	return s.bookings.ListPendingByTutor(ctx, tutorID)
}

// ForGuardian все записи родителя
func (s *BookingService) ForGuardian(ctx context.Context, guardianID int64) ([]model.Booking, error) {
	return s.bookings.ListByGuardian(ctx, guardianID)
}
