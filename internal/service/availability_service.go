package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/clock"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/slots"
)

// AvailabilityService отвечает на вопросы "в какие дни" и "в какое время" можно записаться
type AvailabilityService struct {
	templates AvailabilityStore
	bookings  BookingStore
	clock     clock.Clock
	opts      BookingOptions
	logger    *zap.Logger
}

func NewAvailabilityService(
	templates AvailabilityStore,
	bookings BookingStore,
	clk clock.Clock,
	opts BookingOptions,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		templates: templates,
		bookings:  bookings,
		clock:     clk,
		opts:      opts,
		logger:    logger,
	}
}

// AvailableDates даты из [from, to], на которые есть хотя бы одно свободное окно
// длительностью durationMinutes. Нулевой from означает сегодня, нулевой to означает
// from плюс горизонт записи. Прошедшие даты не возвращаются.
func (s *AvailabilityService) AvailableDates(
	ctx context.Context,
	tutorID int64,
	durationMinutes int,
	from, to time.Time,
) ([]time.Time, error) {
	now := s.clock.Now()
	today := model.DateOnly(now)

	if from.IsZero() {
		from = today
	}
	from = s.inLocation(from, now)
	if to.IsZero() {
		to = from.AddDate(0, 0, s.opts.HorizonDays-1)
	}
	to = s.inLocation(to, now)

	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s",
			model.ErrValidation, to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	if days := daysBetween(from, to) + 1; s.opts.MaxRangeDays > 0 && days > s.opts.MaxRangeDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds %d", model.ErrValidation, days, s.opts.MaxRangeDays)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", slots.ErrInvalidDuration, durationMinutes)
	}

	if from.Before(today) {
		from = today
	}
	dates := make([]time.Time, 0)
	if to.Before(from) {
		return dates, nil
	}

	template, err := s.templates.GetAvailability(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}

	busy, err := s.bookings.ListActiveByTutor(ctx, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	busyByDate := groupByDate(busy)

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		free, err := s.freeSlots(template, busyByDate[date.Format(time.DateOnly)], durationMinutes, date, now)
		if err != nil {
			return nil, err
		}
		if len(free) > 0 {
			dates = append(dates, date)
		}
	}

	s.logger.Debug("Available dates computed",
		zap.Int64("tutor_id", tutorID),
		zap.Int("duration_minutes", durationMinutes),
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
		zap.Int("dates", len(dates)),
	)

	return dates, nil
}

// FreeSlotsOn свободные окна на конкретную дату. Для сегодняшнего дня
// окна, которые уже начались, не возвращаются.
func (s *AvailabilityService) FreeSlotsOn(
	ctx context.Context,
	tutorID int64,
	durationMinutes int,
	date time.Time,
) ([]model.Slot, error) {
	now := s.clock.Now()
	date = s.inLocation(date, now)

	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", slots.ErrInvalidDuration, durationMinutes)
	}
	if date.Before(model.DateOnly(now)) {
		return []model.Slot{}, nil
	}

	template, err := s.templates.GetAvailability(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}

	busy, err := s.bookings.ListActiveByTutor(ctx, tutorID, date, date)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}

	return s.freeSlots(template, busy, durationMinutes, date, now)
}

// Template еженедельный шаблон рабочих часов репетитора
func (s *AvailabilityService) Template(ctx context.Context, tutorID int64) (model.AvailabilityTemplate, error) {
	template, err := s.templates.GetAvailability(ctx, tutorID)
	if err != nil {
		return template, fmt.Errorf("get availability: %w", err)
	}
	return template, nil
}

// SetDay меняет рабочие часы в один день недели. У выключенного дня часы
// сбрасываются. Уже созданные записи не затрагиваются.
func (s *AvailabilityService) SetDay(
	ctx context.Context,
	tutorID int64,
	w model.Weekday,
	day model.DaySchedule,
) (model.AvailabilityTemplate, error) {
	if !w.Valid() {
		return model.AvailabilityTemplate{}, fmt.Errorf("%w: weekday %d", model.ErrValidation, int(w))
	}
	if !day.Active {
		day.Start, day.End = "", ""
	}

	template, err := s.Template(ctx, tutorID)
	if err != nil {
		return template, err
	}

	template.Set(w, day)
	if err := template.Validate(); err != nil {
		return template, err
	}

	if err := s.templates.SaveDay(ctx, tutorID, w, day); err != nil {
		return template, fmt.Errorf("save availability: %w", err)
	}

	s.logger.Info("Working hours updated",
		zap.Int64("tutor_id", tutorID),
		zap.String("weekday", w.String()),
		zap.Bool("active", day.Active),
		zap.String("start", day.Start),
		zap.String("end", day.End),
	)
	return template, nil
}

func (s *AvailabilityService) freeSlots(
	template model.AvailabilityTemplate,
	busy []model.Booking,
	durationMinutes int,
	date, now time.Time,
) ([]model.Slot, error) {
	free, err := slots.FreeSlotsWithStep(template, busy, durationMinutes, date, s.opts.SlotStep)
	if err != nil {
		return nil, fmt.Errorf("compute free slots for %s: %w", date.Format(time.DateOnly), err)
	}

	if !model.SameDate(date, now) {
		return free, nil
	}

	upcoming := free[:0]
	for _, slot := range free {
		if slot.Start.On(date).After(now) {
			upcoming = append(upcoming, slot)
		}
	}
	return upcoming, nil
}

// inLocation календарная дата t в часовом поясе часов сервиса
func (s *AvailabilityService) inLocation(t, now time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func groupByDate(bookings []model.Booking) map[string][]model.Booking {
	byDate := make(map[string][]model.Booking)
	for _, b := range bookings {
		key := b.Date.Format(time.DateOnly)
		byDate[key] = append(byDate[key], b)
	}
	return byDate
}

func daysBetween(from, to time.Time) int {
	// по UTC полуночам, чтобы переход на летнее время не давал 23 или 25 часов
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
