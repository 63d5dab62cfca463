package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/clock"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// Period период сводки расписания репетитора
type Period string

const (
	PeriodToday    Period = "today"
	PeriodTomorrow Period = "tomorrow"
	PeriodWeek     Period = "week"  // текущая неделя с понедельника
	PeriodMonth    Period = "month" // текущий календарный месяц
)

// ParsePeriod разбирает период, пустая строка означает сегодня
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodToday, nil
	case PeriodToday, PeriodTomorrow, PeriodWeek, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("%w: unknown period %q", model.ErrValidation, s)
}

// ScheduleSummary расписание репетитора за период со статистикой
type ScheduleSummary struct {
	Period    Period          `json:"period"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"` // включительно
	Bookings  []model.Booking `json:"bookings"`
	Confirmed int             `json:"confirmed"`
	Pending   int             `json:"pending"`
	Cancelled int             `json:"cancelled"`
	Income    int             `json:"income"` // сумма подтверждённых занятий, в копейках
}

// ScheduleService сводки расписания для репетитора
type ScheduleService struct {
	bookings BookingStore
	clock    clock.Clock
	logger   *zap.Logger
}

func NewScheduleService(bookings BookingStore, clk clock.Clock, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		bookings: bookings,
		clock:    clk,
		logger:   logger,
	}
}

// PeriodRange диапазон дат периода, обе границы включительно
func PeriodRange(p Period, now time.Time) (time.Time, time.Time) {
	today := model.DateOnly(now)

	switch p {
	case PeriodTomorrow:
		tomorrow := today.AddDate(0, 0, 1)
		return tomorrow, tomorrow
	case PeriodWeek:
		monday := today.AddDate(0, 0, -int(model.WeekdayOf(today)))
		return monday, monday.AddDate(0, 0, 6)
	case PeriodMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return first, first.AddDate(0, 1, -1)
	default:
		return today, today
	}
}

// TutorSchedule занятия репетитора за период. В список попадают ожидающие
// и подтверждённые записи, отменённые только учитываются в статистике.
func (s *ScheduleService) TutorSchedule(ctx context.Context, tutorID int64, period Period) (*ScheduleSummary, error) {
	from, to := PeriodRange(period, s.clock.Now())

	all, err := s.bookings.ListByTutor(ctx, tutorID, from, to,
		model.BookingStatusPending, model.BookingStatusApproved, model.BookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list tutor bookings: %w", err)
	}

	summary := &ScheduleSummary{
		Period:   period,
		From:     from,
		To:       to,
		Bookings: make([]model.Booking, 0, len(all)),
	}

	for _, b := range all {
		switch b.Status {
		case model.BookingStatusApproved:
			summary.Confirmed++
			summary.Income += b.Price
		case model.BookingStatusPending:
			summary.Pending++
		case model.BookingStatusCancelled:
			summary.Cancelled++
			continue
		}
		summary.Bookings = append(summary.Bookings, b)
	}

	s.logger.Debug("Tutor schedule built",
		zap.Int64("tutor_id", tutorID),
		zap.String("period", string(period)),
		zap.Int("bookings", len(summary.Bookings)),
	)

	return summary, nil
}
