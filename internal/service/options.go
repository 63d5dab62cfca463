package service

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/slots"
)

// BookingOptions параметры записи
type BookingOptions struct {
	SlotStep          time.Duration // шаг перебора начала занятия
	HorizonDays       int           // на сколько дней вперёд показывать даты по умолчанию
	MaxRangeDays      int           // максимальная длина запрошенного диапазона дат
	TutorCancelNotice time.Duration // за сколько до начала репетитор ещё может отменить подтверждённое занятие
}

// DefaultBookingOptions значения по умолчанию
func DefaultBookingOptions() BookingOptions {
	return BookingOptions{
		SlotStep:          slots.Step,
		HorizonDays:       30,
		MaxRangeDays:      62,
		TutorCancelNotice: model.TutorCancellationNotice,
	}
}

// Window окно напоминания в часах до начала занятия, границы включительно
type Window struct {
	From float64
	To   float64
}

// Contains попадает ли значение в окно
func (w Window) Contains(hours float64) bool {
	return hours >= w.From && hours <= w.To
}

// Width ширина окна
func (w Window) Width() time.Duration {
	return time.Duration((w.To - w.From) * float64(time.Hour))
}

func (w Window) String() string {
	return fmt.Sprintf("[%.2fh, %.2fh]", w.From, w.To)
}

// ReminderOptions параметры рассылки напоминаний
type ReminderOptions struct {
	Window24h   Window
	Window1h    Window
	SendTimeout time.Duration
}

// DefaultReminderOptions окна, в которые работал бот: 23.5–24.5 ч и 3–66 минут
func DefaultReminderOptions() ReminderOptions {
	return ReminderOptions{
		Window24h:   Window{From: 23.5, To: 24.5},
		Window1h:    Window{From: 0.05, To: 1.1},
		SendTimeout: 10 * time.Second,
	}
}
