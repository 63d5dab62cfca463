// Package slots вычисляет свободные окна репетитора по шаблону рабочих часов
// и уже существующим записям. Пакет не имеет побочных эффектов.
package slots

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// Step шаг перебора начала занятия
const Step = 30 * time.Minute

// FreeSlots возвращает свободные окна длительностью durationMinutes на дату date
// в порядке возрастания времени начала.
//
// Кандидаты начинаются с начала рабочего дня и идут с шагом Step, пока занятие
// помещается до конца рабочего дня. Кандидат отбрасывается, если пересекается
// с любой записью в статусе PENDING или APPROVED (полуоткрытые интервалы).
func FreeSlots(template model.AvailabilityTemplate, busy []model.Booking, durationMinutes int, date time.Time) ([]model.Slot, error) {
	return FreeSlotsWithStep(template, busy, durationMinutes, date, Step)
}

// FreeSlotsWithStep как FreeSlots, но с произвольным шагом
func FreeSlotsWithStep(
	template model.AvailabilityTemplate,
	busy []model.Booking,
	durationMinutes int,
	date time.Time,
	step time.Duration,
) ([]model.Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, durationMinutes)
	}
	if step <= 0 || step%time.Minute != 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidStep, step)
	}

	day := template.ForDate(date)
	if !day.Active || !day.HasHours() {
		return []model.Slot{}, nil
	}

	dayStart, dayEnd, err := day.Hours()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, model.WeekdayOf(date), err)
	}

	intervals, err := busyIntervals(busy, date)
	if err != nil {
		return nil, err
	}

	if durationMinutes > dayEnd.Minutes()-dayStart.Minutes() {
		return []model.Slot{}, nil
	}

	duration := time.Duration(durationMinutes) * time.Minute
	result := make([]model.Slot, 0)

	for candidate := dayStart; candidate.Add(duration) <= dayEnd; candidate = candidate.Add(step) {
		slot := model.Slot{Start: candidate, End: candidate.Add(duration)}
		if !overlapsAny(slot, intervals) {
			result = append(result, slot)
		}
	}

	return result, nil
}

// Contains проверяет, что слот входит в список свободных
func Contains(free []model.Slot, slot model.Slot) bool {
	for _, s := range free {
		if s == slot {
			return true
		}
	}
	return false
}

// busyIntervals выбирает интервалы записей, которые блокируют время.
// Отклонённые и отменённые записи на доступность не влияют.
func busyIntervals(bookings []model.Booking, date time.Time) ([]model.Slot, error) {
	intervals := make([]model.Slot, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.IsBusy() {
			continue
		}
		if !model.SameDate(b.Date, date) {
			return nil, fmt.Errorf("%w: booking %d is on %s, requested %s",
				ErrForeignDate, b.ID, b.Date.Format(time.DateOnly), date.Format(time.DateOnly))
		}
		intervals = append(intervals, b.Interval())
	}
	return intervals, nil
}

func overlapsAny(slot model.Slot, intervals []model.Slot) bool {
	for _, busy := range intervals {
		if slot.Overlaps(busy) {
			return true
		}
	}
	return false
}
