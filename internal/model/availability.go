package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday день недели, Monday = 0 ... Sunday = 6
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek размер шаблона расписания
const DaysPerWeek = 7

var weekdayNames = [DaysPerWeek]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayOf возвращает день недели для даты
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday: Sunday = 0
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// ParseWeekday разбирает английское название дня недели ("monday")
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrValidation, s)
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid проверяет диапазон
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// DaySchedule рабочие часы репетитора в конкретный день недели.
// Start и End хранятся в формате HH:MM, у неактивного дня они пустые.
type DaySchedule struct {
	Active bool   `json:"active"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// HasHours проверяет, что заданы начало и конец дня
func (d DaySchedule) HasHours() bool {
	return strings.TrimSpace(d.Start) != "" && strings.TrimSpace(d.End) != ""
}

// Hours разбирает рабочие часы. Ошибка, если время некорректно или start >= end.
func (d DaySchedule) Hours() (TimeOfDay, TimeOfDay, error) {
	start, err := ParseTimeOfDay(strings.TrimSpace(d.Start))
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimeOfDay(strings.TrimSpace(d.End))
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: working hours start %s is not before end %s", ErrValidation, start, end)
	}
	return start, end, nil
}

// AvailabilityTemplate еженедельный шаблон доступности репетитора
type AvailabilityTemplate struct {
	TutorID int64
	Days    [DaysPerWeek]DaySchedule
}

// Day возвращает расписание на день недели
func (t AvailabilityTemplate) Day(w Weekday) DaySchedule {
	if !w.Valid() {
		return DaySchedule{}
	}
	return t.Days[w]
}

// ForDate возвращает расписание на день недели указанной даты
func (t AvailabilityTemplate) ForDate(date time.Time) DaySchedule {
	return t.Day(WeekdayOf(date))
}

// Set задаёт расписание на день недели
func (t *AvailabilityTemplate) Set(w Weekday, day DaySchedule) {
	if w.Valid() {
		t.Days[w] = day
	}
}

// Validate проверяет инварианты шаблона:
// активный день имеет корректные часы со start < end, у неактивного часы не заданы.
func (t AvailabilityTemplate) Validate() error {
	for i, day := range t.Days {
		w := Weekday(i)
		if !day.Active {
			if day.Start != "" || day.End != "" {
				return fmt.Errorf("%w: inactive %s must not have working hours", ErrValidation, w)
			}
			continue
		}
		if _, _, err := day.Hours(); err != nil {
			return fmt.Errorf("%s: %w", w, err)
		}
	}
	return nil
}
