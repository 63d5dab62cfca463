package model

import (
	"fmt"
	"time"
)

// TimeOfDay время внутри суток в минутах от полуночи (локальное, без часового пояса)
type TimeOfDay int

// ParseTimeOfDay строго разбирает строку формата HH:MM
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: malformed time %q, expected HH:MM", ErrValidation, s)
	}

	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed time %q: %v", ErrValidation, s, err)
	}

	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTimeOfDay как ParseTimeOfDay, но паникует. Только для констант и тестов.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf извлекает время суток из момента времени
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add сдвигает время на d (с точностью до минуты)
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

// Minutes возвращает количество минут от полуночи
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// On привязывает время к календарной дате в её часовом поясе
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t) * time.Minute)
}

// DateOnly обнуляет время, оставляя только календарную дату
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate проверяет, что два момента относятся к одной календарной дате
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// MarshalText кодирует время как HH:MM (JSON, TOML)
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText строго разбирает HH:MM
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
