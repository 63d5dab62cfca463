package notify

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// FormatPrice форматирует цену из копеек в рубли, копейки показываются только если они есть
func FormatPrice(priceInKopecks int) string {
	price := float64(priceInKopecks) / 100
	if priceInKopecks%100 == 0 {
		return fmt.Sprintf("%.0f ₽", price)
	}
	return fmt.Sprintf("%.2f ₽", price)
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTimeRange форматирует интервал занятия
func FormatTimeRange(start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s - %s", start, end)
}

// LessonKindTitle название типа занятия
func LessonKindTitle(kind model.LessonKind) string {
	if kind == model.LessonKindExam {
		return "Подготовка к экзамену"
	}
	return "Стандартное занятие"
}

// PluralizeHours возвращает правильное склонение слова "час"
func PluralizeHours(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "час"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "часа"
	}
	return "часов"
}
