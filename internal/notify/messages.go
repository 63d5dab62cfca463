package notify

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

// ReminderHours через сколько часов занятие для текста напоминания
func ReminderHours(kind model.ReminderKind) int {
	if kind == model.Reminder24h {
		return 24
	}
	return 1
}

// ReminderText напоминание о предстоящем занятии для участника с ролью role.
// Репетитор получает контакт родителя, родитель получает имя репетитора.
func ReminderText(kind model.ReminderKind, role model.ActorRole, b model.Booking, p model.Participants) string {
	hours := ReminderHours(kind)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔔 Напоминание о предстоящем занятии через %d %s!\n\n", hours, PluralizeHours(hours))
	fmt.Fprintf(&sb, "👤 Ученик: %s\n", p.Student.FullName())
	if role == model.RoleGuardian {
		fmt.Fprintf(&sb, "👨‍🏫 Репетитор: %s\n", p.Tutor.FullName())
	}
	fmt.Fprintf(&sb, "📚 Предмет: %s (%s)\n", b.Subject, LessonKindTitle(b.LessonKind))
	fmt.Fprintf(&sb, "📅 Дата: %s\n", FormatDate(b.Date))
	fmt.Fprintf(&sb, "🕒 Время: %s\n", FormatTimeRange(b.StartTime, b.EndTime))
	fmt.Fprintf(&sb, "💰 Стоимость: %s", FormatPrice(b.Price))

	if role == model.RoleTutor {
		phone := p.Guardian.Phone
		if phone == "" {
			phone = "Не указан"
		}
		fmt.Fprintf(&sb, "\n\n📱 Контакт родителя: %s", phone)
	}

	return sb.String()
}

// EventText уведомление второй стороне о событии по записи
func EventText(e model.BookingEvent, p model.Participants) string {
	b := e.Booking

	var sb strings.Builder
	switch e.Type {
	case model.EventBookingRequested:
		sb.WriteString("📝 Новая заявка на занятие\n\n")
	case model.EventBookingApproved:
		sb.WriteString("✅ Репетитор подтвердил запись!\n\n")
	case model.EventBookingRejected:
		sb.WriteString("❌ Репетитор отклонил запись\n\n")
	case model.EventBookingCancelled:
		if e.Actor == model.RoleTutor {
			sb.WriteString("❌ Занятие отменено репетитором\n\n")
		} else {
			sb.WriteString("❌ Запись отменена родителем\n\n")
		}
	default:
		fmt.Fprintf(&sb, "ℹ️ Изменение записи (%s)\n\n", e.Type)
	}

	fmt.Fprintf(&sb, "👤 Ученик: %s\n", p.Student.FullName())
	if e.Recipient() == model.RoleGuardian {
		fmt.Fprintf(&sb, "👨‍🏫 Репетитор: %s\n", p.Tutor.FullName())
	}
	fmt.Fprintf(&sb, "📚 Предмет: %s\n", b.Subject)
	fmt.Fprintf(&sb, "📝 Тип занятия: %s\n", LessonKindTitle(b.LessonKind))
	fmt.Fprintf(&sb, "📅 Дата: %s\n", FormatDate(b.Date))
	fmt.Fprintf(&sb, "🕒 Время: %s", FormatTimeRange(b.StartTime, b.EndTime))

	switch e.Type {
	case model.EventBookingRequested, model.EventBookingApproved:
		fmt.Fprintf(&sb, "\n💰 Стоимость: %s", FormatPrice(b.Price))
	case model.EventBookingRejected:
		if b.RejectionReason != nil {
			fmt.Fprintf(&sb, "\n❗️ Причина: %s", *b.RejectionReason)
		}
	}

	return sb.String()
}
