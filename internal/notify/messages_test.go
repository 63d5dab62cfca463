package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

func testBooking() model.Booking {
	return model.Booking{
		ID:         7,
		TutorID:    1,
		GuardianID: 2,
		StudentID:  3,
		Subject:    "Математика",
		LessonKind: model.LessonKindExam,
		Date:       time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC),
		StartTime:  model.MustTimeOfDay("10:00"),
		EndTime:    model.MustTimeOfDay("11:30"),
		Price:      150050,
		Status:     model.BookingStatusApproved,
	}
}

func testParticipants() model.Participants {
	return model.Participants{
		Tutor:    model.Tutor{ID: 1, TelegramID: 1001, Name: "Анна", Surname: "Петрова"},
		Guardian: model.Guardian{ID: 2, TelegramID: 2002, Name: "Иван", Surname: "Сидоров", Phone: "+7 900 000-00-00"},
		Student:  model.Student{ID: 3, GuardianID: 2, Name: "Маша", Surname: "Сидорова"},
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1500 ₽", FormatPrice(150000))
	assert.Equal(t, "1500.50 ₽", FormatPrice(150050))
	assert.Equal(t, "19.10.2026", FormatDate(testBooking().Date))
	assert.Equal(t, "10:00 - 11:30", FormatTimeRange(model.MustTimeOfDay("10:00"), model.MustTimeOfDay("11:30")))

	for n, want := range map[int]string{1: "час", 2: "часа", 5: "часов", 11: "часов", 21: "час", 24: "часа"} {
		assert.Equal(t, want, PluralizeHours(n), "n=%d", n)
	}
}

func TestReminderText(t *testing.T) {
	b, p := testBooking(), testParticipants()

	tutorText := ReminderText(model.Reminder24h, model.RoleTutor, b, p)
	assert.Contains(t, tutorText, "через 24 часа!")
	assert.Contains(t, tutorText, "Ученик: Маша Сидорова")
	assert.Contains(t, tutorText, "Подготовка к экзамену")
	assert.Contains(t, tutorText, "Контакт родителя: +7 900 000-00-00")
	assert.NotContains(t, tutorText, "Репетитор:")

	guardianText := ReminderText(model.Reminder1h, model.RoleGuardian, b, p)
	assert.Contains(t, guardianText, "через 1 час!")
	assert.Contains(t, guardianText, "Репетитор: Анна Петрова")
	assert.NotContains(t, guardianText, "Контакт родителя")

	p.Guardian.Phone = ""
	assert.Contains(t, ReminderText(model.Reminder1h, model.RoleTutor, b, p), "Контакт родителя: Не указан")
}

func TestEventText(t *testing.T) {
	b, p := testBooking(), testParticipants()
	reason := "Уезжаю"
	b.RejectionReason = &reason

	tests := []struct {
		event    model.BookingEvent
		contains []string
		absent   []string
	}{
		{
			event:    model.BookingEvent{Type: model.EventBookingRequested, Actor: model.RoleGuardian, Booking: b},
			contains: []string{"Новая заявка", "Стоимость: 1500.50 ₽"},
			absent:   []string{"Репетитор:"},
		},
		{
			event:    model.BookingEvent{Type: model.EventBookingApproved, Actor: model.RoleTutor, Booking: b},
			contains: []string{"подтвердил", "Репетитор: Анна Петрова"},
		},
		{
			event:    model.BookingEvent{Type: model.EventBookingRejected, Actor: model.RoleTutor, Booking: b},
			contains: []string{"отклонил", "Причина: Уезжаю"},
			absent:   []string{"Стоимость"},
		},
		{
			event:    model.BookingEvent{Type: model.EventBookingCancelled, Actor: model.RoleGuardian, Booking: b},
			contains: []string{"отменена родителем"},
		},
		{
			event:    model.BookingEvent{Type: model.EventBookingCancelled, Actor: model.RoleTutor, Booking: b},
			contains: []string{"отменено репетитором"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type)+"/"+string(tt.event.Actor), func(t *testing.T) {
			text := EventText(tt.event, p)
			assert.Contains(t, text, "10:00 - 11:30")
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestRecipientFor(t *testing.T) {
	p := testParticipants()

	assert.Equal(t, Recipient{Role: model.RoleTutor, UserID: 1, ChatID: 1001}, RecipientFor(p, model.RoleTutor))
	assert.Equal(t, Recipient{Role: model.RoleGuardian, UserID: 2, ChatID: 2002}, RecipientFor(p, model.RoleGuardian))
}
