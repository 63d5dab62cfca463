package config

import (
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// BookingOptions параметры записи для сервисов
func (c *Config) BookingOptions() service.BookingOptions {
	return service.BookingOptions{
		SlotStep:          time.Duration(c.Booking.SlotStepMinutes) * time.Minute,
		HorizonDays:       c.Booking.HorizonDays,
		MaxRangeDays:      c.Booking.MaxRangeDays,
		TutorCancelNotice: time.Duration(c.Booking.TutorCancelNoticeMinutes) * time.Minute,
	}
}

// ReminderOptions параметры рассылки напоминаний
func (c *Config) ReminderOptions() service.ReminderOptions {
	return service.ReminderOptions{
		Window24h:   service.Window{From: c.Reminders.Window24hFrom, To: c.Reminders.Window24hTo},
		Window1h:    service.Window{From: c.Reminders.Window1hFrom, To: c.Reminders.Window1hTo},
		SendTimeout: c.Reminders.SendTimeout,
	}
}
