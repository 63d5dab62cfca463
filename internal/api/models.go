package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// CreateBookingRequest заявка на занятие, родитель берётся из заголовков
type CreateBookingRequest struct {
	TutorID    int64  `json:"tutor_id"`
	StudentID  int64  `json:"student_id"`
	Subject    string `json:"subject"`
	LessonKind string `json:"lesson_kind"`
	Date       string `json:"date"`       // "2026-10-19"
	StartTime  string `json:"start_time"` // "10:00"
	Price      int    `json:"price"`      // в копейках
}

// ToServiceRequest конвертирует запрос в заявку сервиса записи
func (r CreateBookingRequest) ToServiceRequest(guardianID int64) (service.CommitRequest, error) {
	kind, err := model.ParseLessonKind(r.LessonKind)
	if err != nil {
		return service.CommitRequest{}, err
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return service.CommitRequest{}, err
	}
	if date.IsZero() {
		return service.CommitRequest{}, fmt.Errorf("%w: date is required", model.ErrValidation)
	}

	start, err := model.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return service.CommitRequest{}, fmt.Errorf("%w: start_time: %v", model.ErrValidation, err)
	}

	return service.CommitRequest{
		TutorID:    r.TutorID,
		GuardianID: guardianID,
		StudentID:  r.StudentID,
		Subject:    strings.TrimSpace(r.Subject),
		LessonKind: kind,
		Date:       date,
		Start:      start,
		End:        start.Add(kind.Duration()),
		Price:      r.Price,
	}, nil
}

// RejectRequest причина отказа
type RejectRequest struct {
	Reason string `json:"reason"`
}

// BookingResponse запись в ответе API
type BookingResponse struct {
	ID              int64   `json:"id"`
	TutorID         int64   `json:"tutor_id"`
	GuardianID      int64   `json:"guardian_id"`
	StudentID       int64   `json:"student_id"`
	Subject         string  `json:"subject"`
	LessonKind      string  `json:"lesson_kind"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Price           int     `json:"price"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CancelledBy     *string `json:"cancelled_by,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func toBookingResponse(b model.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID,
		TutorID:         b.TutorID,
		GuardianID:      b.GuardianID,
		StudentID:       b.StudentID,
		Subject:         b.Subject,
		LessonKind:      string(b.LessonKind),
		Date:            b.Date.Format(time.DateOnly),
		StartTime:       b.StartTime.String(),
		EndTime:         b.EndTime.String(),
		Price:           b.Price,
		Status:          string(b.Status),
		RejectionReason: b.RejectionReason,
	}
	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func toBookingResponses(bookings []model.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

// AvailableDatesResponse даты, на которые есть свободное время
type AvailableDatesResponse struct {
	TutorID         int64    `json:"tutor_id"`
	DurationMinutes int      `json:"duration_minutes"`
	Dates           []string `json:"dates"`
}

// FreeSlotsResponse свободные окна на дату
type FreeSlotsResponse struct {
	TutorID         int64        `json:"tutor_id"`
	Date            string       `json:"date"`
	DurationMinutes int          `json:"duration_minutes"`
	Slots           []model.Slot `json:"slots"`
}

// ScheduleResponse расписание репетитора за период
type ScheduleResponse struct {
	Period    string            `json:"period"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Bookings  []BookingResponse `json:"bookings"`
	Confirmed int               `json:"confirmed"`
	Pending   int               `json:"pending"`
	Cancelled int               `json:"cancelled"`
	Income    int               `json:"income"`
}

func toScheduleResponse(s *service.ScheduleSummary) ScheduleResponse {
	return ScheduleResponse{
		Period:    string(s.Period),
		From:      s.From.Format(time.DateOnly),
		To:        s.To.Format(time.DateOnly),
		Bookings:  toBookingResponses(s.Bookings),
		Confirmed: s.Confirmed,
		Pending:   s.Pending,
		Cancelled: s.Cancelled,
		Income:    s.Income,
	}
}

// AvailabilityResponse рабочие часы по дням недели
type AvailabilityResponse struct {
	TutorID int64                        `json:"tutor_id"`
	Days    map[string]model.DaySchedule `json:"days"`
}

func toAvailabilityResponse(t model.AvailabilityTemplate, tutorID int64) AvailabilityResponse {
	resp := AvailabilityResponse{TutorID: tutorID, Days: make(map[string]model.DaySchedule, model.DaysPerWeek)}
	for w := model.Monday; w <= model.Sunday; w++ {
		resp.Days[w.String()] = t.Day(w)
	}
	return resp
}

// parseDate разбирает дату YYYY-MM-DD, пустая строка даёт нулевое время
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", model.ErrValidation, s)
	}
	return t, nil
}

// durationFromKind длительность по типу занятия, по умолчанию обычное занятие
func durationFromKind(s string) (int, error) {
	if s == "" {
		return model.LessonKindStandard.Minutes(), nil
	}
	kind, err := model.ParseLessonKind(s)
	if err != nil {
		return 0, err
	}
	return kind.Minutes(), nil
}
