package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
)

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

func inRange(d, from, to time.Time) bool {
	k := dateKey(d)
	return k >= dateKey(from) && k <= dateKey(to)
}

// fakeBookingStore хранилище записей в памяти с проверкой пересечений,
// как у ограничения исключения в базе
type fakeBookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]model.Booking

	// staleOnUpdate имитирует конкурентное изменение статуса перед сохранением
	staleOnUpdate bool
	markErr       error
	listErr       error
	marked        []int64
}

func newFakeBookingStore(bookings ...model.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[int64]model.Booking)}
	for _, b := range bookings {
		s.nextID++
		if b.ID == 0 {
			b.ID = s.nextID
		}
		if b.ID > s.nextID {
			s.nextID = b.ID
		}
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) Create(_ context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if existing.TutorID == booking.TutorID &&
			existing.Status.IsBusy() &&
			model.SameDate(existing.Date, booking.Date) &&
			existing.Interval().Overlaps(booking.Interval()) {
			return fmt.Errorf("%w: with booking %d", repository.ErrOverlap, existing.ID)
		}
	}

	s.nextID++
	booking.ID = s.nextID
	booking.CreatedAt = time.Now()
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", repository.ErrBookingNotFound, id)
	}
	return &b, nil
}

func (s *fakeBookingStore) filter(match func(model.Booking) bool) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !model.SameDate(out[i].Date, out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (s *fakeBookingStore) ListActiveByTutor(_ context.Context, tutorID int64, from, to time.Time) ([]model.Booking, error) {
	return s.filter(func(b model.Booking) bool {
		return b.TutorID == tutorID && b.Status.IsBusy() && inRange(b.Date, from, to)
	}), nil
}

func (s *fakeBookingStore) ListByTutor(
	_ context.Context,
	tutorID int64,
	from, to time.Time,
	statuses ...model.BookingStatus,
) ([]model.Booking, error) {
	return s.filter(func(b model.Booking) bool {
		if b.TutorID != tutorID || !inRange(b.Date, from, to) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, st := range statuses {
			if b.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (s *fakeBookingStore) ListByGuardian(_ context.Context, guardianID int64) ([]model.Booking, error) {
	return s.filter(func(b model.Booking) bool { return b.GuardianID == guardianID }), nil
}

func (s *fakeBookingStore) ListPendingByTutor(_ context.Context, tutorID int64) ([]model.Booking, error) {
	return s.filter(func(b model.Booking) bool {
		return b.TutorID == tutorID && b.Status == model.BookingStatusPending
	}), nil
}

func (s *fakeBookingStore) ListApprovedBetween(_ context.Context, from, to time.Time) ([]model.Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.filter(func(b model.Booking) bool {
		return b.Status == model.BookingStatusApproved && inRange(b.Date, from, to)
	}), nil
}

func (s *fakeBookingStore) UpdateTransition(_ context.Context, booking model.Booking, expected model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[booking.ID]
	if !ok || current.Status != expected || s.staleOnUpdate {
		return fmt.Errorf("%w: booking %d", repository.ErrStatusChanged, booking.ID)
	}
	s.bookings[booking.ID] = booking
	return nil
}

func (s *fakeBookingStore) MarkNotified(_ context.Context, id int64, kind model.ReminderKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return s.markErr
	}

	b := s.bookings[id]
	switch kind {
	case model.Reminder24h:
		b.Notified24h = true
	case model.Reminder1h:
		b.Notified1h = true
	}
	s.bookings[id] = b
	s.marked = append(s.marked, id)
	return nil
}

func (s *fakeBookingStore) LockTutor(context.Context, int64) error {
	return nil
}

func (s *fakeBookingStore) get(id int64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *fakeBookingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// serialTx выполняет транзакции строго по одной
type serialTx struct {
	mu sync.Mutex
}

func (t *serialTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type fakeAvailability struct {
	mu        sync.Mutex
	templates map[int64]model.AvailabilityTemplate
	saved     int
}

func (f *fakeAvailability) GetAvailability(_ context.Context, tutorID int64) (model.AvailabilityTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.templates[tutorID]
	if !ok {
		return model.AvailabilityTemplate{}, fmt.Errorf("%w: id %d", repository.ErrTutorNotFound, tutorID)
	}
	return t, nil
}

func (f *fakeAvailability) SaveDay(_ context.Context, tutorID int64, w model.Weekday, day model.DaySchedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.templates[tutorID]
	t.Set(w, day)
	f.templates[tutorID] = t
	f.saved++
	return nil
}

type fakeUsers struct {
	students       map[int64]model.Student
	participantErr error
}

func (f *fakeUsers) GetStudent(_ context.Context, id int64) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", repository.ErrStudentNotFound, id)
	}
	return &s, nil
}

func (f *fakeUsers) Participants(_ context.Context, b model.Booking) (model.Participants, error) {
	if f.participantErr != nil {
		return model.Participants{}, f.participantErr
	}
	return model.Participants{
		Tutor:    model.Tutor{ID: b.TutorID, TelegramID: 1000 + b.TutorID, Name: "Анна", Surname: "Петрова"},
		Guardian: model.Guardian{ID: b.GuardianID, TelegramID: 2000 + b.GuardianID, Name: "Иван", Surname: "Сидоров"},
		Student:  f.students[b.StudentID],
	}, nil
}

type sentMessage struct {
	To   notify.Recipient
	Text string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn map[model.ActorRole]bool
}

func (f *fakeSender) Send(_ context.Context, to notify.Recipient, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn[to.Role] {
		return errors.New("telegram: chat not found")
	}
	f.sent = append(f.sent, sentMessage{To: to, Text: text})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e model.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) published() []model.BookingEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.BookingEvent(nil), f.events...)
}
