package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/clock"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

type reminderEnv struct {
	svc    *ReminderService
	store  *fakeBookingStore
	sender *fakeSender
	users  *fakeUsers
	clock  *clock.Fixed
}

func newReminderEnv(now time.Time, existing ...model.Booking) reminderEnv {
	env := reminderEnv{
		store:  newFakeBookingStore(existing...),
		sender: &fakeSender{},
		users:  testUsers(),
		clock:  clock.NewFixed(now),
	}
	env.svc = NewReminderService(
		env.store,
		env.users,
		env.sender,
		env.clock,
		DefaultReminderOptions(),
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
	)
	return env
}

func TestSweep_24hReminderSentOnce(t *testing.T) {
	lesson := approvedBooking(monday, "10:00", model.LessonKindStandard)
	lesson.ID = 7
	env := newReminderEnv(sunday.Add(10*time.Hour), lesson)
	ctx := context.Background()

	report, err := env.svc.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Reminded)
	assert.Equal(t, 2, report.Sent)
	assert.NotEmpty(t, report.RunID)

	msgs := env.sender.messages()
	require.Len(t, msgs, 2)
	roles := []model.ActorRole{msgs[0].To.Role, msgs[1].To.Role}
	assert.ElementsMatch(t, []model.ActorRole{model.RoleTutor, model.RoleGuardian}, roles)
	for _, m := range msgs {
		assert.Contains(t, m.Text, "через 24 часа")
		assert.Contains(t, m.Text, "10:00 - 11:00")
	}
	assert.True(t, env.store.get(7).Notified24h)
	assert.False(t, env.store.get(7).Notified1h)

	env.clock.Advance(5 * time.Minute)
	report, err = env.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Sent)
	assert.Len(t, env.sender.messages(), 2)
}

func TestSweep_1hReminder(t *testing.T) {
	lesson := approvedBooking(monday, "10:00", model.LessonKindStandard)
	lesson.ID = 7
	lesson.Notified24h = true
	env := newReminderEnv(monday.Add(9*time.Hour), lesson)

	report, err := env.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Sent)
	assert.True(t, env.store.get(7).Notified1h)
	for _, m := range env.sender.messages() {
		assert.Contains(t, m.Text, "через 1 час!")
	}
}

func TestSweep_WindowsAndStatuses(t *testing.T) {
	now := sunday.Add(10 * time.Hour)

	tooEarly := approvedBooking(monday, "11:00", model.LessonKindStandard) // 25 ч
	between := approvedBooking(sunday, "15:00", model.LessonKindStandard)  // 5 ч
	started := approvedBooking(sunday, "10:00", model.LessonKindStandard)  // уже идёт
	pending := approvedBooking(monday, "10:00", model.LessonKindStandard)  // 24 ч, но не подтверждена
	pending.Status = model.BookingStatusPending

	env := newReminderEnv(now, tooEarly, between, started, pending)

	report, err := env.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Zero(t, report.Reminded)
	assert.Empty(t, env.sender.messages())
}

func TestSweep_WindowBoundsInclusive(t *testing.T) {
	lesson := approvedBooking(monday, "10:00", model.LessonKindStandard)
	lesson.ID = 7

	env := newReminderEnv(lesson.StartsAt().Add(-24*time.Hour-30*time.Minute), lesson)
	report, err := env.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reminded)

	env = newReminderEnv(lesson.StartsAt().Add(-24*time.Hour-31*time.Minute), lesson)
	report, err = env.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Reminded)
}

func TestSweep_DeliveryFailureIsIsolated(t *testing.T) {
	lesson := approvedBooking(monday, "10:00", model.LessonKindStandard)
	lesson.ID = 7
	env := newReminderEnv(sunday.Add(10*time.Hour), lesson)
	env.sender.failOn = map[model.ActorRole]bool{model.RoleTutor: true}

	report, err := env.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	msgs := env.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleGuardian, msgs[0].To.Role)
	assert.True(t, env.store.get(7).Notified24h, "flag is set even if one delivery failed")
}

func TestSweep_FlagWriteFailureIsReported(t *testing.T) {
	first := approvedBooking(monday, "10:00", model.LessonKindStandard)
	first.ID = 7
	env := newReminderEnv(sunday.Add(10*time.Hour), first)
	env.store.markErr = errors.New("connection reset")

	report, err := env.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, report.FlagFailures)
	assert.Equal(t, 2, report.Sent)

	// флаг не сохранился, следующий обход отправит напоминание повторно
	env.store.markErr = nil
	report, err = env.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Empty(t, report.FlagFailures)
	assert.True(t, env.store.get(7).Notified24h)
}

func TestSweep_UnknownParticipantsSkipsFlag(t *testing.T) {
	lesson := approvedBooking(monday, "10:00", model.LessonKindStandard)
	lesson.ID = 7
	env := newReminderEnv(sunday.Add(10*time.Hour), lesson)
	env.users.participantErr = model.ErrNotFound

	report, err := env.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Reminded)
	assert.False(t, env.store.get(7).Notified24h)
}

func TestSweep_ListFailure(t *testing.T) {
	env := newReminderEnv(sunday)
	env.store.listErr = errors.New("db down")

	_, err := env.svc.Sweep(context.Background())
	assert.Error(t, err)
}
