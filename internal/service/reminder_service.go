package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/tutor_scheduler/internal/clock"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
)

// SweepReport итог одного обхода напоминаний
type SweepReport struct {
	RunID        string
	Checked      int     // подтверждённых записей на сегодня и завтра
	Reminded     int     // записей, по которым была рассылка
	Sent         int     // успешно доставленных сообщений
	Failed       int     // недоставленных сообщений
	FlagFailures []int64 // записи, флаг которых не удалось сохранить
}

// ReminderService рассылает напоминания за сутки и за час до занятия
type ReminderService struct {
	bookings BookingStore
	users    UserDirectory
	sender   notify.Sender
	clock    clock.Clock
	opts     ReminderOptions
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewReminderService(
	bookings BookingStore,
	users UserDirectory,
	sender notify.Sender,
	clk clock.Clock,
	opts ReminderOptions,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		bookings: bookings,
		users:    users,
		sender:   sender,
		clock:    clk,
		opts:     opts,
		metrics:  m,
		logger:   logger,
	}
}

// Sweep один обход. Ошибка возвращается только если не удалось загрузить записи;
// сбои доставки и записи флагов изолированы по записям и попадают в отчёт.
func (s *ReminderService) Sweep(ctx context.Context) (SweepReport, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(started)) }()

	report := SweepReport{RunID: uuid.NewString()}
	now := s.clock.Now()
	today := model.DateOnly(now)

	bookings, err := s.bookings.ListApprovedBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return report, fmt.Errorf("list approved bookings: %w", err)
	}
	report.Checked = len(bookings)

	for _, b := range bookings {
		kind, ok := s.dueReminder(b, now)
		if !ok {
			continue
		}
		s.remind(ctx, b, kind, &report)
	}

	s.logger.Info("Reminder sweep finished",
		zap.String("run_id", report.RunID),
		zap.Int("checked", report.Checked),
		zap.Int("reminded", report.Reminded),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("flag_failures", len(report.FlagFailures)),
	)

	return report, nil
}

// dueReminder какое напоминание пора отправить. Окно 24h проверяется первым.
func (s *ReminderService) dueReminder(b model.Booking, now time.Time) (model.ReminderKind, bool) {
	hours := b.StartsAt().Sub(now).Hours()

	if s.opts.Window24h.Contains(hours) && !b.Notified24h {
		return model.Reminder24h, true
	}
	if s.opts.Window1h.Contains(hours) && !b.Notified1h {
		return model.Reminder1h, true
	}
	return "", false
}

func (s *ReminderService) remind(ctx context.Context, b model.Booking, kind model.ReminderKind, report *SweepReport) {
	log := s.logger.With(
		zap.String("run_id", report.RunID),
		zap.Int64("booking_id", b.ID),
		zap.String("kind", string(kind)),
	)

	p, err := s.users.Participants(ctx, b)
	if err != nil {
		// без контактов отправлять некому, флаг не ставим и пробуем в следующий раз
		log.Error("Failed to resolve reminder recipients", zap.Error(err))
		report.Failed += 2
		return
	}

	var (
		mu     sync.Mutex
		sent   int
		failed int
		g      errgroup.Group
	)

	for _, role := range []model.ActorRole{model.RoleTutor, model.RoleGuardian} {
		to := notify.RecipientFor(p, role)
		text := notify.ReminderText(kind, role, b, p)

		g.Go(func() error {
			sendCtx, cancel := s.sendContext(ctx)
			defer cancel()

			err := s.sender.Send(sendCtx, to, text)
			s.metrics.ReminderSent(string(kind), string(role), err == nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Warn("Failed to deliver reminder",
					zap.String("role", string(role)),
					zap.Int64("user_id", to.UserID),
					zap.Error(err),
				)
				return nil
			}
			sent++
			return nil
		})
	}
	_ = g.Wait()

	report.Reminded++
	report.Sent += sent
	report.Failed += failed

	if err := s.bookings.MarkNotified(ctx, b.ID, kind); err != nil {
		s.metrics.ReminderFlagFailure()
		report.FlagFailures = append(report.FlagFailures, b.ID)
		log.Error("Failed to save reminder flag, reminder may be sent again", zap.Error(err))
		return
	}

	log.Info("Reminder sent", zap.Int("delivered", sent), zap.Int("failed", failed))
}

func (s *ReminderService) sendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.SendTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.SendTimeout)
}
