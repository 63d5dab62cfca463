package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// Sweeper один обход напоминаний
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// Locker не даёт двум экземплярам обходить записи одновременно
type Locker interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(sweeper Sweeper, locker Locker, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		locker:   locker,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновые задачи. Повторный запуск и запуск после Stop игнорируются.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runReminderTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего обхода
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})

	s.mu.Lock()
	started := s.started
	s.stopped = true
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

// runReminderTask периодически рассылает напоминания о занятиях
func (s *Scheduler) runReminderTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Reminder task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reminder task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	release, ok, err := s.locker.TryAcquire(ctx)
	if err != nil {
		s.logger.Error("Failed to acquire sweep lock", zap.Error(err))
		return
	}
	if !ok {
		s.logger.Debug("Reminder sweep is running on another instance")
		return
	}
	defer release()

	report, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("Reminder sweep failed", zap.String("run_id", report.RunID), zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("run_id", report.RunID),
		zap.Int("checked", report.Checked),
		zap.Int("reminded", report.Reminded),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
	}
	if len(report.FlagFailures) > 0 {
		s.logger.Error("Reminder sweep finished with unsaved flags",
			append(fields, zap.Int64s("booking_ids", report.FlagFailures))...)
		return
	}
	if report.Reminded > 0 {
		s.logger.Info("Reminder sweep finished", fields...)
		return
	}
	s.logger.Debug("Reminder sweep finished", fields...)
}
