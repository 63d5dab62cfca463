package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/api"
	"github.com/Freeeeeet/tutor_scheduler/internal/app"
	"github.com/Freeeeeet/tutor_scheduler/internal/clock"
	"github.com/Freeeeeet/tutor_scheduler/internal/config"
	"github.com/Freeeeeet/tutor_scheduler/internal/lock"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
	"github.com/Freeeeeet/tutor_scheduler/internal/queue"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Tutor scheduler stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting tutor scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("env_file", cfg.EnvFileLoaded),
		zap.String("config_file", cfg.ConfigFile),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		_ = migrator.Close()
		return err
	}
	_ = migrator.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clk := clock.NewReal(cfg.Location)

	// Репозитории
	bookingRepo := repository.NewBookingRepository(pool, cfg.Location)
	availabilityRepo := repository.NewAvailabilityRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool)
	txManager := repository.NewTxManager(pool, logger)

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(userRepo, sender, logger)

	// События уходят в RabbitMQ, если он настроен, иначе доставляются сразу
	var events service.EventPublisher = dispatcher
	if cfg.RabbitMQURL != "" {
		publisher := queue.NewPublisher(cfg.RabbitMQURL, logger)
		defer func() { _ = publisher.Close() }()
		events = publisher

		consumer := queue.NewConsumer(cfg.RabbitMQURL, dispatcher, logger)
		go consumer.Run(ctx)
	}

	// Сервисы
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, bookingRepo, clk, cfg.BookingOptions(), logger)
	bookingSvc := service.NewBookingService(
		bookingRepo,
		availabilityRepo,
		userRepo,
		txManager,
		events,
		clk,
		cfg.BookingOptions(),
		m,
		logger,
	)
	scheduleSvc := service.NewScheduleService(bookingRepo, clk, logger)
	reminderSvc := service.NewReminderService(bookingRepo, userRepo, sender, clk, cfg.ReminderOptions(), m, logger)

	// Напоминания
	redisClient, err := lock.NewClient(ctx, lock.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	sweepLock := lock.NewSweepLock(nil, lock.DefaultKey, cfg.Reminders.LockTTL, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		sweepLock = lock.NewSweepLock(redisClient, lock.DefaultKey, cfg.Reminders.LockTTL, logger)
	}

	scheduler := app.NewScheduler(reminderSvc, sweepLock, cfg.Reminders.Interval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// HTTP
	handler := api.NewHandler(availabilitySvc, bookingSvc, scheduleSvc, logger)
	router := app.NewRouter(handler, pool, reg, m, logger)
	srv := app.NewHTTPServer(app.HTTPOptions{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, router)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	logger.Info("Tutor scheduler stopped gracefully")
	return nil
}

// newSender отправка через ботов репетиторов и родителей; без токенов
// сообщения только пишутся в лог
func newSender(cfg *config.Config, logger *zap.Logger) (notify.Sender, error) {
	if cfg.TutorBotToken == "" && cfg.GuardianBotToken == "" {
		logger.Warn("Bot tokens are not set, notifications go to the log")
		return notify.NewLogSender(logger), nil
	}

	tutorBot, err := optionalBot(cfg.TutorBotToken)
	if err != nil {
		return nil, err
	}
	guardianBot, err := optionalBot(cfg.GuardianBotToken)
	if err != nil {
		return nil, err
	}
	return notify.NewTelegramSender(tutorBot, guardianBot, logger), nil
}

func optionalBot(token string) (*bot.Bot, error) {
	if token == "" {
		return nil, nil
	}
	return notify.NewBot(token)
}

