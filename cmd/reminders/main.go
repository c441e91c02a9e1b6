package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/app"
	"github.com/Freeeeeet/tutoring_admin/internal/config"
	"github.com/Freeeeeet/tutoring_admin/internal/lock"
	"github.com/Freeeeeet/tutoring_admin/internal/notify"
	"github.com/Freeeeeet/tutoring_admin/internal/repository"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reminder worker",
		zap.String("environment", cfg.Environment),
		zap.Bool("email_enabled", cfg.EmailEnabled()),
		zap.Bool("sms_enabled", cfg.SMSEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.NewPool(ctx, cfg.DBDSN, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	var locker lock.Locker
	redisLock, client, err := lock.NewRedisLock(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.Warn("Redis is unavailable, using in-process lock", zap.Error(err))
		locker = lock.NewMemoryLock()
	} else {
		defer func() { _ = client.Close() }()
		locker = redisLock
	}

	dispatcher := notify.NewDispatcher(notify.NewFactory(notify.Config{
		SendGridAPIKey:   cfg.SendGrid.APIKey,
		FromEmail:        cfg.SendGrid.FromEmail,
		FromName:         cfg.SendGrid.FromName,
		TwilioAccountSID: cfg.Twilio.AccountSID,
		TwilioAuthToken:  cfg.Twilio.AuthToken,
		TwilioFromPhone:  cfg.Twilio.FromPhone,
		TelegramToken:    cfg.Telegram.Token,
	}, logger), logger)

	stores := service.NewStores(repository.NewRepositories(pool))
	reminders := service.NewReminderService(stores, dispatcher, cfg.Location(), logger)

	scheduler := app.NewScheduler(reminders, locker, app.SchedulerConfig{
		SessionSchedule: cfg.Reminders.SessionSchedule,
		PaymentSchedule: cfg.Reminders.PaymentSchedule,
		SessionWindow:   cfg.Reminders.SessionWindow,
		LockTTL:         cfg.Reminders.LockTTL,
	}, logger)

	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	scheduler.Stop()
	logger.Info("Reminder worker stopped")
}
