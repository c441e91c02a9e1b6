package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/lock"
)

const (
	sessionRemindersJob = "reminders:sessions"
	paymentRemindersJob = "reminders:payments"
)

// ReminderSender отправляет напоминания и возвращает количество обработанных записей
type ReminderSender interface {
	SendSessionReminders(ctx context.Context, now time.Time, window time.Duration) (int, error)
	SendPaymentReminders(ctx context.Context) (int, error)
}

// SchedulerConfig расписания задач в формате cron
type SchedulerConfig struct {
	SessionSchedule string
	PaymentSchedule string
	SessionWindow   time.Duration
	LockTTL         time.Duration
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reminders ReminderSender
	locker    lock.Locker
	cfg       SchedulerConfig
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reminders ReminderSender, locker lock.Locker, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		locker:    locker,
		cfg:       cfg,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger:    logger,
		now:       time.Now,
	}
}

// Start регистрирует задачи и запускает cron
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler",
		zap.String("session_schedule", s.cfg.SessionSchedule),
		zap.String("payment_schedule", s.cfg.PaymentSchedule))

	if _, err := s.cron.AddFunc(s.cfg.SessionSchedule, func() { s.RunSessionReminders(ctx) }); err != nil {
		return fmt.Errorf("add session reminders job: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.PaymentSchedule, func() { s.RunPaymentReminders(ctx) }); err != nil {
		return fmt.Errorf("add payment reminders job: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop останавливает cron и ждёт завершения запущенных задач
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// RunSessionReminders отправляет напоминания о ближайших занятиях
func (s *Scheduler) RunSessionReminders(ctx context.Context) {
	s.withLock(ctx, sessionRemindersJob, func(ctx context.Context) (int, error) {
		return s.reminders.SendSessionReminders(ctx, s.now(), s.cfg.SessionWindow)
	})
}

// RunPaymentReminders отправляет напоминания о неоплаченных счетах
func (s *Scheduler) RunPaymentReminders(ctx context.Context) {
	s.withLock(ctx, paymentRemindersJob, s.reminders.SendPaymentReminders)
}

// withLock выполняет задачу только если блокировка получена, иначе пропускает запуск
func (s *Scheduler) withLock(ctx context.Context, job string, fn func(ctx context.Context) (int, error)) {
	logger := s.logger.With(zap.String("job", job))

	ok, err := s.locker.Lock(ctx, job, s.cfg.LockTTL)
	if err != nil {
		logger.Error("Failed to acquire job lock", zap.Error(err))
		return
	}
	if !ok {
		logger.Info("Job is running in another process, skipping")
		return
	}
	defer func() {
		if err := s.locker.Unlock(ctx, job); err != nil {
			logger.Warn("Failed to release job lock", zap.Error(err))
		}
	}()

	start := s.now()
	count, err := fn(ctx)
	if err != nil {
		logger.Error("Job failed", zap.Error(err))
		return
	}

	logger.Info("Job completed",
		zap.Int("processed", count),
		zap.Duration("duration", s.now().Sub(start)))
}
