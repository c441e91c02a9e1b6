package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/lock"
)

type fakeReminders struct {
	sessionCalls int
	paymentCalls int
	lastNow      time.Time
	lastWindow   time.Duration
	err          error
}

func (f *fakeReminders) SendSessionReminders(_ context.Context, now time.Time, window time.Duration) (int, error) {
	f.sessionCalls++
	f.lastNow = now
	f.lastWindow = window
	return 3, f.err
}

func (f *fakeReminders) SendPaymentReminders(_ context.Context) (int, error) {
	f.paymentCalls++
	return 1, f.err
}

func newTestScheduler(reminders ReminderSender, locker lock.Locker) *Scheduler {
	s := NewScheduler(reminders, locker, SchedulerConfig{
		SessionSchedule: "*/15 * * * *",
		PaymentSchedule: "0 9 * * *",
		SessionWindow:   24 * time.Hour,
		LockTTL:         time.Minute,
	}, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestScheduler_RunSessionReminders(t *testing.T) {
	reminders := &fakeReminders{}
	s := newTestScheduler(reminders, lock.NewMemoryLock())

	s.RunSessionReminders(context.Background())

	assert.Equal(t, 1, reminders.sessionCalls)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), reminders.lastNow)
	assert.Equal(t, 24*time.Hour, reminders.lastWindow)
}

func TestScheduler_SkipsWhenLocked(t *testing.T) {
	ctx := context.Background()
	reminders := &fakeReminders{}
	locker := lock.NewMemoryLock()

	ok, err := locker.Lock(ctx, paymentRemindersJob, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	s := newTestScheduler(reminders, locker)
	s.RunPaymentReminders(ctx)

	assert.Zero(t, reminders.paymentCalls)
}

func TestScheduler_ReleasesLockAfterFailure(t *testing.T) {
	ctx := context.Background()
	reminders := &fakeReminders{err: errors.New("smtp down")}
	locker := lock.NewMemoryLock()
	s := newTestScheduler(reminders, locker)

	s.RunPaymentReminders(ctx)
	s.RunPaymentReminders(ctx)

	assert.Equal(t, 2, reminders.paymentCalls)
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeReminders{}, lock.NewMemoryLock(), SchedulerConfig{
		SessionSchedule: "not a schedule",
		PaymentSchedule: "0 9 * * *",
	}, zap.NewNop())

	assert.Error(t, s.Start(context.Background()))
}
