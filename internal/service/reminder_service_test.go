package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/notify"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	sent map[int64][]notify.Message
	fail bool
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{sent: make(map[int64][]notify.Message)}
}

func (d *fakeDispatcher) Dispatch(_ context.Context, account *model.Account, msg notify.Message) []*model.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[account.ID] = append(d.sent[account.ID], msg)

	n := &model.Notification{
		AccountID: account.ID,
		Channel:   model.NotificationChannelEmail,
		Recipient: account.Email,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Status:    model.NotificationStatusSent,
	}
	if d.fail {
		n.Status = model.NotificationStatusFailed
		n.Error = "provider unavailable"
	}
	return []*model.Notification{n}
}

func (d *fakeDispatcher) count(accountID int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent[accountID])
}

type reminderFixture struct {
	db         *memDB
	dispatcher *fakeDispatcher
	svc        *ReminderService
	now        time.Time
	parent     *model.Account
	adult      *model.Account
	instructor *model.Account
	course     *model.Course
	session    *model.Session
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	f := &reminderFixture{
		db:         newMemDB(),
		dispatcher: newFakeDispatcher(),
		now:        time.Date(2025, 2, 3, 18, 0, 0, 0, time.UTC),
	}
	f.svc = NewReminderService(f.db.stores(), f.dispatcher, businessLocation(t), zap.NewNop())

	f.parent = f.db.addParent("Mary", "mary@example.com", 0)
	tom := f.db.addStudent("Tom", f.parent.ID)
	ann := f.db.addStudent("Ann", f.parent.ID)
	f.adult = f.db.addAccount(&model.Account{Role: model.AccountRoleStudent, FirstName: "Bob", Email: "bob@example.com"})
	f.instructor = f.db.addAccount(&model.Account{Role: model.AccountRoleInstructor, FirstName: "Ann", Email: "instructor@example.com"})

	f.course = f.db.addCourse(&model.Course{Subject: "Algebra I", Type: model.CourseTypeClass, InstructorID: &f.instructor.ID})
	for _, student := range []*model.Account{tom, ann, f.adult} {
		require.NoError(t, memEnrollments{f.db}.Create(context.Background(), &model.Enrollment{
			StudentID: student.ID, CourseID: f.course.ID, SessionsLeft: 5,
		}))
	}

	sessions := []*model.Session{
		{CourseID: f.course.ID, StartTime: f.now.Add(2 * time.Hour), EndTime: f.now.Add(3 * time.Hour), IsConfirmed: true},
		{CourseID: f.course.ID, StartTime: f.now.Add(30 * time.Hour), EndTime: f.now.Add(31 * time.Hour), IsConfirmed: true},
		{CourseID: f.course.ID, StartTime: f.now.Add(5 * time.Hour), EndTime: f.now.Add(6 * time.Hour), IsConfirmed: false},
	}
	require.NoError(t, memSessions{f.db}.CreateBatch(context.Background(), sessions))
	f.session = sessions[0]

	return f
}

func TestReminderService_SendSessionReminders(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	processed, err := f.svc.SendSessionReminders(ctx, f.now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	assert.Equal(t, 1, f.dispatcher.count(f.parent.ID), "one reminder per parent")
	assert.Equal(t, 1, f.dispatcher.count(f.adult.ID))
	assert.Equal(t, 1, f.dispatcher.count(f.instructor.ID))
	assert.Len(t, f.db.notifications, 3)

	msg := f.dispatcher.sent[f.parent.ID][0]
	assert.Equal(t, "Reminder: Algebra I", msg.Subject)
	// 20:00 UTC = 12:00 PST
	assert.Contains(t, msg.Body, "Mon, Feb 3, 12:00 PM - 1:00 PM")

	stored := f.db.sessions[f.session.ID]
	assert.True(t, stored.StudentReminderSent)
	assert.True(t, stored.InstructorReminderSent)

	processed, err = f.svc.SendSessionReminders(ctx, f.now, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Equal(t, 1, f.dispatcher.count(f.parent.ID))
}

func TestReminderService_SendSessionReminders_InstructorOnly(t *testing.T) {
	f := newReminderFixture(t)
	f.db.sessions[f.session.ID].StudentReminderSent = true

	processed, err := f.svc.SendSessionReminders(context.Background(), f.now, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, processed)
	assert.Zero(t, f.dispatcher.count(f.parent.ID))
	assert.Equal(t, 1, f.dispatcher.count(f.instructor.ID))
}

func TestReminderService_SendSessionReminders_FailedDeliveryIsRecorded(t *testing.T) {
	f := newReminderFixture(t)
	f.dispatcher.fail = true

	processed, err := f.svc.SendSessionReminders(context.Background(), f.now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	require.NotEmpty(t, f.db.notifications)
	for _, n := range f.db.notifications {
		assert.Equal(t, model.NotificationStatusFailed, n.Status)
		assert.Equal(t, "provider unavailable", n.Error)
	}
	assert.True(t, f.db.sessions[f.session.ID].StudentReminderSent)
}

func TestReminderService_SendPaymentReminders(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	invoices := []*model.Invoice{
		{ParentID: f.parent.ID, Total: decimal.NewFromInt(145), PaymentStatus: model.PaymentStatusUnpaid},
		{ParentID: f.parent.ID, Total: decimal.NewFromInt(80), PaymentStatus: model.PaymentStatusPaid},
		{ParentID: f.parent.ID, Total: decimal.NewFromInt(60), PaymentStatus: model.PaymentStatusPartial},
	}
	for _, inv := range invoices {
		require.NoError(t, memInvoices{f.db}.Create(ctx, inv))
	}

	processed, err := f.svc.SendPaymentReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, f.dispatcher.count(f.parent.ID))

	msg := f.dispatcher.sent[f.parent.ID][0]
	assert.Contains(t, msg.Subject, "is awaiting payment")
	assert.Contains(t, msg.Body, "$145.00")

	assert.True(t, f.db.invoices[invoices[0].ID].PaymentReminderSent)
	assert.False(t, f.db.invoices[invoices[1].ID].PaymentReminderSent)
	assert.True(t, f.db.invoices[invoices[2].ID].PaymentReminderSent)

	processed, err = f.svc.SendPaymentReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)
}
