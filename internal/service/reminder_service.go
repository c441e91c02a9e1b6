package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/notify"
)

// Dispatcher рассылает сообщение аккаунту по доступным каналам
type Dispatcher interface {
	Dispatch(ctx context.Context, account *model.Account, msg notify.Message) []*model.Notification
}

type ReminderService struct {
	stores     Stores
	dispatcher Dispatcher
	loc        *time.Location
	logger     *zap.Logger
}

func NewReminderService(stores Stores, dispatcher Dispatcher, loc *time.Location, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		stores:     stores,
		dispatcher: dispatcher,
		loc:        loc,
		logger:     logger,
	}
}

// SendSessionReminders напоминает о подтверждённых занятиях, начинающихся в
// (now, now+window]: родителям записанных учеников и преподавателю.
// Флаг ставится после отправки, поэтому повторной отправки нет, но сбой между
// отправкой и флагом может привести к дублю
func (s *ReminderService) SendSessionReminders(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	sessions, err := s.stores.Sessions.ListStartingBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	courses := make(map[int64]*model.Course)
	processed := 0

	for _, session := range sessions {
		if !session.IsConfirmed {
			continue
		}

		course, ok := courses[session.CourseID]
		if !ok {
			course, err = s.stores.Courses.GetByID(ctx, session.CourseID)
			if err != nil {
				return processed, fmt.Errorf("get course: %w", err)
			}
			if course == nil {
				continue
			}
			courses[session.CourseID] = course
		}

		msg := s.sessionMessage(course, session)

		if !session.StudentReminderSent {
			if err := s.remindStudents(ctx, course, msg); err != nil {
				return processed, err
			}
			if err := s.stores.Sessions.MarkStudentReminderSent(ctx, session.ID); err != nil {
				return processed, fmt.Errorf("mark student reminder: %w", err)
			}
		}

		if !session.InstructorReminderSent {
			if err := s.remindInstructor(ctx, course, msg); err != nil {
				return processed, err
			}
			if err := s.stores.Sessions.MarkInstructorReminderSent(ctx, session.ID); err != nil {
				return processed, fmt.Errorf("mark instructor reminder: %w", err)
			}
		}

		processed++
	}

	return processed, nil
}

// remindStudents отправляет напоминание родителям учеников курса, каждому один раз.
// Ученику без родителя напоминание приходит напрямую
func (s *ReminderService) remindStudents(ctx context.Context, course *model.Course, msg notify.Message) error {
	enrollments, err := s.stores.Enrollments.ListByCourse(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("list enrollments: %w", err)
	}
	if len(enrollments) == 0 {
		return nil
	}

	studentIDs := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		studentIDs = append(studentIDs, e.StudentID)
	}

	students, err := s.stores.Accounts.GetByIDs(ctx, studentIDs)
	if err != nil {
		return fmt.Errorf("get students: %w", err)
	}

	recipientIDs := make([]int64, 0, len(students))
	seen := make(map[int64]struct{})
	for _, student := range students {
		id := student.ID
		if student.ParentID != nil {
			id = *student.ParentID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipientIDs = append(recipientIDs, id)
	}

	recipients, err := s.stores.Accounts.GetByIDs(ctx, recipientIDs)
	if err != nil {
		return fmt.Errorf("get recipients: %w", err)
	}

	for _, account := range recipients {
		if err := s.notify(ctx, account, msg); err != nil {
			return err
		}
	}

	return nil
}

func (s *ReminderService) remindInstructor(ctx context.Context, course *model.Course, msg notify.Message) error {
	if course.InstructorID == nil {
		return nil
	}

	instructor, err := s.stores.Accounts.GetByID(ctx, *course.InstructorID)
	if err != nil {
		return fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return nil
	}

	return s.notify(ctx, instructor, msg)
}

// SendPaymentReminders напоминает родителям о неоплаченных счетах, по одному разу на счёт
func (s *ReminderService) SendPaymentReminders(ctx context.Context) (int, error) {
	invoices, err := s.stores.Invoices.ListUnpaidWithoutReminder(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unpaid invoices: %w", err)
	}

	processed := 0
	for _, invoice := range invoices {
		parent, err := s.stores.Accounts.GetByID(ctx, invoice.ParentID)
		if err != nil {
			return processed, fmt.Errorf("get parent: %w", err)
		}

		if parent != nil {
			msg := notify.Message{
				Subject: fmt.Sprintf("Invoice #%d is awaiting payment", invoice.ID),
				Body: fmt.Sprintf("Hello %s, invoice #%d for $%s from %s has not been paid yet.",
					parent.FirstName, invoice.ID, invoice.Total.StringFixed(2),
					invoice.CreatedAt.In(s.loc).Format("Jan 2, 2006")),
			}
			if err := s.notify(ctx, parent, msg); err != nil {
				return processed, err
			}
		}

		if err := s.stores.Invoices.MarkReminderSent(ctx, invoice.ID); err != nil {
			return processed, fmt.Errorf("mark payment reminder: %w", err)
		}
		processed++
	}

	return processed, nil
}

// notify отправляет сообщение и сохраняет запись о каждой попытке
func (s *ReminderService) notify(ctx context.Context, account *model.Account, msg notify.Message) error {
	for _, n := range s.dispatcher.Dispatch(ctx, account, msg) {
		if err := s.stores.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("save notification: %w", err)
		}
		if n.Status == model.NotificationStatusFailed {
			s.logger.Warn("Reminder not delivered",
				zap.Int64("account_id", account.ID),
				zap.String("channel", string(n.Channel)),
				zap.String("error", n.Error))
		}
	}
	return nil
}

func (s *ReminderService) sessionMessage(course *model.Course, session *model.Session) notify.Message {
	start := session.StartTime.In(s.loc)
	end := session.EndTime.In(s.loc)
	return notify.Message{
		Subject: fmt.Sprintf("Reminder: %s", course.Subject),
		Body: fmt.Sprintf("%s is scheduled for %s, %s - %s.",
			course.Subject, start.Format("Mon, Jan 2"), start.Format("3:04 PM"), end.Format("3:04 PM")),
	}
}
