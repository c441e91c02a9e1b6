package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// SessionInput новое время отдельного занятия
type SessionInput struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type SessionService struct {
	stores Stores
	now    func() time.Time
	logger *zap.Logger
}

func NewSessionService(stores Stores, logger *zap.Logger) *SessionService {
	return &SessionService{
		stores: stores,
		now:    time.Now,
		logger: logger,
	}
}

// UpdateSession переносит одно занятие, не затрагивая остальные занятия курса
func (s *SessionService) UpdateSession(ctx context.Context, id int64, in *SessionInput) (*model.Session, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, validationErrorf("End time must be after start time")
	}

	session, err := s.stores.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, notFound("session", id)
	}

	session.StartTime = in.StartTime.UTC()
	session.EndTime = in.EndTime.UTC()

	if err := s.stores.Sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info("Session moved",
		zap.Int64("session_id", session.ID),
		zap.Int64("course_id", session.CourseID),
		zap.Time("start_time", session.StartTime))

	return session, nil
}

// ListCourseSessions все занятия курса по времени начала
func (s *SessionService) ListCourseSessions(ctx context.Context, courseID int64) ([]*model.Session, error) {
	course, err := s.stores.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, notFound("course", courseID)
	}

	sessions, err := s.stores.Sessions.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}

	return sessions, nil
}

// UpcomingForAccount ближайшие занятия аккаунта с заполненным Course
func (s *SessionService) UpcomingForAccount(ctx context.Context, accountID int64, limit int) ([]*model.Session, error) {
	sessions, err := s.stores.Sessions.ListUpcomingForAccount(ctx, accountID, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	courseIDs := lo.Uniq(lo.Map(sessions, func(ss *model.Session, _ int) int64 { return ss.CourseID }))
	courses, err := s.stores.Courses.GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("get courses: %w", err)
	}

	byID := lo.KeyBy(courses, func(c *model.Course) int64 { return c.ID })
	for _, session := range sessions {
		session.Course = byID[session.CourseID]
	}

	return sessions, nil
}
