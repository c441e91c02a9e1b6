package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

type EnrollmentService struct {
	stores Stores
	logger *zap.Logger
}

func NewEnrollmentService(stores Stores, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		stores: stores,
		logger: logger,
	}
}

// ConsumeSession отмечает посещённое занятие. Остаток занятий не уходит ниже нуля
func (s *EnrollmentService) ConsumeSession(ctx context.Context, enrollmentID int64) (*model.Enrollment, error) {
	enrollment, err := s.stores.Enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, notFound("enrollment", enrollmentID)
	}

	enrollment.SessionsConsumed++
	if enrollment.SessionsLeft > 0 {
		enrollment.SessionsLeft--
	}

	if err := s.stores.Enrollments.Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	s.logger.Info("Session consumed",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int("sessions_consumed", enrollment.SessionsConsumed),
		zap.Int("sessions_left", enrollment.SessionsLeft))

	return enrollment, nil
}

// ListCourseEnrollments записи учеников на курс
func (s *EnrollmentService) ListCourseEnrollments(ctx context.Context, courseID int64) ([]*model.Enrollment, error) {
	enrollments, err := s.stores.Enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
