package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type EnrollmentRepository struct {
	db base.DBTX
}

func NewEnrollmentRepository(db base.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, course_id, sessions_consumed, sessions_left, payment_status, created_at, updated_at`

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.SessionsConsumed,
		&enrollment.SessionsLeft,
		&enrollment.PaymentStatus,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create создаёт запись на курс
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, course_id, sessions_consumed, sessions_left, payment_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.SessionsConsumed,
		enrollment.SessionsLeft,
		enrollment.PaymentStatus,
	).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

// Update сохраняет счётчики занятий и статус оплаты
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *model.Enrollment) error {
	query := `
		UPDATE enrollments
		SET sessions_consumed = $2, sessions_left = $3, payment_status = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		enrollment.ID,
		enrollment.SessionsConsumed,
		enrollment.SessionsLeft,
		enrollment.PaymentStatus,
	).Scan(&enrollment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	enrollment, err := scanEnrollment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment by id: %w", err)
	}

	return enrollment, nil
}

// GetByStudentAndCourse получает запись ученика на конкретный курс
func (r *EnrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 AND course_id = $2`

	enrollment, err := scanEnrollment(r.db.QueryRow(ctx, query, studentID, courseID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment by student and course: %w", err)
	}

	return enrollment, nil
}

// ListByCourse получает все записи на курс
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = $1 ORDER BY id`
	return r.list(ctx, "list enrollments by course", query, courseID)
}

// ListByInvoice получает записи, оплачиваемые счётом
func (r *EnrollmentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]*model.Enrollment, error) {
	query := `
		SELECT e.id, e.student_id, e.course_id, e.sessions_consumed, e.sessions_left, e.payment_status, e.created_at, e.updated_at
		FROM enrollments e
		JOIN registrations r ON r.enrollment_id = e.id
		WHERE r.invoice_id = $1
		ORDER BY e.id
	`
	return r.list(ctx, "list enrollments by invoice", query, invoiceID)
}

func (r *EnrollmentRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Enrollment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var enrollments []*model.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return enrollments, nil
}
