package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type CourseRepository struct {
	db base.DBTX
}

func NewCourseRepository(db base.DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, subject, description, category_id, instructor_id, course_type, academic_level,
	start_date, end_date, start_time, end_time, max_capacity, hourly_tuition, total_tuition, is_confirmed,
	created_at, updated_at`

func scanCourse(row pgx.Row) (*model.Course, error) {
	var course model.Course
	var startTime, endTime pgtype.Time
	err := row.Scan(
		&course.ID,
		&course.Subject,
		&course.Description,
		&course.CategoryID,
		&course.InstructorID,
		&course.Type,
		&course.AcademicLevel,
		&course.StartDate,
		&course.EndDate,
		&startTime,
		&endTime,
		&course.MaxCapacity,
		&course.HourlyTuition,
		&course.TotalTuition,
		&course.IsConfirmed,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	course.StartTime = base.ClockFromPG(startTime)
	course.EndTime = base.ClockFromPG(endTime)
	return &course, nil
}

// Create создаёт новый курс
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (subject, description, category_id, instructor_id, course_type, academic_level,
			start_date, end_date, start_time, end_time, max_capacity, hourly_tuition, total_tuition, is_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		course.Subject,
		course.Description,
		course.CategoryID,
		course.InstructorID,
		course.Type,
		course.AcademicLevel,
		course.StartDate,
		course.EndDate,
		base.ClockToPG(course.StartTime),
		base.ClockToPG(course.EndTime),
		course.MaxCapacity,
		course.HourlyTuition,
		course.TotalTuition,
		course.IsConfirmed,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// Update обновляет курс
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET subject = $2, description = $3, category_id = $4, instructor_id = $5, course_type = $6,
			academic_level = $7, start_date = $8, end_date = $9, start_time = $10, end_time = $11,
			max_capacity = $12, hourly_tuition = $13, total_tuition = $14, is_confirmed = $15, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		course.ID,
		course.Subject,
		course.Description,
		course.CategoryID,
		course.InstructorID,
		course.Type,
		course.AcademicLevel,
		course.StartDate,
		course.EndDate,
		base.ClockToPG(course.StartTime),
		base.ClockToPG(course.EndTime),
		course.MaxCapacity,
		course.HourlyTuition,
		course.TotalTuition,
		course.IsConfirmed,
	).Scan(&course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return course, nil
}

// GetByIDs получает курсы по списку ID
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1) ORDER BY id`
	return r.list(ctx, "get courses by ids", query, ids)
}

// List получает все курсы
func (r *CourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY start_date DESC, id`
	return r.list(ctx, "list courses", query)
}

func (r *CourseRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return courses, nil
}
