package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(db base.DBTX) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(db)}
}

const sessionColumns = `id, course_id, start_time, end_time, is_confirmed, student_reminder_sent, instructor_reminder_sent, created_at, updated_at`

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.CourseID,
		&session.StartTime,
		&session.EndTime,
		&session.IsConfirmed,
		&session.StudentReminderSent,
		&session.InstructorReminderSent,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.StartTime = session.StartTime.UTC()
	session.EndTime = session.EndTime.UTC()
	return &session, nil
}

// Create создаёт занятие
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (course_id, start_time, end_time, is_confirmed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		session.CourseID,
		session.StartTime,
		session.EndTime,
		session.IsConfirmed,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// CreateBatch создаёт занятия по одному. Вызывается внутри транзакции
func (r *SessionRepository) CreateBatch(ctx context.Context, sessions []*model.Session) error {
	for _, session := range sessions {
		if err := r.Create(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// Update обновляет время и подтверждение занятия
func (r *SessionRepository) Update(ctx context.Context, session *model.Session) error {
	query := `
		UPDATE sessions
		SET start_time = $2, end_time = $3, is_confirmed = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.DB().QueryRow(ctx, query, session.ID, session.StartTime, session.EndTime, session.IsConfirmed).
		Scan(&session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// Delete удаляет занятие
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ExecOne(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// GetByID получает занятие по ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// ListByCourse получает все занятия курса в хронологическом порядке
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE course_id = $1 ORDER BY start_time, id`
	return r.list(ctx, "list sessions by course", query, courseID)
}

// ListStartingBetween получает занятия, начинающиеся в (from, to], по которым
// ещё не отправлено хотя бы одно напоминание
func (r *SessionRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE start_time > $1 AND start_time <= $2
		  AND (NOT student_reminder_sent OR NOT instructor_reminder_sent)
		ORDER BY start_time, id
	`
	return r.list(ctx, "list sessions starting between", query, from, to)
}

// ListUpcomingForAccount получает ближайшие занятия курсов, на которые записан
// аккаунт (ученик, дети родителя или курсы преподавателя)
func (r *SessionRepository) ListUpcomingForAccount(ctx context.Context, accountID int64, from time.Time, limit int) ([]*model.Session, error) {
	query := `
		SELECT s.id, s.course_id, s.start_time, s.end_time, s.is_confirmed,
			s.student_reminder_sent, s.instructor_reminder_sent, s.created_at, s.updated_at
		FROM sessions s
		JOIN courses c ON c.id = s.course_id
		WHERE s.start_time >= $2
		  AND (
			c.instructor_id = $1
			OR EXISTS (
				SELECT 1 FROM enrollments e
				JOIN accounts a ON a.id = e.student_id
				WHERE e.course_id = c.id AND (a.id = $1 OR a.parent_id = $1)
			)
		  )
		ORDER BY s.start_time, s.id
		LIMIT $3
	`
	return r.list(ctx, "list upcoming sessions for account", query, accountID, from, limit)
}

// MarkStudentReminderSent отмечает отправку напоминания ученикам
func (r *SessionRepository) MarkStudentReminderSent(ctx context.Context, id int64) error {
	query := `UPDATE sessions SET student_reminder_sent = true, updated_at = now() WHERE id = $1`
	if _, err := r.DB().Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark student reminder sent: %w", err)
	}
	return nil
}

// MarkInstructorReminderSent отмечает отправку напоминания преподавателю
func (r *SessionRepository) MarkInstructorReminderSent(ctx context.Context, id int64) error {
	query := `UPDATE sessions SET instructor_reminder_sent = true, updated_at = now() WHERE id = $1`
	if _, err := r.DB().Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark instructor reminder sent: %w", err)
	}
	return nil
}

func (r *SessionRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Session, error) {
	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sessions, nil
}
