package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/recurrence"
	"github.com/Freeeeeet/tutoring_admin/internal/search"
)

const dateLayout = "2006-01-02"

// CourseInput данные для создания (ID == 0) или обновления курса.
// Даты в формате 2006-01-02, время в формате 15:04 (часовой пояс бизнеса)
type CourseInput struct {
	ID            int64               `json:"id"`
	Subject       string              `json:"subject" validate:"required"`
	Description   string              `json:"description"`
	CategoryID    int64               `json:"category_id" validate:"required"`
	InstructorID  *int64              `json:"instructor_id"`
	Type          model.CourseType    `json:"course_type" validate:"required,oneof=tutoring small_group class"`
	AcademicLevel model.AcademicLevel `json:"academic_level" validate:"omitempty,oneof=elementary_lvl middle_lvl high_lvl college_lvl"`
	StartDate     string              `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string              `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime     string              `json:"start_time" validate:"required"`
	EndTime       string              `json:"end_time" validate:"required"`
	MaxCapacity   int                 `json:"max_capacity" validate:"gte=0"`
	HourlyTuition decimal.Decimal     `json:"hourly_tuition"`
	TotalTuition  decimal.Decimal     `json:"total_tuition"`
	IsConfirmed   bool                `json:"is_confirmed"`
}

// CourseResult сохранённый курс и изменения его расписания
type CourseResult struct {
	Course          *model.Course `json:"course"`
	SessionsCreated int           `json:"sessions_created"`
	SessionsUpdated int           `json:"sessions_updated"`
	SessionsDeleted int           `json:"sessions_deleted"`
}

type CourseService struct {
	stores Stores
	tx     Transactor
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewCourseService(stores Stores, tx Transactor, loc *time.Location, logger *zap.Logger) *CourseService {
	return &CourseService{
		stores: stores,
		tx:     tx,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// SaveCourse создаёт курс вместе с расписанием или обновляет курс и
// перестраивает будущие занятия. Все записи выполняются в одной транзакции
func (s *CourseService) SaveCourse(ctx context.Context, in *CourseInput) (*CourseResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	fields, err := parseCourseInput(in)
	if err != nil {
		return nil, err
	}

	result := &CourseResult{}
	err = s.tx.WithTx(ctx, func(ctx context.Context, st Stores) error {
		if err := s.checkReferences(ctx, st, in); err != nil {
			return err
		}
		if in.ID == 0 {
			return s.create(ctx, st, fields, result)
		}
		return s.update(ctx, st, in.ID, fields, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course saved",
		zap.Int64("course_id", result.Course.ID),
		zap.String("course_type", string(result.Course.Type)),
		zap.Bool("created", in.ID == 0),
		zap.Int("sessions_created", result.SessionsCreated),
		zap.Int("sessions_updated", result.SessionsUpdated),
		zap.Int("sessions_deleted", result.SessionsDeleted))

	return result, nil
}

func (s *CourseService) create(ctx context.Context, st Stores, course *model.Course, result *CourseResult) error {
	sessions, err := recurrence.Generate(course, s.loc)
	if err != nil {
		return scheduleError(err)
	}

	course.TotalTuition = totalTuition(course, countConfirmed(sessions))

	if err := st.Courses.Create(ctx, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	for _, session := range sessions {
		session.CourseID = course.ID
	}
	if err := st.Sessions.CreateBatch(ctx, sessions); err != nil {
		return fmt.Errorf("create sessions: %w", err)
	}

	result.Course = course
	result.SessionsCreated = len(sessions)
	return nil
}

func (s *CourseService) update(ctx context.Context, st Stores, id int64, fields *model.Course, result *CourseResult) error {
	course, err := st.Courses.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return notFound("course", id)
	}

	applyCourseFields(course, fields)

	existing, err := st.Sessions.ListByCourse(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	plan, err := recurrence.Reschedule(course, existing, s.now(), s.loc)
	if err != nil {
		return scheduleError(err)
	}

	for _, sessionID := range plan.Deleted {
		if err := st.Sessions.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete session %d: %w", sessionID, err)
		}
	}

	for _, session := range plan.Updated {
		if err := st.Sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("update session %d: %w", session.ID, err)
		}
	}

	for _, session := range plan.Created {
		session.CourseID = course.ID
	}
	if err := st.Sessions.CreateBatch(ctx, plan.Created); err != nil {
		return fmt.Errorf("create sessions: %w", err)
	}

	course.TotalTuition = totalTuition(course, countConfirmedAfterPlan(existing, plan))

	if err := st.Courses.Update(ctx, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	result.Course = course
	result.SessionsCreated = len(plan.Created)
	result.SessionsUpdated = len(plan.Updated)
	result.SessionsDeleted = len(plan.Deleted)
	return nil
}

func (s *CourseService) checkReferences(ctx context.Context, st Stores, in *CourseInput) error {
	category, err := st.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return validationErrorf("Category %d does not exist", in.CategoryID)
	}

	if in.InstructorID != nil {
		instructor, err := st.Accounts.GetByID(ctx, *in.InstructorID)
		if err != nil {
			return fmt.Errorf("get instructor: %w", err)
		}
		if instructor == nil || instructor.Role != model.AccountRoleInstructor {
			return validationErrorf("Instructor %d does not exist", *in.InstructorID)
		}
	}

	return nil
}

// GetCourse получает курс по ID
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.stores.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, notFound("course", id)
	}
	return course, nil
}

var courseSortKeys = map[string]func(*model.Course) string{
	"subject":    func(c *model.Course) string { return c.Subject },
	"start_date": func(c *model.Course) string { return c.StartDate.Format(dateLayout) },
	"end_date":   func(c *model.Course) string { return c.EndDate.Format(dateLayout) },
	"created_at": func(c *model.Course) string { return c.CreatedAt.UTC().Format(time.RFC3339Nano) },
}

var courseSearchFields = []search.Field[*model.Course]{
	search.Substring(func(c *model.Course) string { return c.Subject }),
	search.Substring(func(c *model.Course) string { return c.Description }),
	search.Exact(func(c *model.Course) string { return string(c.Type) }),
	search.Exact(func(c *model.Course) string { return string(c.AcademicLevel) }),
}

// ListCourses список курсов с поиском, сортировкой и пагинацией
func (s *CourseService) ListCourses(ctx context.Context, params ListParams) (Page[*model.Course], error) {
	courses, err := s.stores.Courses.List(ctx)
	if err != nil {
		return Page[*model.Course]{}, fmt.Errorf("list courses: %w", err)
	}

	return listPage(courses, params, courseSearchFields, courseSortKeys, "start_date"), nil
}

func parseCourseInput(in *CourseInput) (*model.Course, error) {
	startDate, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return nil, validationErrorf("Invalid start date %q", in.StartDate)
	}
	endDate, err := time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return nil, validationErrorf("Invalid end date %q", in.EndDate)
	}
	startTime, err := model.ParseClock(in.StartTime)
	if err != nil {
		return nil, validationErrorf("Invalid start time %q", in.StartTime)
	}
	endTime, err := model.ParseClock(in.EndTime)
	if err != nil {
		return nil, validationErrorf("Invalid end time %q", in.EndTime)
	}

	return &model.Course{
		Subject:       strings.TrimSpace(in.Subject),
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		InstructorID:  in.InstructorID,
		Type:          in.Type,
		AcademicLevel: in.AcademicLevel,
		StartDate:     startDate,
		EndDate:       endDate,
		StartTime:     startTime,
		EndTime:       endTime,
		MaxCapacity:   in.MaxCapacity,
		HourlyTuition: in.HourlyTuition,
		TotalTuition:  in.TotalTuition,
		IsConfirmed:   in.IsConfirmed,
	}, nil
}

func applyCourseFields(course, fields *model.Course) {
	course.Subject = fields.Subject
	course.Description = fields.Description
	course.CategoryID = fields.CategoryID
	course.InstructorID = fields.InstructorID
	course.Type = fields.Type
	course.AcademicLevel = fields.AcademicLevel
	course.StartDate = fields.StartDate
	course.EndDate = fields.EndDate
	course.StartTime = fields.StartTime
	course.EndTime = fields.EndTime
	course.MaxCapacity = fields.MaxCapacity
	course.HourlyTuition = fields.HourlyTuition
	course.TotalTuition = fields.TotalTuition
	course.IsConfirmed = fields.IsConfirmed
}

// totalTuition для классов стоимость всего курса пересчитывается по
// подтверждённым занятиям, для остальных типов берётся из запроса
func totalTuition(course *model.Course, confirmed int) decimal.Decimal {
	if course.Type != model.CourseTypeClass {
		return course.TotalTuition
	}
	return course.HourlyTuition.Mul(decimal.NewFromInt(int64(confirmed)))
}

func countConfirmed(sessions []*model.Session) int {
	count := 0
	for _, session := range sessions {
		if session.IsConfirmed {
			count++
		}
	}
	return count
}

func countConfirmedAfterPlan(existing []*model.Session, plan *recurrence.Plan) int {
	confirmed := make(map[int64]bool, len(existing))
	for _, session := range existing {
		confirmed[session.ID] = session.IsConfirmed
	}
	for _, session := range plan.Updated {
		confirmed[session.ID] = session.IsConfirmed
	}
	for _, sessionID := range plan.Deleted {
		delete(confirmed, sessionID)
	}

	count := countConfirmed(plan.Created)
	for _, ok := range confirmed {
		if ok {
			count++
		}
	}
	return count
}

func scheduleError(err error) error {
	if errors.Is(err, recurrence.ErrInvalidTimeRange) {
		return validationErrorf("End time must be after start time")
	}
	return fmt.Errorf("build schedule: %w", err)
}
