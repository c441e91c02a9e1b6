package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CourseType string

const (
	CourseTypeTutoring   CourseType = "tutoring"
	CourseTypeSmallGroup CourseType = "small_group"
	CourseTypeClass      CourseType = "class"
)

// IsOpenEnded возвращает true для индивидуальных и мини-групповых занятий,
// расписание которых продлевается за дату окончания
func (t CourseType) IsOpenEnded() bool {
	return t == CourseTypeTutoring || t == CourseTypeSmallGroup
}

// Valid проверяет что тип курса известен
func (t CourseType) Valid() bool {
	switch t {
	case CourseTypeTutoring, CourseTypeSmallGroup, CourseTypeClass:
		return true
	}
	return false
}

type AcademicLevel string

const (
	AcademicLevelElementary  AcademicLevel = "elementary_lvl"
	AcademicLevelMiddle      AcademicLevel = "middle_lvl"
	AcademicLevelHigh        AcademicLevel = "high_lvl"
	AcademicLevelCollege     AcademicLevel = "college_lvl"
	AcademicLevelUnspecified AcademicLevel = ""
)

// Course представляет регулярное занятие (класс, мини-группа или индивидуальное)
type Course struct {
	ID            int64           `json:"id"`
	Subject       string          `json:"subject"`
	Description   string          `json:"description"`
	CategoryID    int64           `json:"category_id"`
	InstructorID  *int64          `json:"instructor_id"`
	Type          CourseType      `json:"course_type"`
	AcademicLevel AcademicLevel   `json:"academic_level"`
	StartDate     time.Time       `json:"start_date"` // только дата, полночь UTC
	EndDate       time.Time       `json:"end_date"`   // только дата, полночь UTC
	StartTime     ClockTime       `json:"start_time"`
	EndTime       ClockTime       `json:"end_time"`
	MaxCapacity   int             `json:"max_capacity"`
	HourlyTuition decimal.Decimal `json:"hourly_tuition"`
	TotalTuition  decimal.Decimal `json:"total_tuition"`
	IsConfirmed   bool            `json:"is_confirmed"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Weekday день недели занятий всегда берётся из даты начала
func (c *Course) Weekday() time.Weekday {
	return c.StartDate.Weekday()
}

// Category предметная категория (математика, английский и т.д.)
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
