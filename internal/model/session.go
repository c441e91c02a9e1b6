package model

import "time"

// Session конкретное занятие курса. Время хранится в UTC
type Session struct {
	ID                     int64     `json:"id"`
	CourseID               int64     `json:"course_id"`
	StartTime              time.Time `json:"start_time"`
	EndTime                time.Time `json:"end_time"`
	IsConfirmed            bool      `json:"is_confirmed"`             // false - предварительное занятие за датой окончания курса
	StudentReminderSent    bool      `json:"student_reminder_sent"`    // напоминание родителям отправлено
	InstructorReminderSent bool      `json:"instructor_reminder_sent"` // напоминание преподавателю отправлено
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Course *Course `json:"course,omitempty"`
}
