package model

import "time"

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusCanceled PaymentStatus = "canceled"
)

// Enrollment запись ученика на курс
type Enrollment struct {
	ID               int64         `json:"id"`
	StudentID        int64         `json:"student_id"`
	CourseID         int64         `json:"course_id"`
	SessionsConsumed int           `json:"sessions_consumed"`
	SessionsLeft     int           `json:"sessions_left"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
