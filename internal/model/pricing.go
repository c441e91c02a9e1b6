package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRule почасовая ставка для ключа (категория, уровень, тип курса)
type PriceRule struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	CategoryID    int64           `json:"category_id"`
	AcademicLevel AcademicLevel   `json:"academic_level"`
	CourseType    CourseType      `json:"course_type"`
	HourlyTuition decimal.Decimal `json:"hourly_tuition"`
	CreatedAt     time.Time       `json:"created_at"`
}

type AmountType string

const (
	AmountTypePercent AmountType = "percent"
	AmountTypeFixed   AmountType = "fixed"
)

type DiscountKind string

const (
	DiscountKindMultiCourse   DiscountKind = "multi_course"
	DiscountKindDateRange     DiscountKind = "date_range"
	DiscountKindPaymentMethod DiscountKind = "payment_method"
	DiscountKindSibling       DiscountKind = "sibling"
)

// Discount скидка. Поля, специфичные для вида скидки, заполнены только для соответствующего Kind
type Discount struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Kind        DiscountKind    `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	AmountType  AmountType      `json:"amount_type"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`

	NumSessions   int           `json:"num_sessions,omitempty"`   // multi_course
	StartDate     *time.Time    `json:"start_date,omitempty"`     // date_range
	EndDate       *time.Time    `json:"end_date,omitempty"`       // date_range
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"` // payment_method
}

// Apply возвращает размер скидки для указанной базы
func (d *Discount) Apply(base decimal.Decimal) decimal.Decimal {
	if d.AmountType == AmountTypePercent {
		return base.Mul(d.Amount).Div(decimal.NewFromInt(100))
	}
	return d.Amount
}
