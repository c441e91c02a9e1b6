package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash                    PaymentMethod = "cash"
	PaymentMethodCheck                   PaymentMethod = "check"
	PaymentMethodCreditCard              PaymentMethod = "credit_card"
	PaymentMethodInternationalCreditCard PaymentMethod = "intl_credit_card"
)

// Invoice счёт родителя, агрегирующий регистрации на курсы
type Invoice struct {
	ID                  int64           `json:"id"`
	ParentID            int64           `json:"parent_id"`
	PaymentMethod       PaymentMethod   `json:"method"`
	SubTotal            decimal.Decimal `json:"sub_total"`
	DiscountTotal       decimal.Decimal `json:"discount_total"`
	PriceAdjustment     decimal.Decimal `json:"price_adjustment"`
	AccountBalance      decimal.Decimal `json:"account_balance"`
	Total               decimal.Decimal `json:"total"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	PaymentReminderSent bool            `json:"payment_reminder_sent"`
	CreatedAt           time.Time       `json:"created_at"`
	Registrations       []*Registration `json:"registrations,omitempty"`
}

// Registration строка счёта: запись ученика с количеством оплаченных занятий
type Registration struct {
	ID           int64           `json:"id"`
	InvoiceID    int64           `json:"invoice_id"`
	EnrollmentID int64           `json:"enrollment_id"`
	NumSessions  int             `json:"num_sessions"`
	Price        decimal.Decimal `json:"price"`
}

type PaymentRecordStatus string

const (
	PaymentRecordSucceeded PaymentRecordStatus = "succeeded"
	PaymentRecordFailed    PaymentRecordStatus = "failed"
)

// Payment платёж по счёту
type Payment struct {
	ID        int64               `json:"id"`
	InvoiceID int64               `json:"invoice_id"`
	Amount    decimal.Decimal     `json:"amount"`
	Method    PaymentMethod       `json:"method"`
	Status    PaymentRecordStatus `json:"status"`
	Note      string              `json:"note"`
	CreatedAt time.Time           `json:"created_at"`
}
