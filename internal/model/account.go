package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountRole string

const (
	AccountRoleStudent    AccountRole = "student"
	AccountRoleParent     AccountRole = "parent"
	AccountRoleInstructor AccountRole = "instructor"
	AccountRoleAdmin      AccountRole = "admin"
)

// Account представляет пользователя системы: ученика, родителя, преподавателя или администратора
type Account struct {
	ID            int64           `json:"id"`
	Role          AccountRole     `json:"role"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	TelegramID    *int64          `json:"telegram_id"`    // nil - аккаунт не привязан к боту
	ParentID      *int64          `json:"parent_id"`      // только для учеников
	AcademicLevel AcademicLevel   `json:"academic_level"` // только для учеников
	Balance       decimal.Decimal `json:"balance"`        // положительный баланс - кредит родителя
	CreatedAt     time.Time       `json:"created_at"`
}

// FullName возвращает имя и фамилию
func (a *Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// IsParent проверяет является ли аккаунт родительским
func (a *Account) IsParent() bool {
	return a.Role == AccountRoleParent
}
