package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

// Repositories набор репозиториев, работающих поверх одного соединения
type Repositories struct {
	Accounts      *AccountRepository
	Categories    *CategoryRepository
	Courses       *CourseRepository
	Sessions      *SessionRepository
	Enrollments   *EnrollmentRepository
	PriceRules    *PriceRuleRepository
	Discounts     *DiscountRepository
	Invoices      *InvoiceRepository
	Notifications *NotificationRepository
}

// NewRepositories создаёт все репозитории поверх db (пул или транзакция)
func NewRepositories(db base.DBTX) *Repositories {
	return &Repositories{
		Accounts:      NewAccountRepository(db),
		Categories:    NewCategoryRepository(db),
		Courses:       NewCourseRepository(db),
		Sessions:      NewSessionRepository(db),
		Enrollments:   NewEnrollmentRepository(db),
		PriceRules:    NewPriceRuleRepository(db),
		Discounts:     NewDiscountRepository(db),
		Invoices:      NewInvoiceRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// TxManager выполняет функцию в транзакции: либо коммитятся все записи, либо ни одной
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithTx открывает транзакцию и передаёт в fn репозитории, привязанные к ней.
// Ошибка из fn откатывает транзакцию
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	err := pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}
