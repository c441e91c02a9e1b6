package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository"
)

type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Account, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Account, error)
	ListByRole(ctx context.Context, role model.AccountRole) ([]*model.Account, error)
	SetTelegramID(ctx context.Context, accountID, telegramID int64) error
	AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error
}

type CategoryStore interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
}

type CourseStore interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
}

type SessionStore interface {
	CreateBatch(ctx context.Context, sessions []*model.Session) error
	Update(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*model.Session, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error)
	ListUpcomingForAccount(ctx context.Context, accountID int64, from time.Time, limit int) ([]*model.Session, error)
	MarkStudentReminderSent(ctx context.Context, id int64) error
	MarkInstructorReminderSent(ctx context.Context, id int64) error
}

type EnrollmentStore interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	Update(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id int64) (*model.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*model.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*model.Enrollment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*model.Enrollment, error)
}

type PriceRuleStore interface {
	Create(ctx context.Context, rule *model.PriceRule) error
	ExistsByKey(ctx context.Context, categoryID int64, level model.AcademicLevel, courseType model.CourseType) (bool, error)
	ListByKey(ctx context.Context, categoryID int64, level model.AcademicLevel, courseType model.CourseType) ([]*model.PriceRule, error)
	List(ctx context.Context) ([]*model.PriceRule, error)
}

type DiscountStore interface {
	Create(ctx context.Context, discount *model.Discount) error
	List(ctx context.Context) ([]*model.Discount, error)
	ListActiveByKind(ctx context.Context, kind model.DiscountKind) ([]*model.Discount, error)
}

type InvoiceStore interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	GetByID(ctx context.Context, id int64) (*model.Invoice, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error
	ListUnpaidWithoutReminder(ctx context.Context) ([]*model.Invoice, error)
	MarkReminderSent(ctx context.Context, id int64) error
	CreatePayment(ctx context.Context, payment *model.Payment) error
	SumSucceededPayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Stores набор хранилищ, с которыми работают сервисы
type Stores struct {
	Accounts      AccountStore
	Categories    CategoryStore
	Courses       CourseStore
	Sessions      SessionStore
	Enrollments   EnrollmentStore
	PriceRules    PriceRuleStore
	Discounts     DiscountStore
	Invoices      InvoiceStore
	Notifications NotificationStore
}

// Transactor выполняет fn атомарно, передавая хранилища, привязанные к транзакции
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, st Stores) error) error
}

// NewStores оборачивает репозитории PostgreSQL
func NewStores(repos *repository.Repositories) Stores {
	return Stores{
		Accounts:      repos.Accounts,
		Categories:    repos.Categories,
		Courses:       repos.Courses,
		Sessions:      repos.Sessions,
		Enrollments:   repos.Enrollments,
		PriceRules:    repos.PriceRules,
		Discounts:     repos.Discounts,
		Invoices:      repos.Invoices,
		Notifications: repos.Notifications,
	}
}

type pgTransactor struct {
	manager *repository.TxManager
}

// NewTransactor создаёт Transactor поверх менеджера транзакций PostgreSQL
func NewTransactor(manager *repository.TxManager) Transactor {
	return &pgTransactor{manager: manager}
}

func (t *pgTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, st Stores) error) error {
	return t.manager.WithTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return fn(ctx, NewStores(repos))
	})
}
