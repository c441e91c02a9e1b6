package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// memDB хранилище в памяти для тестов сервисов
type memDB struct {
	nextID        int64
	accounts      map[int64]*model.Account
	categories    map[int64]*model.Category
	courses       map[int64]*model.Course
	sessions      map[int64]*model.Session
	enrollments   map[int64]*model.Enrollment
	priceRules    map[int64]*model.PriceRule
	discounts     map[int64]*model.Discount
	invoices      map[int64]*model.Invoice
	payments      map[int64]*model.Payment
	notifications []*model.Notification
	txCount       int
}

func newMemDB() *memDB {
	return &memDB{
		accounts:    make(map[int64]*model.Account),
		categories:  make(map[int64]*model.Category),
		courses:     make(map[int64]*model.Course),
		sessions:    make(map[int64]*model.Session),
		enrollments: make(map[int64]*model.Enrollment),
		priceRules:  make(map[int64]*model.PriceRule),
		discounts:   make(map[int64]*model.Discount),
		invoices:    make(map[int64]*model.Invoice),
		payments:    make(map[int64]*model.Payment),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) stores() Stores {
	return Stores{
		Accounts:      memAccounts{db},
		Categories:    memCategories{db},
		Courses:       memCourses{db},
		Sessions:      memSessions{db},
		Enrollments:   memEnrollments{db},
		PriceRules:    memPriceRules{db},
		Discounts:     memDiscounts{db},
		Invoices:      memInvoices{db},
		Notifications: memNotifications{db},
	}
}

func (db *memDB) WithTx(ctx context.Context, fn func(ctx context.Context, st Stores) error) error {
	db.txCount++
	return fn(ctx, db.stores())
}

func sortedByID[T any](m map[int64]*T) []*T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

type memAccounts struct{ db *memDB }

func (s memAccounts) Create(_ context.Context, a *model.Account) error {
	a.ID = s.db.id()
	a.CreatedAt = time.Now()
	s.db.accounts[a.ID] = clone(a)
	return nil
}

func (s memAccounts) Update(_ context.Context, a *model.Account) error {
	if _, ok := s.db.accounts[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.db.accounts[a.ID] = clone(a)
	return nil
}

func (s memAccounts) GetByID(_ context.Context, id int64) (*model.Account, error) {
	if a, ok := s.db.accounts[id]; ok {
		return clone(a), nil
	}
	return nil, nil
}

func (s memAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range sortedByID(s.db.accounts) {
		if a.Email != "" && strings.EqualFold(a.Email, email) {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (s memAccounts) GetByTelegramID(_ context.Context, telegramID int64) (*model.Account, error) {
	for _, a := range sortedByID(s.db.accounts) {
		if a.TelegramID != nil && *a.TelegramID == telegramID {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (s memAccounts) GetByIDs(_ context.Context, ids []int64) ([]*model.Account, error) {
	var out []*model.Account
	for _, a := range sortedByID(s.db.accounts) {
		for _, id := range ids {
			if a.ID == id {
				out = append(out, clone(a))
				break
			}
		}
	}
	return out, nil
}

func (s memAccounts) ListByRole(_ context.Context, role model.AccountRole) ([]*model.Account, error) {
	var out []*model.Account
	for _, a := range sortedByID(s.db.accounts) {
		if a.Role == role {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (s memAccounts) SetTelegramID(_ context.Context, accountID, telegramID int64) error {
	a, ok := s.db.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.TelegramID = &telegramID
	return nil
}

func (s memAccounts) AdjustBalance(_ context.Context, accountID int64, delta decimal.Decimal) error {
	a, ok := s.db.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

type memCategories struct{ db *memDB }

func (s memCategories) Create(_ context.Context, c *model.Category) error {
	c.ID = s.db.id()
	s.db.categories[c.ID] = clone(c)
	return nil
}

func (s memCategories) GetByID(_ context.Context, id int64) (*model.Category, error) {
	if c, ok := s.db.categories[id]; ok {
		return clone(c), nil
	}
	return nil, nil
}

type memCourses struct{ db *memDB }

func (s memCourses) Create(_ context.Context, c *model.Course) error {
	c.ID = s.db.id()
	s.db.courses[c.ID] = clone(c)
	return nil
}

func (s memCourses) Update(_ context.Context, c *model.Course) error {
	if _, ok := s.db.courses[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.db.courses[c.ID] = clone(c)
	return nil
}

func (s memCourses) GetByID(_ context.Context, id int64) (*model.Course, error) {
	if c, ok := s.db.courses[id]; ok {
		return clone(c), nil
	}
	return nil, nil
}

func (s memCourses) GetByIDs(_ context.Context, ids []int64) ([]*model.Course, error) {
	var out []*model.Course
	for _, id := range ids {
		if c, ok := s.db.courses[id]; ok {
			out = append(out, clone(c))
		}
	}
	return out, nil
}

func (s memCourses) List(_ context.Context) ([]*model.Course, error) {
	var out []*model.Course
	for _, c := range sortedByID(s.db.courses) {
		out = append(out, clone(c))
	}
	return out, nil
}

type memSessions struct{ db *memDB }

func (s memSessions) CreateBatch(_ context.Context, sessions []*model.Session) error {
	for _, ss := range sessions {
		ss.ID = s.db.id()
		s.db.sessions[ss.ID] = clone(ss)
	}
	return nil
}

func (s memSessions) Update(_ context.Context, ss *model.Session) error {
	if _, ok := s.db.sessions[ss.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.db.sessions[ss.ID] = clone(ss)
	return nil
}

func (s memSessions) Delete(_ context.Context, id int64) error {
	if _, ok := s.db.sessions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.db.sessions, id)
	return nil
}

func (s memSessions) GetByID(_ context.Context, id int64) (*model.Session, error) {
	if ss, ok := s.db.sessions[id]; ok {
		return clone(ss), nil
	}
	return nil, nil
}

func (s memSessions) filter(keep func(*model.Session) bool) []*model.Session {
	var out []*model.Session
	for _, ss := range sortedByID(s.db.sessions) {
		if keep(ss) {
			out = append(out, clone(ss))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s memSessions) ListByCourse(_ context.Context, courseID int64) ([]*model.Session, error) {
	return s.filter(func(ss *model.Session) bool { return ss.CourseID == courseID }), nil
}

func (s memSessions) ListStartingBetween(_ context.Context, from, to time.Time) ([]*model.Session, error) {
	return s.filter(func(ss *model.Session) bool {
		return ss.StartTime.After(from) && !ss.StartTime.After(to) &&
			(!ss.StudentReminderSent || !ss.InstructorReminderSent)
	}), nil
}

func (s memSessions) ListUpcomingForAccount(_ context.Context, accountID int64, from time.Time, limit int) ([]*model.Session, error) {
	out := s.filter(func(ss *model.Session) bool {
		if ss.StartTime.Before(from) {
			return false
		}
		course := s.db.courses[ss.CourseID]
		if course.InstructorID != nil && *course.InstructorID == accountID {
			return true
		}
		for _, e := range s.db.enrollments {
			if e.CourseID != course.ID {
				continue
			}
			student := s.db.accounts[e.StudentID]
			if student.ID == accountID || (student.ParentID != nil && *student.ParentID == accountID) {
				return true
			}
		}
		return false
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s memSessions) MarkStudentReminderSent(_ context.Context, id int64) error {
	s.db.sessions[id].StudentReminderSent = true
	return nil
}

func (s memSessions) MarkInstructorReminderSent(_ context.Context, id int64) error {
	s.db.sessions[id].InstructorReminderSent = true
	return nil
}

type memEnrollments struct{ db *memDB }

func (s memEnrollments) Create(_ context.Context, e *model.Enrollment) error {
	e.ID = s.db.id()
	s.db.enrollments[e.ID] = clone(e)
	return nil
}

func (s memEnrollments) Update(_ context.Context, e *model.Enrollment) error {
	if _, ok := s.db.enrollments[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.db.enrollments[e.ID] = clone(e)
	return nil
}

func (s memEnrollments) GetByID(_ context.Context, id int64) (*model.Enrollment, error) {
	if e, ok := s.db.enrollments[id]; ok {
		return clone(e), nil
	}
	return nil, nil
}

func (s memEnrollments) GetByStudentAndCourse(_ context.Context, studentID, courseID int64) (*model.Enrollment, error) {
	for _, e := range sortedByID(s.db.enrollments) {
		if e.StudentID == studentID && e.CourseID == courseID {
			return clone(e), nil
		}
	}
	return nil, nil
}

func (s memEnrollments) ListByCourse(_ context.Context, courseID int64) ([]*model.Enrollment, error) {
	var out []*model.Enrollment
	for _, e := range sortedByID(s.db.enrollments) {
		if e.CourseID == courseID {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

func (s memEnrollments) ListByInvoice(_ context.Context, invoiceID int64) ([]*model.Enrollment, error) {
	invoice, ok := s.db.invoices[invoiceID]
	if !ok {
		return nil, nil
	}
	var out []*model.Enrollment
	for _, reg := range invoice.Registrations {
		out = append(out, clone(s.db.enrollments[reg.EnrollmentID]))
	}
	return out, nil
}

type memPriceRules struct{ db *memDB }

func (s memPriceRules) Create(_ context.Context, r *model.PriceRule) error {
	r.ID = s.db.id()
	s.db.priceRules[r.ID] = clone(r)
	return nil
}

func (s memPriceRules) ListByKey(_ context.Context, categoryID int64, level model.AcademicLevel, courseType model.CourseType) ([]*model.PriceRule, error) {
	var out []*model.PriceRule
	for _, r := range sortedByID(s.db.priceRules) {
		if r.CategoryID == categoryID && r.AcademicLevel == level && r.CourseType == courseType {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (s memPriceRules) ExistsByKey(ctx context.Context, categoryID int64, level model.AcademicLevel, courseType model.CourseType) (bool, error) {
	rules, _ := s.ListByKey(ctx, categoryID, level, courseType)
	return len(rules) > 0, nil
}

func (s memPriceRules) List(_ context.Context) ([]*model.PriceRule, error) {
	var out []*model.PriceRule
	for _, r := range sortedByID(s.db.priceRules) {
		out = append(out, clone(r))
	}
	return out, nil
}

type memDiscounts struct{ db *memDB }

func (s memDiscounts) Create(_ context.Context, d *model.Discount) error {
	d.ID = s.db.id()
	s.db.discounts[d.ID] = clone(d)
	return nil
}

func (s memDiscounts) List(_ context.Context) ([]*model.Discount, error) {
	var out []*model.Discount
	for _, d := range sortedByID(s.db.discounts) {
		out = append(out, clone(d))
	}
	return out, nil
}

func (s memDiscounts) ListActiveByKind(_ context.Context, kind model.DiscountKind) ([]*model.Discount, error) {
	var out []*model.Discount
	for _, d := range sortedByID(s.db.discounts) {
		if d.IsActive && d.Kind == kind {
			out = append(out, clone(d))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NumSessions > out[j].NumSessions })
	return out, nil
}

type memInvoices struct{ db *memDB }

func (s memInvoices) Create(_ context.Context, inv *model.Invoice) error {
	inv.ID = s.db.id()
	inv.CreatedAt = time.Now()
	for _, reg := range inv.Registrations {
		reg.ID = s.db.id()
		reg.InvoiceID = inv.ID
	}
	s.db.invoices[inv.ID] = clone(inv)
	return nil
}

func (s memInvoices) GetByID(_ context.Context, id int64) (*model.Invoice, error) {
	if inv, ok := s.db.invoices[id]; ok {
		return clone(inv), nil
	}
	return nil, nil
}

func (s memInvoices) UpdatePaymentStatus(_ context.Context, id int64, status model.PaymentStatus) error {
	inv, ok := s.db.invoices[id]
	if !ok {
		return pgx.ErrNoRows
	}
	inv.PaymentStatus = status
	return nil
}

func (s memInvoices) ListUnpaidWithoutReminder(_ context.Context) ([]*model.Invoice, error) {
	var out []*model.Invoice
	for _, inv := range sortedByID(s.db.invoices) {
		unpaid := inv.PaymentStatus == model.PaymentStatusUnpaid || inv.PaymentStatus == model.PaymentStatusPartial
		if unpaid && !inv.PaymentReminderSent {
			out = append(out, clone(inv))
		}
	}
	return out, nil
}

func (s memInvoices) MarkReminderSent(_ context.Context, id int64) error {
	s.db.invoices[id].PaymentReminderSent = true
	return nil
}

func (s memInvoices) CreatePayment(_ context.Context, p *model.Payment) error {
	p.ID = s.db.id()
	s.db.payments[p.ID] = clone(p)
	return nil
}

func (s memInvoices) SumSucceededPayments(_ context.Context, invoiceID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range s.db.payments {
		if p.InvoiceID == invoiceID && p.Status == model.PaymentRecordSucceeded {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type memNotifications struct{ db *memDB }

func (s memNotifications) Create(_ context.Context, n *model.Notification) error {
	n.ID = s.db.id()
	s.db.notifications = append(s.db.notifications, clone(n))
	return nil
}

// helpers

func (db *memDB) addAccount(a *model.Account) *model.Account {
	a.ID = db.id()
	db.accounts[a.ID] = a
	return a
}

func (db *memDB) addParent(first, email string, balance int64) *model.Account {
	return db.addAccount(&model.Account{
		Role:      model.AccountRoleParent,
		FirstName: first,
		LastName:  "Smith",
		Email:     email,
		Balance:   decimal.NewFromInt(balance),
	})
}

func (db *memDB) addStudent(first string, parentID int64) *model.Account {
	return db.addAccount(&model.Account{
		Role:      model.AccountRoleStudent,
		FirstName: first,
		LastName:  "Smith",
		ParentID:  &parentID,
	})
}

func (db *memDB) addCategory(name string) *model.Category {
	c := &model.Category{ID: db.id(), Name: name}
	db.categories[c.ID] = c
	return c
}

func (db *memDB) addCourse(c *model.Course) *model.Course {
	c.ID = db.id()
	db.courses[c.ID] = c
	return c
}

func (db *memDB) addDiscount(d *model.Discount) *model.Discount {
	d.ID = db.id()
	d.IsActive = true
	db.discounts[d.ID] = d
	return d
}

func int64Ptr(v int64) *int64 {
	return &v
}
