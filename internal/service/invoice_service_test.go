package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/pricing"
)

type InvoiceServiceSuite struct {
	suite.Suite
	ctx     context.Context
	db      *memDB
	svc     *InvoiceService
	parent  *model.Account
	tom     *model.Account
	ann     *model.Account
	course  *model.Course
	request *pricing.Request
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = newMemDB()
	s.svc = NewInvoiceService(s.db.stores(), s.db, zap.NewNop())
	s.parent = s.db.addParent("Mary", "mary@example.com", 30)
	s.tom = s.db.addStudent("Tom", s.parent.ID)
	s.ann = s.db.addStudent("Ann", s.parent.ID)
	s.course = addClass(s.db, "20")
	s.request = &pricing.Request{
		Classes: []pricing.ClassItem{
			{CourseID: s.course.ID, Sessions: 5, StudentID: s.tom.ID},
			{CourseID: s.course.ID, Sessions: 5, StudentID: s.ann.ID},
		},
		PaymentMethod: model.PaymentMethodCheck,
		ParentID:      &s.parent.ID,
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	invoice, err := s.svc.CreateInvoice(s.ctx, s.request)
	s.Require().NoError(err)

	// 2*100 - 25 (sibling) - 30 (balance)
	s.Equal("200.00", invoice.SubTotal.StringFixed(2))
	s.Equal("25.00", invoice.DiscountTotal.StringFixed(2))
	s.Equal("30.00", invoice.AccountBalance.StringFixed(2))
	s.Equal("145.00", invoice.Total.StringFixed(2))
	s.Equal(model.PaymentStatusUnpaid, invoice.PaymentStatus)
	s.Require().Len(invoice.Registrations, 2)
	s.Equal("100.00", invoice.Registrations[0].Price.StringFixed(2))

	s.True(s.db.accounts[s.parent.ID].Balance.IsZero(), "used balance is debited")

	enrollment, err := memEnrollments{s.db}.GetByStudentAndCourse(s.ctx, s.tom.ID, s.course.ID)
	s.Require().NoError(err)
	s.Require().NotNil(enrollment)
	s.Equal(5, enrollment.SessionsLeft)
	s.Equal(model.PaymentStatusUnpaid, enrollment.PaymentStatus)
}

func (s *InvoiceServiceSuite) TestCreateInvoice_ExtendsEnrollment() {
	_, err := s.svc.CreateInvoice(s.ctx, s.request)
	s.Require().NoError(err)
	_, err = s.svc.CreateInvoice(s.ctx, s.request)
	s.Require().NoError(err)

	enrollment, _ := memEnrollments{s.db}.GetByStudentAndCourse(s.ctx, s.tom.ID, s.course.ID)
	s.Equal(10, enrollment.SessionsLeft)
	s.Len(s.db.enrollments, 2)
}

func (s *InvoiceServiceSuite) TestCreateInvoice_Validation() {
	other := s.db.addParent("Jane", "jane@example.com", 0)
	stranger := s.db.addStudent("Bob", other.ID)

	req := *s.request
	req.Classes = []pricing.ClassItem{{CourseID: s.course.ID, Sessions: 1, StudentID: stranger.ID}}
	_, err := s.svc.CreateInvoice(s.ctx, &req)
	s.True(IsValidation(err))

	req = *s.request
	req.ParentID = nil
	_, err = s.svc.CreateInvoice(s.ctx, &req)
	s.True(IsValidation(err))

	s.Empty(s.db.invoices)
}

func (s *InvoiceServiceSuite) TestCreateInvoice_ChecksTutoringStudents() {
	other := s.db.addParent("Jane", "jane@example.com", 0)
	stranger := s.db.addStudent("Bob", other.ID)

	for _, studentID := range []int64{stranger.ID, 9999} {
		req := *s.request
		req.Tutoring = []pricing.TutoringItem{{
			CategoryID:    1,
			AcademicLevel: model.AcademicLevelMiddle,
			Duration:      decimal.NewFromInt(1),
			Sessions:      4,
			StudentID:     studentID,
		}}

		_, err := s.svc.CreateInvoice(s.ctx, &req)
		s.Require().Error(err)
		s.True(IsValidation(err), err.Error())
		s.Contains(err.Error(), "Student")
	}

	s.Empty(s.db.invoices)
}

func (s *InvoiceServiceSuite) TestRecordPayment_PartialThenPaid() {
	invoice, err := s.svc.CreateInvoice(s.ctx, s.request)
	s.Require().NoError(err)

	result, err := s.svc.RecordPayment(s.ctx, invoice.ID, &PaymentInput{Amount: decimal.NewFromInt(100), Method: model.PaymentMethodCheck})
	s.Require().NoError(err)
	s.Equal(model.PaymentStatusPartial, result.Invoice.PaymentStatus)

	result, err = s.svc.RecordPayment(s.ctx, invoice.ID, &PaymentInput{Amount: decimal.NewFromInt(45), Method: model.PaymentMethodCash})
	s.Require().NoError(err)
	s.Equal(model.PaymentStatusPaid, result.Invoice.PaymentStatus)
	s.Equal(model.PaymentStatusPaid, s.db.invoices[invoice.ID].PaymentStatus)

	for _, e := range s.db.enrollments {
		s.Equal(model.PaymentStatusPaid, e.PaymentStatus)
	}
}

func (s *InvoiceServiceSuite) TestRecordPayment_FailedDoesNotChangeStatus() {
	invoice, err := s.svc.CreateInvoice(s.ctx, s.request)
	s.Require().NoError(err)

	result, err := s.svc.RecordPayment(s.ctx, invoice.ID, &PaymentInput{
		Amount: decimal.NewFromInt(145),
		Method: model.PaymentMethodCreditCard,
		Status: model.PaymentRecordFailed,
		Note:   "card declined",
	})
	s.Require().NoError(err)

	s.Equal(model.PaymentRecordFailed, result.Payment.Status)
	s.Equal(model.PaymentStatusUnpaid, s.db.invoices[invoice.ID].PaymentStatus)
	s.Len(s.db.payments, 1)
}

func (s *InvoiceServiceSuite) TestRecordPayment_Errors() {
	_, err := s.svc.RecordPayment(s.ctx, 999, &PaymentInput{Amount: decimal.NewFromInt(1), Method: model.PaymentMethodCash})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.svc.RecordPayment(s.ctx, 999, &PaymentInput{Amount: decimal.Zero, Method: model.PaymentMethodCash})
	s.True(IsValidation(err))

	_, err = s.svc.RecordPayment(s.ctx, 999, &PaymentInput{Amount: decimal.NewFromInt(1), Method: "barter"})
	s.True(IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGetInvoice() {
	invoice, err := s.svc.CreateInvoice(s.ctx, s.request)
	s.Require().NoError(err)

	got, err := s.svc.GetInvoice(s.ctx, invoice.ID)
	s.Require().NoError(err)
	s.Equal(invoice.ID, got.ID)

	_, err = s.svc.GetInvoice(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
}
