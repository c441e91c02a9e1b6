package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/pricing"
)

// PaymentInput платёж по счёту. Status failed фиксирует отказ платёжной системы
type PaymentInput struct {
	Amount decimal.Decimal           `json:"amount"`
	Method model.PaymentMethod       `json:"method" validate:"required,oneof=cash check credit_card intl_credit_card"`
	Status model.PaymentRecordStatus `json:"status" validate:"omitempty,oneof=succeeded failed"`
	Note   string                    `json:"note"`
}

// PaymentResult сохранённый платёж и счёт после него
type PaymentResult struct {
	Payment *model.Payment `json:"payment"`
	Invoice *model.Invoice `json:"invoice"`
}

type InvoiceService struct {
	stores Stores
	tx     Transactor
	logger *zap.Logger
}

func NewInvoiceService(stores Stores, tx Transactor, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		stores: stores,
		tx:     tx,
		logger: logger,
	}
}

// CreateInvoice считает стоимость заявки и в одной транзакции создаёт счёт,
// записывает учеников на классы и списывает использованный баланс родителя
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *pricing.Request) (*model.Invoice, error) {
	if req.ParentID == nil {
		return nil, validationErrorf("Parent is required to create an invoice")
	}
	if req.PaymentMethod == "" {
		return nil, validationErrorf("Payment method is required to create an invoice")
	}

	var invoice *model.Invoice
	err := s.tx.WithTx(ctx, func(ctx context.Context, st Stores) error {
		if err := checkStudents(ctx, st, *req.ParentID, requestStudents(req)); err != nil {
			return err
		}

		breakdown, err := quote(ctx, st, req)
		if err != nil {
			return err
		}

		invoice = &model.Invoice{
			ParentID:        *req.ParentID,
			PaymentMethod:   req.PaymentMethod,
			SubTotal:        breakdown.SubTotal,
			DiscountTotal:   breakdown.DiscountTotal,
			PriceAdjustment: breakdown.PriceAdjustment,
			AccountBalance:  breakdown.AccountBalance,
			Total:           breakdown.Total,
			PaymentStatus:   model.PaymentStatusUnpaid,
		}
		if invoice.Total.IsZero() {
			invoice.PaymentStatus = model.PaymentStatusPaid
		}

		for _, line := range breakdown.Lines {
			if line.Kind != pricing.LineKindClass {
				continue
			}
			enrollment, err := enroll(ctx, st, line.StudentID, line.CourseID, line.Sessions, invoice.PaymentStatus)
			if err != nil {
				return err
			}
			invoice.Registrations = append(invoice.Registrations, &model.Registration{
				EnrollmentID: enrollment.ID,
				NumSessions:  line.Sessions,
				Price:        line.Price,
			})
		}

		if err := st.Invoices.Create(ctx, invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		if invoice.AccountBalance.IsPositive() {
			if err := st.Accounts.AdjustBalance(ctx, invoice.ParentID, invoice.AccountBalance.Neg()); err != nil {
				return fmt.Errorf("debit parent balance: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.Int64("invoice_id", invoice.ID),
		zap.Int64("parent_id", invoice.ParentID),
		zap.Int("registrations", len(invoice.Registrations)),
		zap.String("total", invoice.Total.StringFixed(2)))

	return invoice, nil
}

// requestStudents ученики из заявки: обязательные для классов и указанные
// в индивидуальных занятиях
func requestStudents(req *pricing.Request) []int64 {
	ids := lo.Map(req.Classes, func(item pricing.ClassItem, _ int) int64 { return item.StudentID })
	for _, item := range req.Tutoring {
		if item.StudentID != 0 {
			ids = append(ids, item.StudentID)
		}
	}
	return lo.Uniq(ids)
}

// checkStudents проверяет что ученики из заявки существуют и принадлежат родителю
func checkStudents(ctx context.Context, st Stores, parentID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	students, err := st.Accounts.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get students: %w", err)
	}

	byID := make(map[int64]*model.Account, len(students))
	for _, student := range students {
		byID[student.ID] = student
	}

	for _, id := range ids {
		student, ok := byID[id]
		if !ok || student.Role != model.AccountRoleStudent {
			return validationErrorf("Student %d does not exist", id)
		}
		if student.ParentID == nil || *student.ParentID != parentID {
			return validationErrorf("Student %d does not belong to parent %d", id, parentID)
		}
	}

	return nil
}

// enroll создаёт запись на курс или добавляет к ней оплаченные занятия
func enroll(ctx context.Context, st Stores, studentID, courseID int64, sessions int, status model.PaymentStatus) (*model.Enrollment, error) {
	enrollment, err := st.Enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	if enrollment == nil {
		enrollment = &model.Enrollment{
			StudentID:     studentID,
			CourseID:      courseID,
			SessionsLeft:  sessions,
			PaymentStatus: status,
		}
		if err := st.Enrollments.Create(ctx, enrollment); err != nil {
			return nil, fmt.Errorf("create enrollment: %w", err)
		}
		return enrollment, nil
	}

	enrollment.SessionsLeft += sessions
	if status != model.PaymentStatusPaid && enrollment.PaymentStatus == model.PaymentStatusPaid {
		enrollment.PaymentStatus = model.PaymentStatusPartial
	}
	if err := st.Enrollments.Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	return enrollment, nil
}

// RecordPayment сохраняет платёж и пересчитывает статус оплаты счёта и записей
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID int64, in *PaymentInput) (*PaymentResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, validationErrorf("Payment amount must be positive")
	}

	status := in.Status
	if status == "" {
		status = model.PaymentRecordSucceeded
	}

	result := &PaymentResult{}
	err := s.tx.WithTx(ctx, func(ctx context.Context, st Stores) error {
		invoice, err := st.Invoices.GetByID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("get invoice: %w", err)
		}
		if invoice == nil {
			return notFound("invoice", invoiceID)
		}
		if invoice.PaymentStatus == model.PaymentStatusCanceled {
			return validationErrorf("Invoice %d is canceled", invoiceID)
		}

		payment := &model.Payment{
			InvoiceID: invoiceID,
			Amount:    in.Amount.Round(2),
			Method:    in.Method,
			Status:    status,
			Note:      in.Note,
		}
		if err := st.Invoices.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		result.Payment = payment
		result.Invoice = invoice

		if status != model.PaymentRecordSucceeded {
			return nil
		}

		paid, err := st.Invoices.SumSucceededPayments(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}

		newStatus := model.PaymentStatusPartial
		if paid.GreaterThanOrEqual(invoice.Total) {
			newStatus = model.PaymentStatusPaid
		}
		if newStatus == invoice.PaymentStatus {
			return nil
		}

		if err := st.Invoices.UpdatePaymentStatus(ctx, invoiceID, newStatus); err != nil {
			return fmt.Errorf("update invoice status: %w", err)
		}
		invoice.PaymentStatus = newStatus

		enrollments, err := st.Enrollments.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}
		for _, enrollment := range enrollments {
			if enrollment.PaymentStatus == newStatus {
				continue
			}
			enrollment.PaymentStatus = newStatus
			if err := st.Enrollments.Update(ctx, enrollment); err != nil {
				return fmt.Errorf("update enrollment: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.Int64("invoice_id", invoiceID),
		zap.Int64("payment_id", result.Payment.ID),
		zap.String("status", string(result.Payment.Status)),
		zap.String("invoice_status", string(result.Invoice.PaymentStatus)))

	return result, nil
}

// GetInvoice получает счёт с регистрациями
func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	invoice, err := s.stores.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, notFound("invoice", id)
	}
	return invoice, nil
}
