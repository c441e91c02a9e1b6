package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type InvoiceRepository struct {
	*base.Repository
}

func NewInvoiceRepository(db base.DBTX) *InvoiceRepository {
	return &InvoiceRepository{Repository: base.NewRepository(db)}
}

const invoiceColumns = `id, parent_id, payment_method, sub_total, discount_total, price_adjustment,
	account_balance, total, payment_status, payment_reminder_sent, created_at`

func scanInvoice(row pgx.Row) (*model.Invoice, error) {
	var invoice model.Invoice
	err := row.Scan(
		&invoice.ID,
		&invoice.ParentID,
		&invoice.PaymentMethod,
		&invoice.SubTotal,
		&invoice.DiscountTotal,
		&invoice.PriceAdjustment,
		&invoice.AccountBalance,
		&invoice.Total,
		&invoice.PaymentStatus,
		&invoice.PaymentReminderSent,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Create создаёт счёт вместе с его регистрациями
func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (parent_id, payment_method, sub_total, discount_total, price_adjustment,
			account_balance, total, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		invoice.ParentID,
		invoice.PaymentMethod,
		invoice.SubTotal,
		invoice.DiscountTotal,
		invoice.PriceAdjustment,
		invoice.AccountBalance,
		invoice.Total,
		invoice.PaymentStatus,
	).Scan(&invoice.ID, &invoice.CreatedAt)

	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	for _, registration := range invoice.Registrations {
		registration.InvoiceID = invoice.ID
		if err := r.createRegistration(ctx, registration); err != nil {
			return err
		}
	}

	return nil
}

func (r *InvoiceRepository) createRegistration(ctx context.Context, registration *model.Registration) error {
	query := `
		INSERT INTO registrations (invoice_id, enrollment_id, num_sessions, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.DB().QueryRow(
		ctx, query,
		registration.InvoiceID,
		registration.EnrollmentID,
		registration.NumSessions,
		registration.Price,
	).Scan(&registration.ID)

	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

// GetByID получает счёт с регистрациями
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	invoice, err := scanInvoice(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}

	invoice.Registrations, err = r.listRegistrations(ctx, id)
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

func (r *InvoiceRepository) listRegistrations(ctx context.Context, invoiceID int64) ([]*model.Registration, error) {
	query := `
		SELECT id, invoice_id, enrollment_id, num_sessions, price
		FROM registrations
		WHERE invoice_id = $1
		ORDER BY id
	`

	rows, err := r.DB().Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.InvoiceID, &reg.EnrollmentID, &reg.NumSessions, &reg.Price); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		registrations = append(registrations, &reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	return registrations, nil
}

// UpdatePaymentStatus обновляет статус оплаты счёта
func (r *InvoiceRepository) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	query := `UPDATE invoices SET payment_status = $2 WHERE id = $1`

	if err := r.ExecOne(ctx, query, id, status); err != nil {
		return fmt.Errorf("update invoice payment status: %w", err)
	}

	return nil
}

// ListUnpaidWithoutReminder получает неоплаченные счета без отправленного напоминания
func (r *InvoiceRepository) ListUnpaidWithoutReminder(ctx context.Context) ([]*model.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE payment_status IN ('unpaid', 'partial') AND NOT payment_reminder_sent
		ORDER BY created_at, id
	`

	rows, err := r.DB().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unpaid invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*model.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unpaid invoices: %w", err)
	}

	return invoices, nil
}

// MarkReminderSent отмечает отправку напоминания об оплате
func (r *InvoiceRepository) MarkReminderSent(ctx context.Context, id int64) error {
	query := `UPDATE invoices SET payment_reminder_sent = true WHERE id = $1`
	if _, err := r.DB().Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark payment reminder sent: %w", err)
	}
	return nil
}

// CreatePayment сохраняет платёж по счёту
func (r *InvoiceRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (invoice_id, amount, method, status, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		payment.InvoiceID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.Note,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// SumSucceededPayments возвращает сумму успешных платежей по счёту
func (r *InvoiceRepository) SumSucceededPayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1 AND status = 'succeeded'`

	var sum decimal.Decimal
	if err := r.DB().QueryRow(ctx, query, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}

	return sum, nil
}
