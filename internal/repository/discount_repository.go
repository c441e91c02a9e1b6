package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type DiscountRepository struct {
	db base.DBTX
}

func NewDiscountRepository(db base.DBTX) *DiscountRepository {
	return &DiscountRepository{db: db}
}

const discountColumns = `id, name, description, kind, amount, amount_type, is_active, created_at,
	COALESCE(num_sessions, 0), start_date, end_date, COALESCE(payment_method, '')`

func scanDiscount(row pgx.Row) (*model.Discount, error) {
	var discount model.Discount
	err := row.Scan(
		&discount.ID,
		&discount.Name,
		&discount.Description,
		&discount.Kind,
		&discount.Amount,
		&discount.AmountType,
		&discount.IsActive,
		&discount.CreatedAt,
		&discount.NumSessions,
		&discount.StartDate,
		&discount.EndDate,
		&discount.PaymentMethod,
	)
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// Create создаёт скидку. Поля, не относящиеся к виду скидки, сохраняются как NULL
func (r *DiscountRepository) Create(ctx context.Context, discount *model.Discount) error {
	query := `
		INSERT INTO discounts (name, description, kind, amount, amount_type, is_active,
			num_sessions, start_date, end_date, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, $9, NULLIF($10, ''))
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		discount.Name,
		discount.Description,
		discount.Kind,
		discount.Amount,
		discount.AmountType,
		discount.IsActive,
		discount.NumSessions,
		discount.StartDate,
		discount.EndDate,
		discount.PaymentMethod,
	).Scan(&discount.ID, &discount.CreatedAt)

	if err != nil {
		return fmt.Errorf("create discount: %w", err)
	}

	return nil
}

// ListActiveByKind получает активные скидки указанного вида. Для multi_course
// порядок num_sessions DESC, id ASC: на нём основан выбор при равных порогах
func (r *DiscountRepository) ListActiveByKind(ctx context.Context, kind model.DiscountKind) ([]*model.Discount, error) {
	query := `
		SELECT ` + discountColumns + `
		FROM discounts
		WHERE is_active AND kind = $1
		ORDER BY num_sessions DESC NULLS LAST, id ASC
	`
	return r.list(ctx, "list active discounts by kind", query, kind)
}

// List получает все скидки
func (r *DiscountRepository) List(ctx context.Context) ([]*model.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts ORDER BY kind, id`
	return r.list(ctx, "list discounts", query)
}

func (r *DiscountRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Discount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var discounts []*model.Discount
	for rows.Next() {
		discount, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		discounts = append(discounts, discount)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return discounts, nil
}
