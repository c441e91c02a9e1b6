package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type PriceRuleRepository struct {
	db base.DBTX
}

func NewPriceRuleRepository(db base.DBTX) *PriceRuleRepository {
	return &PriceRuleRepository{db: db}
}

const priceRuleColumns = `id, name, category_id, academic_level, course_type, hourly_tuition, created_at`

func scanPriceRule(row pgx.Row) (*model.PriceRule, error) {
	var rule model.PriceRule
	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.CategoryID,
		&rule.AcademicLevel,
		&rule.CourseType,
		&rule.HourlyTuition,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create создаёт правило цены
func (r *PriceRuleRepository) Create(ctx context.Context, rule *model.PriceRule) error {
	query := `
		INSERT INTO price_rules (name, category_id, academic_level, course_type, hourly_tuition)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		rule.Name,
		rule.CategoryID,
		rule.AcademicLevel,
		rule.CourseType,
		rule.HourlyTuition,
	).Scan(&rule.ID, &rule.CreatedAt)

	if err != nil {
		return fmt.Errorf("create price rule: %w", err)
	}

	return nil
}

// ExistsByKey проверяет наличие правила для ключа (категория, уровень, тип курса)
func (r *PriceRuleRepository) ExistsByKey(ctx context.Context, categoryID int64, level model.AcademicLevel, courseType model.CourseType) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM price_rules
			WHERE category_id = $1 AND academic_level = $2 AND course_type = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, categoryID, level, courseType).Scan(&exists); err != nil {
		return false, fmt.Errorf("check price rule exists: %w", err)
	}

	return exists, nil
}

// ListByKey получает все правила для ключа. Больше одного правила считается
// ошибкой данных, решение принимает вызывающий код
func (r *PriceRuleRepository) ListByKey(ctx context.Context, categoryID int64, level model.AcademicLevel, courseType model.CourseType) ([]*model.PriceRule, error) {
	query := `
		SELECT ` + priceRuleColumns + `
		FROM price_rules
		WHERE category_id = $1 AND academic_level = $2 AND course_type = $3
		ORDER BY id
	`
	return r.list(ctx, "list price rules by key", query, categoryID, level, courseType)
}

// List получает все правила цены
func (r *PriceRuleRepository) List(ctx context.Context) ([]*model.PriceRule, error) {
	query := `SELECT ` + priceRuleColumns + ` FROM price_rules ORDER BY id`
	return r.list(ctx, "list price rules", query)
}

func (r *PriceRuleRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.PriceRule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var rules []*model.PriceRule
	for rows.Next() {
		rule, err := scanPriceRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rules, nil
}
