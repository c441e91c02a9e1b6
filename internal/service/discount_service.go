package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/search"
)

// DiscountInput новая скидка. Заполняются только поля вида Kind:
// num_sessions для multi_course, start_date/end_date (2006-01-02) для
// date_range, payment_method для payment_method
type DiscountInput struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	Kind          model.DiscountKind  `json:"kind" validate:"required,oneof=multi_course date_range payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	AmountType    model.AmountType    `json:"amount_type" validate:"required,oneof=percent fixed"`
	IsActive      *bool               `json:"is_active"` // nil - активна
	NumSessions   int                 `json:"num_sessions"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

var hundred = decimal.NewFromInt(100)

// CreateDiscount создаёт скидку после проверки полей её вида
func (s *PricingService) CreateDiscount(ctx context.Context, in *DiscountInput) (*model.Discount, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	discount, err := parseDiscountInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.stores.Discounts.Create(ctx, discount); err != nil {
		return nil, fmt.Errorf("create discount: %w", err)
	}

	s.logger.Info("Discount created",
		zap.Int64("discount_id", discount.ID),
		zap.String("kind", string(discount.Kind)),
		zap.String("amount", discount.Amount.String()),
		zap.String("amount_type", string(discount.AmountType)))

	return discount, nil
}

func parseDiscountInput(in *DiscountInput) (*model.Discount, error) {
	if !in.Amount.IsPositive() {
		return nil, validationErrorf("Discount amount must be positive")
	}
	if in.AmountType == model.AmountTypePercent && in.Amount.GreaterThan(hundred) {
		return nil, validationErrorf("Percent discount cannot exceed 100")
	}

	discount := &model.Discount{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Kind:        in.Kind,
		Amount:      in.Amount,
		AmountType:  in.AmountType,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}

	switch in.Kind {
	case model.DiscountKindMultiCourse:
		if in.NumSessions < 1 {
			return nil, validationErrorf("Multi-course discount requires num_sessions of at least 1")
		}
		discount.NumSessions = in.NumSessions
	case model.DiscountKindDateRange:
		start, err := time.Parse(dateLayout, in.StartDate)
		if err != nil {
			return nil, validationErrorf("Invalid start date %q", in.StartDate)
		}
		end, err := time.Parse(dateLayout, in.EndDate)
		if err != nil {
			return nil, validationErrorf("Invalid end date %q", in.EndDate)
		}
		if end.Before(start) {
			return nil, validationErrorf("Discount end date must not be before start date")
		}
		discount.StartDate = &start
		discount.EndDate = &end
	case model.DiscountKindPaymentMethod:
		if !validPaymentMethod(in.PaymentMethod) {
			return nil, validationErrorf("Unknown payment method %q", in.PaymentMethod)
		}
		discount.PaymentMethod = in.PaymentMethod
	}

	return discount, nil
}

var discountSortKeys = map[string]func(*model.Discount) string{
	"name":       func(d *model.Discount) string { return d.Name },
	"kind":       func(d *model.Discount) string { return string(d.Kind) },
	"created_at": func(d *model.Discount) string { return d.CreatedAt.UTC().Format(time.RFC3339Nano) },
}

var discountSearchFields = []search.Field[*model.Discount]{
	search.Substring(func(d *model.Discount) string { return d.Name }),
	search.Substring(func(d *model.Discount) string { return d.Description }),
	search.Exact(func(d *model.Discount) string { return string(d.Kind) }),
	search.Exact(func(d *model.Discount) string { return string(d.PaymentMethod) }),
}

// ListDiscounts список скидок с поиском, сортировкой и пагинацией
func (s *PricingService) ListDiscounts(ctx context.Context, params ListParams) (Page[*model.Discount], error) {
	discounts, err := s.stores.Discounts.List(ctx)
	if err != nil {
		return Page[*model.Discount]{}, fmt.Errorf("list discounts: %w", err)
	}

	return listPage(discounts, params, discountSearchFields, discountSortKeys, "kind"), nil
}

var priceRuleSortKeys = map[string]func(*model.PriceRule) string{
	"name":        func(r *model.PriceRule) string { return r.Name },
	"course_type": func(r *model.PriceRule) string { return string(r.CourseType) },
}

var priceRuleSearchFields = []search.Field[*model.PriceRule]{
	search.Substring(func(r *model.PriceRule) string { return r.Name }),
	search.Exact(func(r *model.PriceRule) string { return string(r.AcademicLevel) }),
	search.Exact(func(r *model.PriceRule) string { return string(r.CourseType) }),
}

// ListPriceRules список правил цен с поиском, сортировкой и пагинацией
func (s *PricingService) ListPriceRules(ctx context.Context, params ListParams) (Page[*model.PriceRule], error) {
	rules, err := s.stores.PriceRules.List(ctx)
	if err != nil {
		return Page[*model.PriceRule]{}, fmt.Errorf("list price rules: %w", err)
	}

	return listPage(rules, params, priceRuleSearchFields, priceRuleSortKeys, "name"), nil
}
