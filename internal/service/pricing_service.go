package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/pricing"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

// PriceRuleInput новое правило цены
type PriceRuleInput struct {
	Name          string              `json:"name" validate:"required"`
	CategoryID    int64               `json:"category_id" validate:"required"`
	AcademicLevel model.AcademicLevel `json:"academic_level" validate:"omitempty,oneof=elementary_lvl middle_lvl high_lvl college_lvl"`
	CourseType    model.CourseType    `json:"course_type" validate:"required,oneof=tutoring small_group class"`
	HourlyTuition decimal.Decimal     `json:"hourly_tuition"`
}

type PricingService struct {
	stores Stores
	logger *zap.Logger
}

func NewPricingService(stores Stores, logger *zap.Logger) *PricingService {
	return &PricingService{
		stores: stores,
		logger: logger,
	}
}

// PriceQuoteTotal считает стоимость заявки по текущим правилам цен и скидкам
func (s *PricingService) PriceQuoteTotal(ctx context.Context, req *pricing.Request) (*pricing.Breakdown, error) {
	breakdown, err := quote(ctx, s.stores, req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Price quote computed",
		zap.Int("tutoring_items", len(req.Tutoring)),
		zap.Int("class_items", len(req.Classes)),
		zap.String("total", breakdown.Total.StringFixed(2)))

	return breakdown, nil
}

// CreatePriceRule создаёт правило цены. Для каждого ключа
// (категория, уровень, тип курса) допускается только одно правило
func (s *PricingService) CreatePriceRule(ctx context.Context, in *PriceRuleInput) (*model.PriceRule, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.HourlyTuition.IsPositive() {
		return nil, validationErrorf("Hourly tuition must be positive")
	}

	exists, err := s.stores.PriceRules.ExistsByKey(ctx, in.CategoryID, in.AcademicLevel, in.CourseType)
	if err != nil {
		return nil, fmt.Errorf("check price rule: %w", err)
	}
	if exists {
		return nil, errDuplicatePriceRule()
	}

	rule := &model.PriceRule{
		Name:          strings.TrimSpace(in.Name),
		CategoryID:    in.CategoryID,
		AcademicLevel: in.AcademicLevel,
		CourseType:    in.CourseType,
		HourlyTuition: in.HourlyTuition,
	}

	if err := s.stores.PriceRules.Create(ctx, rule); err != nil {
		if base.IsUniqueViolation(err) {
			return nil, errDuplicatePriceRule()
		}
		return nil, fmt.Errorf("create price rule: %w", err)
	}

	s.logger.Info("Price rule created",
		zap.Int64("price_rule_id", rule.ID),
		zap.Int64("category_id", rule.CategoryID),
		zap.String("academic_level", string(rule.AcademicLevel)),
		zap.String("course_type", string(rule.CourseType)))

	return rule, nil
}

func errDuplicatePriceRule() error {
	return validationErrorf("Price rule with this category, academic level and course type already exists")
}

// quote собирает вход для pricing.Quote из хранилищ st и считает разбивку
func quote(ctx context.Context, st Stores, req *pricing.Request) (*pricing.Breakdown, error) {
	in, err := loadQuoteInput(ctx, st, req)
	if err != nil {
		return nil, err
	}

	breakdown, err := pricing.Quote(in)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrPriceRuleNotFound):
			return nil, validationErrorf("No price rule defined for the requested tutoring")
		case errors.Is(err, pricing.ErrAmbiguousPriceRule):
			return nil, validationErrorf("More than one price rule matches the requested tutoring")
		case errors.Is(err, pricing.ErrCourseNotFound):
			return nil, validationErrorf("Requested course does not exist")
		}
		return nil, fmt.Errorf("quote: %w", err)
	}

	return breakdown, nil
}

func loadQuoteInput(ctx context.Context, st Stores, req *pricing.Request) (*pricing.Input, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.PaymentMethod != "" && !validPaymentMethod(req.PaymentMethod) {
		return nil, validationErrorf("Unknown payment method %q", req.PaymentMethod)
	}
	for _, item := range req.Tutoring {
		if !item.Duration.IsPositive() {
			return nil, validationErrorf("Tutoring duration must be positive")
		}
	}

	in := &pricing.Input{Request: req}

	type ruleKey struct {
		categoryID int64
		level      model.AcademicLevel
	}
	keys := lo.Uniq(lo.Map(req.Tutoring, func(item pricing.TutoringItem, _ int) ruleKey {
		return ruleKey{categoryID: item.CategoryID, level: item.AcademicLevel}
	}))
	for _, key := range keys {
		rules, err := st.PriceRules.ListByKey(ctx, key.categoryID, key.level, model.CourseTypeTutoring)
		if err != nil {
			return nil, fmt.Errorf("list price rules: %w", err)
		}
		in.PriceRules = append(in.PriceRules, rules...)
	}

	if len(req.Classes) > 0 {
		courseIDs := lo.Uniq(lo.Map(req.Classes, func(item pricing.ClassItem, _ int) int64 { return item.CourseID }))
		courses, err := st.Courses.GetByIDs(ctx, courseIDs)
		if err != nil {
			return nil, fmt.Errorf("get courses: %w", err)
		}
		in.Courses = lo.KeyBy(courses, func(c *model.Course) int64 { return c.ID })

		if in.DateRangeDiscounts, err = st.Discounts.ListActiveByKind(ctx, model.DiscountKindDateRange); err != nil {
			return nil, fmt.Errorf("list date range discounts: %w", err)
		}
		if in.MultiCourseDiscounts, err = st.Discounts.ListActiveByKind(ctx, model.DiscountKindMultiCourse); err != nil {
			return nil, fmt.Errorf("list multi course discounts: %w", err)
		}
	}

	var err error
	if in.PaymentMethodDiscounts, err = st.Discounts.ListActiveByKind(ctx, model.DiscountKindPaymentMethod); err != nil {
		return nil, fmt.Errorf("list payment method discounts: %w", err)
	}

	if req.ParentID != nil {
		parent, err := st.Accounts.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("get parent: %w", err)
		}
		if parent == nil || !parent.IsParent() {
			return nil, validationErrorf("Parent account %d does not exist", *req.ParentID)
		}
		balance := parent.Balance
		in.ParentBalance = &balance
	}

	return in, nil
}

func validPaymentMethod(m model.PaymentMethod) bool {
	switch m {
	case model.PaymentMethodCash, model.PaymentMethodCheck,
		model.PaymentMethodCreditCard, model.PaymentMethodInternationalCreditCard:
		return true
	}
	return false
}
