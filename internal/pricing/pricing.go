// Package pricing считает стоимость заявки на занятия: подбирает ставки по
// правилам цен и применяет скидки в фиксированном порядке.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

var (
	ErrPriceRuleNotFound  = errors.New("price rule not found")
	ErrAmbiguousPriceRule = errors.New("more than one price rule matches")
	ErrCourseNotFound     = errors.New("course not found")
)

// SiblingDiscountAmount фиксированная скидка, если в заявке на классы
// больше одного ученика
var SiblingDiscountAmount = decimal.NewFromInt(25)

// SiblingDiscountName название скидки для братьев и сестёр в разбивке
const SiblingDiscountName = "Sibling discount"

type TutoringItem struct {
	CategoryID    int64               `json:"category_id" validate:"required"`
	AcademicLevel model.AcademicLevel `json:"academic_level" validate:"required"`
	Duration      decimal.Decimal     `json:"duration"` // в часах
	Sessions      int                 `json:"sessions" validate:"gte=1"`
	StudentID     int64               `json:"student_id"`
}

type ClassItem struct {
	CourseID  int64 `json:"course_id" validate:"required"`
	Sessions  int   `json:"sessions" validate:"gte=1"`
	StudentID int64 `json:"student_id" validate:"required"`
}

// Request заявка на расчёт стоимости
type Request struct {
	Tutoring          []TutoringItem      `json:"tutoring" validate:"dive"`
	Classes           []ClassItem         `json:"classes" validate:"dive"`
	PaymentMethod     model.PaymentMethod `json:"method"`
	DisabledDiscounts []int64             `json:"disabled_discounts"`
	PriceAdjustment   decimal.Decimal     `json:"price_adjustment"`
	ParentID          *int64              `json:"parent"`
}

// Input заявка вместе со всеми данными, нужными для расчёта.
// Скидки за количество занятий должны быть упорядочены по num_sessions DESC, id ASC
type Input struct {
	Request                *Request
	PriceRules             []*model.PriceRule
	Courses                map[int64]*model.Course
	DateRangeDiscounts     []*model.Discount
	MultiCourseDiscounts   []*model.Discount
	PaymentMethodDiscounts []*model.Discount
	ParentBalance          *decimal.Decimal
}

type LineKind string

const (
	LineKindTutoring LineKind = "tutoring"
	LineKindClass    LineKind = "class"
)

// Line позиция заявки с посчитанной ценой (без скидок)
type Line struct {
	Kind      LineKind        `json:"kind"`
	CourseID  int64           `json:"course_id,omitempty"`
	StudentID int64           `json:"student_id"`
	Sessions  int             `json:"sessions"`
	Price     decimal.Decimal `json:"price"`
}

type AppliedDiscount struct {
	ID     int64              `json:"id"`
	Name   string             `json:"name"`
	Kind   model.DiscountKind `json:"kind"`
	Amount decimal.Decimal    `json:"amount"`
}

// Breakdown результат расчёта. Все суммы округлены до 2 знаков
type Breakdown struct {
	SubTotal        decimal.Decimal   `json:"sub_total"`
	DiscountTotal   decimal.Decimal   `json:"discount_total"`
	PriceAdjustment decimal.Decimal   `json:"price_adjustment"`
	AccountBalance  decimal.Decimal   `json:"account_balance"`
	Total           decimal.Decimal   `json:"total"`
	UsedDiscounts   []AppliedDiscount `json:"used_discounts"`
	Lines           []Line            `json:"lines"`
}

// Quote считает стоимость заявки. Функция чистая: одинаковый вход даёт одинаковый результат.
// Округление выполняется только в конце, промежуточные ошибки округления допускаются
func Quote(in *Input) (*Breakdown, error) {
	req := in.Request
	disabled := lo.SliceToMap(req.DisabledDiscounts, func(id int64) (int64, struct{}) {
		return id, struct{}{}
	})
	usable := func(d *model.Discount) bool {
		_, off := disabled[d.ID]
		return d.IsActive && !off
	}

	subTotal := decimal.Zero
	discountTotal := decimal.Zero
	applied := newDiscountLedger()
	var lines []Line

	for _, item := range req.Tutoring {
		rule, err := FindPriceRule(in.PriceRules, item.CategoryID, item.AcademicLevel, model.CourseTypeTutoring)
		if err != nil {
			return nil, err
		}

		price := rule.HourlyTuition.Mul(item.Duration).Mul(decimal.NewFromInt(int64(item.Sessions)))
		subTotal = subTotal.Add(price)
		lines = append(lines, Line{Kind: LineKindTutoring, StudentID: item.StudentID, Sessions: item.Sessions, Price: price})
	}

	students := make(map[int64]struct{})
	for _, item := range req.Classes {
		course, ok := in.Courses[item.CourseID]
		if !ok {
			return nil, fmt.Errorf("course %d: %w", item.CourseID, ErrCourseNotFound)
		}

		price := course.HourlyTuition.Mul(decimal.NewFromInt(int64(item.Sessions)))
		subTotal = subTotal.Add(price)
		lines = append(lines, Line{Kind: LineKindClass, CourseID: course.ID, StudentID: item.StudentID, Sessions: item.Sessions, Price: price})

		for _, d := range in.DateRangeDiscounts {
			if !usable(d) || !overlaps(course, d) {
				continue
			}
			amount := d.Apply(price)
			discountTotal = discountTotal.Add(amount)
			applied.add(d.ID, d.Name, model.DiscountKindDateRange, amount)
		}

		if d := bestMultiCourseDiscount(in.MultiCourseDiscounts, item.Sessions, usable); d != nil {
			amount := d.Apply(price)
			discountTotal = discountTotal.Add(amount)
			applied.add(d.ID, d.Name, model.DiscountKindMultiCourse, amount)
		}

		students[item.StudentID] = struct{}{}
	}

	if len(students) > 1 {
		discountTotal = discountTotal.Add(SiblingDiscountAmount)
		applied.add(0, SiblingDiscountName, model.DiscountKindSibling, SiblingDiscountAmount)
	}

	for _, d := range in.PaymentMethodDiscounts {
		if !usable(d) || d.PaymentMethod != req.PaymentMethod {
			continue
		}
		amount := d.Apply(subTotal)
		discountTotal = discountTotal.Add(amount)
		applied.add(d.ID, d.Name, model.DiscountKindPaymentMethod, amount)
	}

	total := subTotal.Sub(discountTotal).Add(req.PriceAdjustment)
	if total.IsNegative() {
		total = decimal.Zero
	}

	accountBalance := decimal.Zero
	if in.ParentBalance != nil && in.ParentBalance.IsPositive() {
		accountBalance = decimal.Min(*in.ParentBalance, total)
		total = total.Sub(accountBalance)
	}

	for i := range lines {
		lines[i].Price = round(lines[i].Price)
	}

	return &Breakdown{
		SubTotal:        round(subTotal),
		DiscountTotal:   round(discountTotal),
		PriceAdjustment: round(req.PriceAdjustment),
		AccountBalance:  round(accountBalance),
		Total:           round(total),
		UsedDiscounts:   applied.list(),
		Lines:           lines,
	}, nil
}

// FindPriceRule ищет единственное правило цены по точному ключу.
// Отсутствие или неоднозначность правила считается ошибкой
func FindPriceRule(rules []*model.PriceRule, categoryID int64, level model.AcademicLevel, courseType model.CourseType) (*model.PriceRule, error) {
	matches := lo.Filter(rules, func(r *model.PriceRule, _ int) bool {
		return r.CategoryID == categoryID && r.AcademicLevel == level && r.CourseType == courseType
	})

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("category %d, level %q, type %q: %w", categoryID, level, courseType, ErrPriceRuleNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("category %d, level %q, type %q: %w", categoryID, level, courseType, ErrAmbiguousPriceRule)
	}
}

// bestMultiCourseDiscount выбирает скидку с наибольшим порогом num_sessions, не превышающим
// количество занятий. При равных порогах побеждает первая в порядке входа
func bestMultiCourseDiscount(discounts []*model.Discount, sessions int, usable func(*model.Discount) bool) *model.Discount {
	var best *model.Discount
	for _, d := range discounts {
		if !usable(d) || d.NumSessions > sessions {
			continue
		}
		if best == nil || d.NumSessions > best.NumSessions {
			best = d
		}
	}
	return best
}

// overlaps проверяет пересечение периода курса с периодом скидки (границы включительно).
// Отсутствующая граница скидки считается открытой
func overlaps(course *model.Course, d *model.Discount) bool {
	if d.EndDate != nil && dateOnly(course.StartDate).After(dateOnly(*d.EndDate)) {
		return false
	}
	if d.StartDate != nil && dateOnly(*d.StartDate).After(dateOnly(course.EndDate)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// discountLedger суммирует применённые скидки по id, сохраняя порядок применения
type discountLedger struct {
	order   []string
	entries map[string]*AppliedDiscount
}

func newDiscountLedger() *discountLedger {
	return &discountLedger{entries: make(map[string]*AppliedDiscount)}
}

func (l *discountLedger) add(id int64, name string, kind model.DiscountKind, amount decimal.Decimal) {
	key := fmt.Sprintf("%s:%d", kind, id)
	if entry, ok := l.entries[key]; ok {
		entry.Amount = entry.Amount.Add(amount)
		return
	}
	l.order = append(l.order, key)
	l.entries[key] = &AppliedDiscount{ID: id, Name: name, Kind: kind, Amount: amount}
}

func (l *discountLedger) list() []AppliedDiscount {
	return lo.Map(l.order, func(key string, _ int) AppliedDiscount {
		entry := *l.entries[key]
		entry.Amount = round(entry.Amount)
		return entry
	})
}
