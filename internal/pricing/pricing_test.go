package pricing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func mathRule() *model.PriceRule {
	return &model.PriceRule{ID: 1, CategoryID: 3, AcademicLevel: model.AcademicLevelHigh, CourseType: model.CourseTypeTutoring, HourlyTuition: dec("50")}
}

func algebraCourse() *model.Course {
	return &model.Course{
		ID:            11,
		Type:          model.CourseTypeClass,
		StartDate:     day(2024, time.June, 3),
		EndDate:       day(2024, time.August, 5),
		HourlyTuition: dec("40"),
	}
}

func TestQuote_TutoringUsesPriceRule(t *testing.T) {
	in := &Input{
		Request: &Request{Tutoring: []TutoringItem{
			{CategoryID: 3, AcademicLevel: model.AcademicLevelHigh, Duration: dec("1.5"), Sessions: 4, StudentID: 1},
		}},
		PriceRules: []*model.PriceRule{mathRule()},
	}

	quote, err := Quote(in)
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(quote.SubTotal), quote.SubTotal.String())
	assert.True(t, dec("300").Equal(quote.Total))
	assert.True(t, quote.DiscountTotal.IsZero())
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, LineKindTutoring, quote.Lines[0].Kind)
}

func TestQuote_TutoringRuleMustBeUnique(t *testing.T) {
	req := &Request{Tutoring: []TutoringItem{
		{CategoryID: 3, AcademicLevel: model.AcademicLevelHigh, Duration: dec("1"), Sessions: 1},
	}}

	_, err := Quote(&Input{Request: req})
	assert.ErrorIs(t, err, ErrPriceRuleNotFound)

	dup := mathRule()
	dup.ID = 2
	_, err = Quote(&Input{Request: req, PriceRules: []*model.PriceRule{mathRule(), dup}})
	assert.ErrorIs(t, err, ErrAmbiguousPriceRule)

	other := mathRule()
	other.CourseType = model.CourseTypeClass
	_, err = Quote(&Input{Request: req, PriceRules: []*model.PriceRule{other}})
	assert.ErrorIs(t, err, ErrPriceRuleNotFound)
}

func TestQuote_UnknownCourse(t *testing.T) {
	_, err := Quote(&Input{Request: &Request{Classes: []ClassItem{{CourseID: 99, Sessions: 1, StudentID: 1}}}})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestQuote_ClassDiscountsInOrder(t *testing.T) {
	course := algebraCourse()
	summer := &model.Discount{ID: 20, Name: "Summer", Kind: model.DiscountKindDateRange, Amount: dec("10"), AmountType: model.AmountTypePercent, IsActive: true,
		StartDate: ptr(day(2024, time.July, 1)), EndDate: ptr(day(2024, time.July, 31))}
	winter := &model.Discount{ID: 21, Name: "Winter", Kind: model.DiscountKindDateRange, Amount: dec("10"), AmountType: model.AmountTypePercent, IsActive: true,
		StartDate: ptr(day(2024, time.December, 1)), EndDate: ptr(day(2024, time.December, 31))}
	multi := []*model.Discount{
		{ID: 31, Name: "10+", Kind: model.DiscountKindMultiCourse, NumSessions: 10, Amount: dec("50"), AmountType: model.AmountTypeFixed, IsActive: true},
		{ID: 30, Name: "5+", Kind: model.DiscountKindMultiCourse, NumSessions: 5, Amount: dec("20"), AmountType: model.AmountTypeFixed, IsActive: true},
	}

	in := &Input{
		Request:              &Request{Classes: []ClassItem{{CourseID: course.ID, Sessions: 10, StudentID: 1}}},
		Courses:              map[int64]*model.Course{course.ID: course},
		DateRangeDiscounts:   []*model.Discount{summer, winter},
		MultiCourseDiscounts: multi,
	}

	quote, err := Quote(in)
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(quote.SubTotal))
	// 10% от 400 + 50 за 10 занятий
	assert.True(t, dec("90").Equal(quote.DiscountTotal), quote.DiscountTotal.String())
	assert.True(t, dec("310").Equal(quote.Total))

	require.Len(t, quote.UsedDiscounts, 2)
	assert.Equal(t, int64(20), quote.UsedDiscounts[0].ID)
	assert.Equal(t, int64(31), quote.UsedDiscounts[1].ID)
}

func TestQuote_HighestQualifyingMultiCourseThreshold(t *testing.T) {
	course := algebraCourse()
	multi := []*model.Discount{
		{ID: 3, NumSessions: 12, Amount: dec("100"), AmountType: model.AmountTypeFixed, IsActive: true},
		{ID: 2, NumSessions: 6, Amount: dec("30"), AmountType: model.AmountTypeFixed, IsActive: true},
		{ID: 4, NumSessions: 6, Amount: dec("35"), AmountType: model.AmountTypeFixed, IsActive: true},
		{ID: 1, NumSessions: 3, Amount: dec("10"), AmountType: model.AmountTypeFixed, IsActive: true},
	}

	tests := []struct {
		name     string
		sessions int
		wantID   int64
		want     string
	}{
		{name: "below every threshold", sessions: 2, want: "0"},
		{name: "lowest threshold", sessions: 3, wantID: 1, want: "10"},
		{name: "tie keeps repository order", sessions: 8, wantID: 2, want: "30"},
		{name: "highest threshold", sessions: 12, wantID: 3, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := Quote(&Input{
				Request:              &Request{Classes: []ClassItem{{CourseID: course.ID, Sessions: tt.sessions, StudentID: 1}}},
				Courses:              map[int64]*model.Course{course.ID: course},
				MultiCourseDiscounts: multi,
			})
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(quote.DiscountTotal), quote.DiscountTotal.String())
			if tt.wantID == 0 {
				assert.Empty(t, quote.UsedDiscounts)
				return
			}
			require.Len(t, quote.UsedDiscounts, 1)
			assert.Equal(t, tt.wantID, quote.UsedDiscounts[0].ID)
		})
	}
}

func TestQuote_DisabledDiscountContributesNothing(t *testing.T) {
	course := algebraCourse()
	summer := &model.Discount{ID: 20, Amount: dec("10"), AmountType: model.AmountTypePercent, IsActive: true,
		StartDate: ptr(day(2024, time.July, 1)), EndDate: ptr(day(2024, time.July, 31))}
	multi := []*model.Discount{
		{ID: 31, NumSessions: 10, Amount: dec("50"), AmountType: model.AmountTypeFixed, IsActive: true},
		{ID: 30, NumSessions: 5, Amount: dec("20"), AmountType: model.AmountTypeFixed, IsActive: true},
	}
	card := &model.Discount{ID: 40, Amount: dec("5"), AmountType: model.AmountTypeFixed, IsActive: true, PaymentMethod: model.PaymentMethodCash}

	in := &Input{
		Request: &Request{
			Classes:           []ClassItem{{CourseID: course.ID, Sessions: 10, StudentID: 1}},
			PaymentMethod:     model.PaymentMethodCash,
			DisabledDiscounts: []int64{20, 31, 40},
		},
		Courses:                map[int64]*model.Course{course.ID: course},
		DateRangeDiscounts:     []*model.Discount{summer},
		MultiCourseDiscounts:   multi,
		PaymentMethodDiscounts: []*model.Discount{card},
	}

	quote, err := Quote(in)
	require.NoError(t, err)
	// отключённая скидка 10+ уступает следующему порогу
	assert.True(t, dec("20").Equal(quote.DiscountTotal), quote.DiscountTotal.String())
	for _, used := range quote.UsedDiscounts {
		assert.NotContains(t, []int64{20, 31, 40}, used.ID)
	}
}

func TestQuote_InactiveDiscountIgnored(t *testing.T) {
	course := algebraCourse()
	in := &Input{
		Request: &Request{Classes: []ClassItem{{CourseID: course.ID, Sessions: 10, StudentID: 1}}},
		Courses: map[int64]*model.Course{course.ID: course},
		MultiCourseDiscounts: []*model.Discount{
			{ID: 31, NumSessions: 1, Amount: dec("50"), AmountType: model.AmountTypeFixed, IsActive: false},
		},
	}

	quote, err := Quote(in)
	require.NoError(t, err)
	assert.True(t, quote.DiscountTotal.IsZero())
}

func TestQuote_SiblingAndPaymentMethod(t *testing.T) {
	course := algebraCourse()
	card := &model.Discount{ID: 40, Name: "Card", Amount: dec("5"), AmountType: model.AmountTypePercent, IsActive: true, PaymentMethod: model.PaymentMethodCreditCard}
	cash := &model.Discount{ID: 41, Name: "Cash", Amount: dec("15"), AmountType: model.AmountTypeFixed, IsActive: true, PaymentMethod: model.PaymentMethodCash}

	in := &Input{
		Request: &Request{
			Classes: []ClassItem{
				{CourseID: course.ID, Sessions: 2, StudentID: 1},
				{CourseID: course.ID, Sessions: 3, StudentID: 2},
			},
			PaymentMethod: model.PaymentMethodCreditCard,
		},
		Courses:                map[int64]*model.Course{course.ID: course},
		PaymentMethodDiscounts: []*model.Discount{card, cash},
	}

	quote, err := Quote(in)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(quote.SubTotal))
	// 25 за второго ученика + 5% от 200
	assert.True(t, dec("35").Equal(quote.DiscountTotal), quote.DiscountTotal.String())
	require.Len(t, quote.UsedDiscounts, 2)
	assert.Equal(t, model.DiscountKindSibling, quote.UsedDiscounts[0].Kind)
	assert.Equal(t, int64(40), quote.UsedDiscounts[1].ID)
}

func TestQuote_SameStudentTwiceIsNotSibling(t *testing.T) {
	course := algebraCourse()
	quote, err := Quote(&Input{
		Request: &Request{Classes: []ClassItem{
			{CourseID: course.ID, Sessions: 1, StudentID: 5},
			{CourseID: course.ID, Sessions: 1, StudentID: 5},
		}},
		Courses: map[int64]*model.Course{course.ID: course},
	})
	require.NoError(t, err)
	assert.True(t, quote.DiscountTotal.IsZero())
}

func TestQuote_AccountBalanceCappedAtTotal(t *testing.T) {
	course := algebraCourse()
	req := &Request{Classes: []ClassItem{{CourseID: course.ID, Sessions: 2, StudentID: 1}}, ParentID: ptr(int64(9))}
	courses := map[int64]*model.Course{course.ID: course}

	quote, err := Quote(&Input{Request: req, Courses: courses, ParentBalance: ptr(dec("1000"))})
	require.NoError(t, err)
	assert.True(t, dec("80").Equal(quote.AccountBalance))
	assert.True(t, quote.Total.IsZero())

	quote, err = Quote(&Input{Request: req, Courses: courses, ParentBalance: ptr(dec("30"))})
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(quote.AccountBalance))
	assert.True(t, dec("50").Equal(quote.Total))

	quote, err = Quote(&Input{Request: req, Courses: courses, ParentBalance: ptr(dec("-30"))})
	require.NoError(t, err)
	assert.True(t, quote.AccountBalance.IsZero())
	assert.True(t, dec("80").Equal(quote.Total))
}

func TestQuote_PriceAdjustmentAndFloor(t *testing.T) {
	course := algebraCourse()
	courses := map[int64]*model.Course{course.ID: course}

	quote, err := Quote(&Input{
		Request: &Request{Classes: []ClassItem{{CourseID: course.ID, Sessions: 1, StudentID: 1}}, PriceAdjustment: dec("-15.5")},
		Courses: courses,
	})
	require.NoError(t, err)
	assert.True(t, dec("24.5").Equal(quote.Total))
	assert.True(t, dec("-15.5").Equal(quote.PriceAdjustment))

	quote, err = Quote(&Input{
		Request: &Request{Classes: []ClassItem{{CourseID: course.ID, Sessions: 1, StudentID: 1}}, PriceAdjustment: dec("-100")},
		Courses: courses,
	})
	require.NoError(t, err)
	assert.True(t, quote.Total.IsZero())
}

func TestQuote_RoundsOnlyAtTheEnd(t *testing.T) {
	rule := mathRule()
	rule.HourlyTuition = dec("33.335")
	card := &model.Discount{ID: 40, Amount: dec("10"), AmountType: model.AmountTypePercent, IsActive: true, PaymentMethod: model.PaymentMethodCreditCard}

	quote, err := Quote(&Input{
		Request: &Request{
			Tutoring:      []TutoringItem{{CategoryID: 3, AcademicLevel: model.AcademicLevelHigh, Duration: dec("1"), Sessions: 1}},
			PaymentMethod: model.PaymentMethodCreditCard,
		},
		PriceRules:             []*model.PriceRule{rule},
		PaymentMethodDiscounts: []*model.Discount{card},
	})
	require.NoError(t, err)
	assert.Equal(t, "33.34", quote.SubTotal.StringFixed(2))
	assert.Equal(t, "3.33", quote.DiscountTotal.StringFixed(2))
	// 33.335 - 3.3335 = 30.0015, а не 33.34 - 3.33
	assert.Equal(t, "30.00", quote.Total.StringFixed(2))
}

func TestQuote_Idempotent(t *testing.T) {
	course := algebraCourse()
	in := &Input{
		Request: &Request{
			Tutoring: []TutoringItem{{CategoryID: 3, AcademicLevel: model.AcademicLevelHigh, Duration: dec("2"), Sessions: 3, StudentID: 1}},
			Classes:  []ClassItem{{CourseID: course.ID, Sessions: 6, StudentID: 2}},
		},
		PriceRules: []*model.PriceRule{mathRule()},
		Courses:    map[int64]*model.Course{course.ID: course},
		MultiCourseDiscounts: []*model.Discount{
			{ID: 30, NumSessions: 5, Amount: dec("20"), AmountType: model.AmountTypeFixed, IsActive: true},
		},
	}

	first, err := Quote(in)
	require.NoError(t, err)
	second, err := Quote(in)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}
