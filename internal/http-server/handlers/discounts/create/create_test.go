package create

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

type fakeCreator struct {
	got *service.DiscountInput
	err error
}

func (f *fakeCreator) CreateDiscount(_ context.Context, in *service.DiscountInput) (*model.Discount, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Discount{ID: 3, Name: in.Name, Kind: in.Kind, Amount: in.Amount, AmountType: in.AmountType, IsActive: true}, nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		want   string
	}{
		{
			name:   "created",
			body:   `{"name":"Ten sessions","kind":"multi_course","amount":"10","amount_type":"percent","num_sessions":10}`,
			status: http.StatusCreated,
			want:   `"amount":"10"`,
		},
		{
			name:   "invalid json",
			body:   `[`,
			status: http.StatusBadRequest,
			want:   `"FAILED_TO_DECODE"`,
		},
		{
			name:   "validation",
			body:   `{"name":"X","kind":"multi_course","amount":"10","amount_type":"percent"}`,
			err:    &service.ValidationError{Message: "Multi-course discount requires num_sessions of at least 1"},
			status: http.StatusBadRequest,
			want:   `"VALIDATION_FAILED"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{err: tt.err}
			handler := New(zap.NewNop(), creator)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/discounts", strings.NewReader(tt.body))
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
