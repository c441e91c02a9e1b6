package create

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

type DiscountCreator interface {
	CreateDiscount(ctx context.Context, in *service.DiscountInput) (*model.Discount, error)
}

type Response struct {
	response.Response
	Discount *model.Discount `json:"discount,omitempty"`
}

func New(log *zap.Logger, creator DiscountCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.discounts.create.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req service.DiscountInput
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}

		discount, err := creator.CreateDiscount(r.Context(), &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to create discount")
			return
		}

		log.Info("Discount created", zap.Int64("discount_id", discount.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Discount: discount})
	}
}
