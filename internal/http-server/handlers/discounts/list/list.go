package list

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/request"
	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

type DiscountLister interface {
	ListDiscounts(ctx context.Context, params service.ListParams) (service.Page[*model.Discount], error)
}

type Response struct {
	response.Response
	service.Page[*model.Discount]
}

func New(log *zap.Logger, lister DiscountLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.discounts.list.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		params := request.ListParams(r)

		page, err := lister.ListDiscounts(r.Context(), params)
		if err != nil {
			response.Fail(w, r, log, err, "failed to list discounts")
			return
		}

		log.Debug("Discounts listed", zap.String("query", params.Query), zap.Int("total", page.Total))

		render.JSON(w, r, Response{Page: page})
	}
}
