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

type PriceRuleLister interface {
	ListPriceRules(ctx context.Context, params service.ListParams) (service.Page[*model.PriceRule], error)
}

type Response struct {
	response.Response
	service.Page[*model.PriceRule]
}

func New(log *zap.Logger, lister PriceRuleLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.price_rules.list.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		page, err := lister.ListPriceRules(r.Context(), request.ListParams(r))
		if err != nil {
			response.Fail(w, r, log, err, "failed to list price rules")
			return
		}

		render.JSON(w, r, Response{Page: page})
	}
}
