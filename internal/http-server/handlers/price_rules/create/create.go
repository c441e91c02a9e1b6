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

type PriceRuleCreator interface {
	CreatePriceRule(ctx context.Context, in *service.PriceRuleInput) (*model.PriceRule, error)
}

type Response struct {
	response.Response
	PriceRule *model.PriceRule `json:"price_rule,omitempty"`
}

func New(log *zap.Logger, creator PriceRuleCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.price_rules.create.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req service.PriceRuleInput
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}

		rule, err := creator.CreatePriceRule(r.Context(), &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to create price rule")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{PriceRule: rule})
	}
}
