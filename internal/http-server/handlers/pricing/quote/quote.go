package quote

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/pricing"
)

type Quoter interface {
	PriceQuoteTotal(ctx context.Context, req *pricing.Request) (*pricing.Breakdown, error)
}

type Response struct {
	response.Response
	*pricing.Breakdown
}

// New считает стоимость заявки без сохранения
func New(log *zap.Logger, quoter Quoter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pricing.quote.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req pricing.Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}

		breakdown, err := quoter.PriceQuoteTotal(r.Context(), &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to compute quote")
			return
		}

		render.JSON(w, r, Response{Breakdown: breakdown})
	}
}
