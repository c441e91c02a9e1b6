package payment

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/request"
	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

type PaymentRecorder interface {
	RecordPayment(ctx context.Context, invoiceID int64, in *service.PaymentInput) (*service.PaymentResult, error)
}

type Response struct {
	response.Response
	*service.PaymentResult
}

func New(log *zap.Logger, recorder PaymentRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.payment.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		invoiceID, err := request.ID(r)
		if err != nil {
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, err.Error())
			return
		}

		var req service.PaymentInput
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}

		result, err := recorder.RecordPayment(r.Context(), invoiceID, &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to record payment")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{PaymentResult: result})
	}
}
