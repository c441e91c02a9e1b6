package create

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/pricing"
)

type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req *pricing.Request) (*model.Invoice, error)
}

type Response struct {
	response.Response
	Invoice *model.Invoice `json:"invoice,omitempty"`
}

// New выставляет счёт родителю и записывает учеников на классы
func New(log *zap.Logger, creator InvoiceCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.create.New"

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

		invoice, err := creator.CreateInvoice(r.Context(), &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to create invoice")
			return
		}

		log.Info("Invoice created", zap.Int64("invoice_id", invoice.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Invoice: invoice})
	}
}
