package get

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/request"
	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

type InvoiceGetter interface {
	GetInvoice(ctx context.Context, id int64) (*model.Invoice, error)
}

type Response struct {
	response.Response
	Invoice *model.Invoice `json:"invoice,omitempty"`
}

func New(log *zap.Logger, getter InvoiceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.get.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := request.ID(r)
		if err != nil {
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, err.Error())
			return
		}

		invoice, err := getter.GetInvoice(r.Context(), id)
		if err != nil {
			response.Fail(w, r, log, err, "failed to get invoice")
			return
		}

		render.JSON(w, r, Response{Invoice: invoice})
	}
}
