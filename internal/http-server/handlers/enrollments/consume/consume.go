package consume

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

type SessionConsumer interface {
	ConsumeSession(ctx context.Context, enrollmentID int64) (*model.Enrollment, error)
}

type Response struct {
	response.Response
	Enrollment *model.Enrollment `json:"enrollment,omitempty"`
}

// New отмечает посещённое занятие по записи
func New(log *zap.Logger, consumer SessionConsumer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.enrollments.consume.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := request.ID(r)
		if err != nil {
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, err.Error())
			return
		}

		enrollment, err := consumer.ConsumeSession(r.Context(), id)
		if err != nil {
			response.Fail(w, r, log, err, "failed to consume session")
			return
		}

		render.JSON(w, r, Response{Enrollment: enrollment})
	}
}
