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

type CourseLister interface {
	ListCourses(ctx context.Context, params service.ListParams) (service.Page[*model.Course], error)
}

type Response struct {
	response.Response
	service.Page[*model.Course]
}

func New(log *zap.Logger, lister CourseLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.list.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		page, err := lister.ListCourses(r.Context(), request.ListParams(r))
		if err != nil {
			response.Fail(w, r, log, err, "failed to list courses")
			return
		}

		render.JSON(w, r, Response{Page: page})
	}
}
