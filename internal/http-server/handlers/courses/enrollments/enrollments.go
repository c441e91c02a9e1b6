package enrollments

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

type EnrollmentLister interface {
	ListCourseEnrollments(ctx context.Context, courseID int64) ([]*model.Enrollment, error)
}

type Response struct {
	response.Response
	Enrollments []*model.Enrollment `json:"enrollments"`
}

func New(log *zap.Logger, lister EnrollmentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.enrollments.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		courseID, err := request.ID(r)
		if err != nil {
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, err.Error())
			return
		}

		enrollments, err := lister.ListCourseEnrollments(r.Context(), courseID)
		if err != nil {
			response.Fail(w, r, log, err, "failed to list enrollments")
			return
		}
		if enrollments == nil {
			enrollments = []*model.Enrollment{}
		}

		render.JSON(w, r, Response{Enrollments: enrollments})
	}
}
