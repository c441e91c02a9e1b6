package save

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

type CourseSaver interface {
	SaveCourse(ctx context.Context, in *service.CourseInput) (*service.CourseResult, error)
}

type Response struct {
	response.Response
	*service.CourseResult
}

// New создаёт курс с расписанием или обновляет курс и переносит его будущие занятия
func New(log *zap.Logger, saver CourseSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.save.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req service.CourseInput
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}

		result, err := saver.SaveCourse(r.Context(), &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to save course")
			return
		}

		log.Info("Course saved",
			zap.Int64("course_id", result.Course.ID),
			zap.Int("sessions_created", result.SessionsCreated),
			zap.Int("sessions_updated", result.SessionsUpdated))

		if req.ID == 0 {
			render.Status(r, http.StatusCreated)
		}
		render.JSON(w, r, Response{CourseResult: result})
	}
}
