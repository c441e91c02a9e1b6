package save

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

type StudentSaver interface {
	SaveAccount(ctx context.Context, in *service.AccountInput) (*model.Account, error)
}

type Response struct {
	response.Response
	Student *model.Account `json:"student,omitempty"`
}

// New создаёт ученика или, если в теле передан id, обновляет существующего
func New(log *zap.Logger, saver StudentSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.save.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req service.AccountInput
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}
		req.Role = model.AccountRoleStudent

		student, err := saver.SaveAccount(r.Context(), &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to save student")
			return
		}

		log.Info("Student saved", zap.Int64("account_id", student.ID))

		if req.ID == 0 {
			render.Status(r, http.StatusCreated)
		}
		render.JSON(w, r, Response{Student: student})
	}
}
