package sessions

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

type SessionLister interface {
	ListCourseSessions(ctx context.Context, courseID int64) ([]*model.Session, error)
}

type Response struct {
	response.Response
	Sessions []*model.Session `json:"sessions"`
}

func New(log *zap.Logger, lister SessionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.sessions.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		courseID, err := request.ID(r)
		if err != nil {
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, err.Error())
			return
		}

		sessions, err := lister.ListCourseSessions(r.Context(), courseID)
		if err != nil {
			response.Fail(w, r, log, err, "failed to list sessions")
			return
		}

		render.JSON(w, r, Response{Sessions: sessions})
	}
}
