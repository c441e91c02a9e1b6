package update

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

type SessionUpdater interface {
	UpdateSession(ctx context.Context, id int64, in *service.SessionInput) (*model.Session, error)
}

type Response struct {
	response.Response
	Session *model.Session `json:"session,omitempty"`
}

// New переносит одно занятие. Время передаётся в RFC 3339
func New(log *zap.Logger, updater SessionUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.update.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := request.ID(r)
		if err != nil {
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, err.Error())
			return
		}

		var req service.SessionInput
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "failed to decode request")
			return
		}

		session, err := updater.UpdateSession(r.Context(), id, &req)
		if err != nil {
			response.Fail(w, r, log, err, "failed to update session")
			return
		}

		render.JSON(w, r, Response{Session: session})
	}
}
