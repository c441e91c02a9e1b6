// Package response общий формат ошибок REST API.
package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrCode код ошибки в ответе
type ErrCode string

const (
	FailedRequest    ErrCode = "REQUEST_FAILED"
	BadRequest       ErrCode = "FAILED_TO_DECODE"
	ValidationFailed ErrCode = "VALIDATION_FAILED"
	NotFound         ErrCode = "NOT_FOUND"
)

func Error(code ErrCode, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(code),
			Message: msg,
		},
	}
}

// WriteError пишет ошибку с указанным статусом
func WriteError(w http.ResponseWriter, r *http.Request, status int, code ErrCode, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(code, msg))
}

// Fail переводит ошибку сервиса в ответ: ValidationError - 400 с исходным
// сообщением, ErrNotFound - 404, остальное - 500 с сообщением msg
func Fail(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, msg string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		log.Info("Request rejected", zap.String("reason", ve.Message))
		WriteError(w, r, http.StatusBadRequest, ValidationFailed, ve.Message)
	case errors.Is(err, service.ErrNotFound):
		log.Info("Resource not found", zap.Error(err))
		WriteError(w, r, http.StatusNotFound, NotFound, err.Error())
	default:
		log.Error(msg, zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, FailedRequest, msg)
	}
}
