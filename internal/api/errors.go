package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrRegistrationClosed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSessionNotOpen),
		errors.Is(err, service.ErrSessionNotDraft):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ошибку в ответ; внутренние ошибки логируются и скрываются от клиента
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		s.fail(c, status, "internal error")
		return
	}
	s.fail(c, status, err.Error())
}
