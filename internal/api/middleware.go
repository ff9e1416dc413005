package api

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

const (
	profileHeader   = "X-Profile-ID"
	requestIDHeader = "X-Request-ID"
	profileKey      = "profile"
)

// requestID takes the caller's X-Request-ID or generates one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog logs every request with zap and records HTTP metrics
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		s.metrics.HTTPRequest(route, c.Request.Method, strconv.Itoa(status), elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn("HTTP request", fields...)
			return
		}
		s.logger.Debug("HTTP request", fields...)
	}
}

// identify загружает профиль вызывающего по заголовку X-Profile-ID.
// Аутентификация выполняется внешним прокси, который и проставляет заголовок.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(profileHeader)
		if raw == "" {
			s.fail(c, http.StatusUnauthorized, "missing "+profileHeader+" header")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			s.fail(c, http.StatusUnauthorized, "invalid "+profileHeader+" header")
			return
		}

		profile, err := s.profiles.Get(c.Request.Context(), id)
		if err != nil {
			if statusFor(err) == http.StatusNotFound {
				s.fail(c, http.StatusUnauthorized, "unknown profile")
				return
			}
			s.respondError(c, err)
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// requireRole пропускает только перечисленные роли
func (s *Server) requireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, currentProfile(c).Role) {
			s.fail(c, http.StatusForbidden, "role not allowed")
			return
		}
		c.Next()
	}
}

func currentProfile(c *gin.Context) *model.Profile {
	if v, ok := c.Get(profileKey); ok {
		if p, ok := v.(*model.Profile); ok {
			return p
		}
	}
	return &model.Profile{}
}
