// Package api exposes the services over a JSON REST API built on gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

// Deps сервисы, которые нужны обработчикам
type Deps struct {
	Sessions     *service.SessionService
	Menu         *service.MenuService
	Votes        *service.VoteService
	Profiles     *service.ProfileService
	Finalization *service.FinalizationService
	Reports      *service.ReportService
	Feedback     *service.FeedbackService
	Events       *service.EventService
	Settings     *service.SettingsService

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil disables /metrics
	Version  string
	Logger   *zap.Logger
}

type Server struct {
	sessions     *service.SessionService
	menu         *service.MenuService
	votes        *service.VoteService
	profiles     *service.ProfileService
	finalization *service.FinalizationService
	reports      *service.ReportService
	feedback     *service.FeedbackService
	events       *service.EventService
	settings     *service.SettingsService

	metrics   *metrics.Metrics
	version   string
	logger    *zap.Logger
	startedAt time.Time
	router    *gin.Engine
	http      *http.Server
}

func NewServer(d Deps) *Server {
	version := d.Version
	if version == "" {
		version = "v1"
	}
	s := &Server{
		sessions:     d.Sessions,
		menu:         d.Menu,
		votes:        d.Votes,
		profiles:     d.Profiles,
		finalization: d.Finalization,
		reports:      d.Reports,
		feedback:     d.Feedback,
		events:       d.Events,
		settings:     d.Settings,
		metrics:      d.Metrics,
		version:      version,
		logger:       d.Logger,
		startedAt:    time.Now(),
	}
	s.router = s.routes(d.Gatherer)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.GET("/status", s.status)
	api.POST("/profiles", s.registerProfile)

	authed := api.Group("")
	authed.Use(s.identify())

	admin := s.requireRole(model.RoleAdmin)
	student := s.requireRole(model.RoleStudent)
	caterer := s.requireRole(model.RoleCaterer)
	kitchen := s.requireRole(model.RoleCaterer, model.RoleAdmin)

	sessions := authed.Group("/sessions")
	{
		sessions.GET("", s.listSessions)
		sessions.GET("/current", s.currentSession)
		sessions.GET("/:id", s.getSession)
		sessions.POST("", admin, s.createSession)
		sessions.PATCH("/:id/status", admin, s.updateSessionStatus)
		sessions.DELETE("/:id", admin, s.deleteSession)
		sessions.GET("/:id/finalize", admin, s.previewFinalization)
		sessions.POST("/:id/finalize", admin, s.confirmFinalization)
	}

	menu := authed.Group("/menu")
	{
		menu.GET("/session/:sessionId", s.listMenu)
		menu.GET("/session/:sessionId/final", s.finalMenu)
		menu.POST("", kitchen, s.addMenuItem)
		menu.DELETE("/:id", kitchen, s.deleteMenuItem)
	}

	votes := authed.Group("/votes")
	{
		votes.GET("/me", student, s.myVotes)
		votes.GET("/user/:userId", s.userVotes)
		votes.POST("", student, s.castVote)
		votes.POST("/toggle", student, s.toggleVote)
		votes.DELETE("/:itemId", student, s.removeVote)
		votes.GET("/session/:sessionId/counts", s.voteCounts)
	}

	profiles := authed.Group("/profiles")
	{
		profiles.GET("/me", s.me)
		profiles.PATCH("/me/mess-type", student, s.changeMessType)
		profiles.GET("/caterers", s.listCaterers)
	}

	feedback := authed.Group("/feedback")
	{
		feedback.GET("", student, s.myFeedback)
		feedback.POST("", student, s.submitFeedback)
		feedback.GET("/inbox", caterer, s.feedbackInbox)
		feedback.POST("/:id/response", caterer, s.respondFeedback)
	}

	events := authed.Group("/events")
	{
		events.GET("", s.listEvents)
		events.POST("", admin, s.createEvent)
		events.DELETE("/:id", admin, s.deleteEvent)
	}

	settings := authed.Group("/settings")
	{
		settings.GET("", s.listSettings)
		settings.PUT("/:key", admin, s.setSetting)
	}

	authed.GET("/reports/:sessionId/:messType", admin, s.downloadReport)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	return s.http.Shutdown(shutdownCtx)
}
