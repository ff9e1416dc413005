package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url"`
}

type settingRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.events.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, events)
}

func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	event, err := s.events.Create(c.Request.Context(), service.NewEvent{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusCreated, event)
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.events.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listSettings(c *gin.Context) {
	settings, err := s.settings.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, settings)
}

func (s *Server) setSetting(c *gin.Context) {
	var req settingRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	key := c.Param("key")
	if err := s.settings.Set(c.Request.Context(), key, req.Enabled); err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, gin.H{"setting_key": key, "enabled": req.Enabled})
}
