package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

type createSessionRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type statusRequest struct {
	Status model.SessionStatus `json:"status"`
}

type finalizeRequest struct {
	// menu item id -> is_selected; empty means "accept the computed selection"
	Selections map[uuid.UUID]bool `json:"selections"`
}

func (s *Server) listSessions(c *gin.Context) {
	var statuses []model.SessionStatus
	for _, raw := range c.QueryArray("status") {
		statuses = append(statuses, model.SessionStatus(raw))
	}
	sessions, err := s.sessions.ListByStatuses(c.Request.Context(), statuses...)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, sessions)
}

func (s *Server) currentSession(c *gin.Context) {
	session, err := s.sessions.Current(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, session)
}

func (s *Server) getSession(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	session, err := s.sessions.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, session)
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		s.respondError(c, err)
		return
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.sessions.Create(c.Request.Context(), req.Title, start, end)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusCreated, session)
}

func (s *Server) updateSessionStatus(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.sessions.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, session)
}

func (s *Server) deleteSession(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.sessions.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) previewFinalization(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	preview, err := s.finalization.Preview(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, preview)
}

func (s *Server) confirmFinalization(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req finalizeRequest
	// an empty body is allowed
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			s.respondError(c, err)
			return
		}
	}

	session, err := s.finalization.Confirm(c.Request.Context(), id, req.Selections)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, session)
}
