package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type submitFeedbackRequest struct {
	CatererID uuid.UUID `json:"caterer_id"`
	Message   string    `json:"message"`
}

type respondFeedbackRequest struct {
	Response string `json:"response"`
}

func (s *Server) myFeedback(c *gin.Context) {
	list, err := s.feedback.ListForStudent(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, list)
}

func (s *Server) submitFeedback(c *gin.Context) {
	var req submitFeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	fb, err := s.feedback.Submit(c.Request.Context(), currentProfile(c).ID, req.CatererID, req.Message)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusCreated, fb)
}

func (s *Server) feedbackInbox(c *gin.Context) {
	list, err := s.feedback.ListForCaterer(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, list)
}

func (s *Server) respondFeedback(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req respondFeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	fb, err := s.feedback.Respond(c.Request.Context(), currentProfile(c).ID, id, req.Response)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, fb)
}
