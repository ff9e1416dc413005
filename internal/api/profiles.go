package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

type registerRequest struct {
	FullName          string           `json:"full_name"`
	Role              model.Role       `json:"role"`
	MessType          model.MessType   `json:"mess_type"`
	RegNumber         string           `json:"reg_number"`
	ServedMessTypes   []model.MessType `json:"served_mess_types"`
	AssignedCatererID uuid.UUID        `json:"assigned_caterer_id"`
}

type messTypeRequest struct {
	MessType model.MessType `json:"mess_type"`
}

func (s *Server) registerProfile(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	profile, err := s.profiles.Register(c.Request.Context(), service.Registration{
		FullName:          req.FullName,
		Role:              req.Role,
		MessType:          req.MessType,
		RegNumber:         req.RegNumber,
		ServedMessTypes:   req.ServedMessTypes,
		AssignedCatererID: req.AssignedCatererID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusCreated, profile)
}

func (s *Server) me(c *gin.Context) {
	s.success(c, http.StatusOK, currentProfile(c))
}

// changeMessType меняет столовую; голоса студента удаляются
func (s *Server) changeMessType(c *gin.Context) {
	var req messTypeRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	profileID := currentProfile(c).ID
	deleted, err := s.profiles.ChangeMessType(c.Request.Context(), profileID, req.MessType)
	if err != nil {
		s.respondError(c, err)
		return
	}
	profile, err := s.profiles.Get(c.Request.Context(), profileID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, gin.H{"profile": profile, "deleted_votes": deleted})
}

func (s *Server) listCaterers(c *gin.Context) {
	caterers, err := s.profiles.ListCaterers(c.Request.Context(), model.MessType(c.Query("mess_type")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, caterers)
}
