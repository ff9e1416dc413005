package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

type addMenuItemRequest struct {
	SessionID   uuid.UUID      `json:"session_id"`
	DateServed  string         `json:"date_served"`
	MealType    model.MealType `json:"meal_type"`
	MessType    model.MessType `json:"mess_type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
}

func (s *Server) listMenu(c *gin.Context) {
	sessionID, err := uuidParam(c, "sessionId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	items, err := s.menu.ListBySession(c.Request.Context(), sessionID, model.MessType(c.Query("mess_type")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, items)
}

func (s *Server) finalMenu(c *gin.Context) {
	sessionID, err := uuidParam(c, "sessionId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	items, err := s.menu.SelectedItems(c.Request.Context(), sessionID, model.MessType(c.Query("mess_type")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	s.success(c, http.StatusOK, items)
}

func (s *Server) addMenuItem(c *gin.Context) {
	var req addMenuItemRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	served, err := parseDate(req.DateServed, "date_served")
	if err != nil {
		s.respondError(c, err)
		return
	}

	item, err := s.menu.AddItem(c.Request.Context(), currentProfile(c).ID, service.NewMenuItem{
		SessionID:   req.SessionID,
		DateServed:  served,
		MealType:    req.MealType,
		MessType:    req.MessType,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusCreated, item)
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.menu.DeleteItem(c.Request.Context(), currentProfile(c).ID, id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
