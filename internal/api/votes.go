package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

type voteRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
}

func (s *Server) myVotes(c *gin.Context) {
	votes, err := s.votes.ListByUser(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, votes)
}

// userVotes: админ видит чужие голоса, остальные только свои
func (s *Server) userVotes(c *gin.Context) {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	caller := currentProfile(c)
	if !caller.IsAdmin() && caller.ID != userID {
		s.respondError(c, service.ErrForbidden)
		return
	}

	votes, err := s.votes.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, votes)
}

func (s *Server) castVote(c *gin.Context) {
	var req voteRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.votes.Cast(c.Request.Context(), currentProfile(c).ID, req.MenuItemID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, res)
}

func (s *Server) toggleVote(c *gin.Context) {
	var req voteRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.votes.Toggle(c.Request.Context(), currentProfile(c).ID, req.MenuItemID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, res)
}

func (s *Server) removeVote(c *gin.Context) {
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.votes.Remove(c.Request.Context(), currentProfile(c).ID, itemID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, res)
}

func (s *Server) voteCounts(c *gin.Context) {
	sessionID, err := uuidParam(c, "sessionId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	counts, err := s.votes.CountsBySession(c.Request.Context(), sessionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	total, err := s.votes.TotalBySession(c.Request.Context(), sessionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.success(c, http.StatusOK, gin.H{"counts": counts, "total": total})
}
