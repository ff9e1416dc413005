package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// downloadReport отдаёт PNG с меню сессии для одной столовой
func (s *Server) downloadReport(c *gin.Context) {
	sessionID, err := uuidParam(c, "sessionId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	rendered, err := s.reports.Render(c.Request.Context(), sessionID, model.MessType(c.Param("messType")))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	c.Data(http.StatusOK, "image/png", rendered.Data)
}
