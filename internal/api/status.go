package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Status struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

func (s *Server) status(c *gin.Context) {
	s.success(c, http.StatusOK, Status{
		Status:  "ok",
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
		Version: s.version,
	})
}
