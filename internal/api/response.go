package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// Structs for the API response format

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	RequestID string    `json:"requestId"`
}

type APIResponse struct {
	Data     interface{} `json:"data"`
	Errors   []string    `json:"errors"`
	Metadata Metadata    `json:"metadata"`
}

func CreateAPIResponse(data interface{}, errors []string, requestID, version string) APIResponse {
	// Generate a request id when no middleware cascaded one
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if errors == nil {
		errors = []string{}
	}
	return APIResponse{
		Data:   data,
		Errors: errors,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Version:   version,
			RequestID: requestID,
		},
	}
}

func (s *Server) success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, CreateAPIResponse(data, nil, c.GetString(requestIDKey), s.version))
}

func (s *Server) fail(c *gin.Context, status int, errs ...string) {
	c.AbortWithStatusJSON(status, CreateAPIResponse(nil, errs, c.GetString(requestIDKey), s.version))
}
