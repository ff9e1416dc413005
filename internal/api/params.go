package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return id, nil
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", service.ErrValidation, field)
	}
	return t, nil
}

// bindJSON decodes the request body and reports malformed input as a validation error
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	return nil
}
