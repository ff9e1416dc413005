package model

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a message from a student to a caterer, optionally answered.
type Feedback struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   uuid.UUID  `json:"student_id"`
	CatererID   uuid.UUID  `json:"caterer_id"`
	Message     string     `json:"message"`
	Response    *string    `json:"response,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	// Joined for display (not a column)
	CatererName string `json:"caterer_name,omitempty"`
	StudentName string `json:"student_name,omitempty"`
}

// IsAnswered checks if the caterer already replied
func (f *Feedback) IsAnswered() bool {
	return f.Response != nil && *f.Response != ""
}
