package model

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// VoteCount is the number of votes an item received, computed on read.
type VoteCount struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Count      int       `json:"count"`
}
