package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for date_served and session bounds.
const DateLayout = "2006-01-02"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSnacks    MealType = "snacks"
	MealDinner    MealType = "dinner"
)

// MealTypes lists meal types in serving order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealSnacks, MealDinner}

func (m MealType) Valid() bool {
	return m.Order() >= 0
}

// Order returns the position of the meal within a day, or -1 for unknown values.
func (m MealType) Order() int {
	for i, t := range MealTypes {
		if t == m {
			return i
		}
	}
	return -1
}

type MessType string

const (
	MessVeg      MessType = "veg"
	MessNonVeg   MessType = "non_veg"
	MessSpecial  MessType = "special"
	MessFoodPark MessType = "food_park"
)

var MessTypes = []MessType{MessVeg, MessNonVeg, MessSpecial, MessFoodPark}

func (m MessType) Valid() bool {
	for _, t := range MessTypes {
		if t == m {
			return true
		}
	}
	return false
}

// Slot groups menu items that compete with each other for votes and for the final menu.
type Slot struct {
	DateServed string   `json:"date_served"`
	MealType   MealType `json:"meal_type"`
	MessType   MessType `json:"mess_type"`
}

// MenuItem is a dish proposed for one slot of a voting session.
type MenuItem struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   uuid.UUID  `json:"session_id"`
	DateServed  time.Time  `json:"date_served"`
	MealType    MealType   `json:"meal_type"`
	MessType    MessType   `json:"mess_type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsSelected  *bool      `json:"is_selected"` // nil until the finalization decision is made
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Derived on read, never stored
	VoteCount int `json:"vote_count"`
}

// Slot returns the slot the item competes in.
func (i *MenuItem) Slot() Slot {
	return Slot{
		DateServed: i.DateServed.Format(DateLayout),
		MealType:   i.MealType,
		MessType:   i.MessType,
	}
}

// Selected reports whether the item is flagged as part of the final menu.
func (i *MenuItem) Selected() bool {
	return i.IsSelected != nil && *i.IsSelected
}

// SetSelected stores a decided flag.
func (i *MenuItem) SetSelected(v bool) {
	i.IsSelected = &v
}
