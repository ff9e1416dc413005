package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleCaterer Role = "caterer"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCaterer || r == RoleAdmin
}

type Profile struct {
	ID                uuid.UUID  `json:"id"`
	FullName          string     `json:"full_name"`
	Role              Role       `json:"role"`
	MessType          *MessType  `json:"mess_type,omitempty"`           // students
	RegNumber         *string    `json:"reg_number,omitempty"`          // students
	ServedMessTypes   []MessType `json:"served_mess_types,omitempty"`   // caterers
	AssignedCatererID *uuid.UUID `json:"assigned_caterer_id,omitempty"` // students
	TelegramID        *int64     `json:"telegram_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (p *Profile) IsStudent() bool { return p.Role == RoleStudent }
func (p *Profile) IsCaterer() bool { return p.Role == RoleCaterer }
func (p *Profile) IsAdmin() bool   { return p.Role == RoleAdmin }

// Serves checks that a caterer cooks for the given mess type.
func (p *Profile) Serves(mess MessType) bool {
	return slices.Contains(p.ServedMessTypes, mess)
}

// Mess returns the student's mess type or an empty value.
func (p *Profile) Mess() MessType {
	if p.MessType == nil {
		return ""
	}
	return *p.MessType
}
