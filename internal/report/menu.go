// Package report groups a session's menu for export and renders it as a PNG.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// Menu is a session's menu for one mess type, grouped by day and meal.
type Menu struct {
	SessionID   uuid.UUID           `json:"session_id"`
	Title       string              `json:"title"`
	MessType    model.MessType      `json:"mess_type"`
	Status      model.SessionStatus `json:"status"`
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
	Final       bool                `json:"final"` // items are the final selection, not every proposal
	Days        []Day               `json:"days"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type Day struct {
	Date  time.Time `json:"date"`
	Meals []Meal    `json:"meals"`
}

// Meal always exists for every meal type of a day, Items may be empty.
type Meal struct {
	MealType model.MealType   `json:"meal_type"`
	Items    []model.MenuItem `json:"items"`
}

// Build groups items by date, then by meal in serving order. Items of other
// mess types are dropped.
func Build(session *model.VotingSession, mess model.MessType, items []model.MenuItem, final bool, now time.Time) *Menu {
	byDate := make(map[string]*Day)
	var keys []string

	for _, it := range items {
		if it.MessType != mess || it.MealType.Order() < 0 {
			continue
		}
		key := it.DateServed.Format(model.DateLayout)
		day, ok := byDate[key]
		if !ok {
			day = &Day{Date: it.DateServed, Meals: make([]Meal, len(model.MealTypes))}
			for i, mt := range model.MealTypes {
				day.Meals[i].MealType = mt
			}
			byDate[key] = day
			keys = append(keys, key)
		}
		meal := &day.Meals[it.MealType.Order()]
		meal.Items = append(meal.Items, it)
	}

	sort.Strings(keys)
	days := make([]Day, 0, len(keys))
	for _, k := range keys {
		days = append(days, *byDate[k])
	}

	return &Menu{
		SessionID:   session.ID,
		Title:       session.Title,
		MessType:    mess,
		Status:      session.Status,
		StartDate:   session.StartDate,
		EndDate:     session.EndDate,
		Final:       final,
		Days:        days,
		GeneratedAt: now,
	}
}

// ItemCount returns the number of items across all days.
func (m *Menu) ItemCount() int {
	n := 0
	for _, d := range m.Days {
		for _, meal := range d.Meals {
			n += len(meal.Items)
		}
	}
	return n
}

// Filename is the download name of the rendered report.
func (m *Menu) Filename() string {
	return fmt.Sprintf("menu-report-%s-%s.png", m.MessType, m.GeneratedAt.Format(model.DateLayout))
}
