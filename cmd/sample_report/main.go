// Command sample_report renders a menu report from built-in demo data, without a database.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/report"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

var dishes = map[model.MealType][]string{
	model.MealBreakfast: {"Poha", "Idli sambar", "Aloo paratha"},
	model.MealLunch:     {"Dal tadka", "Rajma chawal", "Veg biryani"},
	model.MealSnacks:    {"Samosa", "Bhel puri"},
	model.MealDinner:    {"Paneer butter masala", "Chole", "Mix veg"},
}

func main() {
	now := time.Now()
	// Неделя с ближайшего понедельника
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}
	end := start.AddDate(0, 0, 6)

	session := &model.VotingSession{
		ID:        uuid.New(),
		Title:     "Week of " + start.Format("02 Jan"),
		StartDate: start,
		EndDate:   end,
		Status:    model.SessionStatusFinalized,
	}

	// Детерминированные голоса, чтобы в каждом слоте был победитель
	var items []model.MenuItem
	for d := 0; d < 7; d++ {
		for _, meal := range model.MealTypes {
			for i, name := range dishes[meal] {
				items = append(items, model.MenuItem{
					ID:         uuid.New(),
					SessionID:  session.ID,
					DateServed: start.AddDate(0, 0, d),
					MealType:   meal,
					MessType:   model.MessVeg,
					Name:       name,
					VoteCount:  (d + i*3) % 5,
				})
			}
		}
	}

	menu := report.Build(session, model.MessVeg, voting.ReportWinners(items), true, now)
	data, err := report.Render(menu)
	if err != nil {
		fmt.Printf("❌ Render failed: %v\n", err)
		os.Exit(1)
	}

	filename := menu.Filename()
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		fmt.Printf("❌ Write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Saved %s\n", filename)
	fmt.Printf("📅 %s - %s\n", start.Format(model.DateLayout), end.Format(model.DateLayout))
	fmt.Printf("🍽 Dishes: %d of %d\n", menu.ItemCount(), len(items))
}
