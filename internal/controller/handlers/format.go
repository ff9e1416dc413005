package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/mess_voting_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/report"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

const dayLayout = "Mon 02 Jan"

var messLabels = map[model.MessType]string{
	model.MessVeg:      "🥦 Veg",
	model.MessNonVeg:   "🍗 Non-veg",
	model.MessSpecial:  "⭐ Special",
	model.MessFoodPark: "🍔 Food park",
}

var mealLabels = map[model.MealType]string{
	model.MealBreakfast: "🍳 Breakfast",
	model.MealLunch:     "🍛 Lunch",
	model.MealSnacks:    "☕ Snacks",
	model.MealDinner:    "🍲 Dinner",
}

func messLabel(m model.MessType) string {
	if l, ok := messLabels[m]; ok {
		return l
	}
	return string(m)
}

func mealLabel(m model.MealType) string {
	if l, ok := mealLabels[m]; ok {
		return l
	}
	return string(m)
}

// messKeyboard кнопки выбора столовой с префиксом callback
func messKeyboard(prefix string, except model.MessType) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(model.MessTypes))
	for _, m := range model.MessTypes {
		if m == except {
			continue
		}
		buttons = append(buttons, keyboard.Button(messLabel(m), prefix+string(m)))
	}
	return keyboard.NewBuilder().Grid(2, buttons...).Build()
}

// sessionDays дни сессии, для которых есть пункты меню
func sessionDays(items []model.MenuItem) []time.Time {
	seen := make(map[string]bool)
	var days []time.Time
	for _, it := range items {
		key := it.DateServed.Format(model.DateLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, it.DateServed)
	}
	// items приходят отсортированными по дате
	return days
}

func daysKeyboard(days []time.Time) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(days))
	for _, d := range days {
		buttons = append(buttons, keyboard.Button(d.Format(dayLayout), CallbackVoteDay+d.Format(model.DateLayout)))
	}
	return keyboard.NewBuilder().Grid(2, buttons...).Build()
}

// dayItems пункты одного дня в порядке приёмов пищи
func dayItems(items []model.MenuItem, day string) []model.MenuItem {
	var out []model.MenuItem
	for _, mt := range model.MealTypes {
		for _, it := range items {
			if it.MealType == mt && it.DateServed.Format(model.DateLayout) == day {
				out = append(out, it)
			}
		}
	}
	return out
}

// voteDayText заголовок экрана голосования за день
func voteDayText(session *model.VotingSession, mess model.MessType, day time.Time) string {
	return fmt.Sprintf("🗳 %s\n%s · %s\n\nTap a dish to vote. One dish per meal.",
		session.Title, messLabel(mess), day.Format(dayLayout))
}

// voteDayKeyboard одна кнопка на пункт: ✅ у выбранного, число голосов в скобках
func voteDayKeyboard(items []model.MenuItem, votes voting.VoteSet) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()
	var meal model.MealType
	for _, it := range items {
		if it.MealType != meal {
			meal = it.MealType
			kb.Row(keyboard.Button("· "+mealLabel(meal)+" ·", CallbackNoop))
		}
		mark := "▫️"
		if votes.Has(it.ID) {
			mark = "✅"
		}
		kb.Row(keyboard.Button(fmt.Sprintf("%s %s (%d)", mark, it.Name, it.VoteCount), CallbackVote+it.ID.String()))
	}
	kb.Row(keyboard.Button("⬅️ Days", CallbackVoteDays))
	return kb.Build()
}

// formatMenu текст меню для /menu
func formatMenu(m *report.Menu) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🍽 %s\n%s\n", m.Title, messLabel(m.MessType))
	if m.ItemCount() == 0 {
		sb.WriteString("\nNo dishes selected yet.")
		return sb.String()
	}
	for _, d := range m.Days {
		fmt.Fprintf(&sb, "\n📅 %s\n", d.Date.Format(dayLayout))
		for _, meal := range d.Meals {
			if len(meal.Items) == 0 {
				continue
			}
			names := make([]string, 0, len(meal.Items))
			for _, it := range meal.Items {
				names = append(names, it.Name)
			}
			fmt.Fprintf(&sb, "  %s: %s\n", mealLabel(meal.MealType), strings.Join(names, ", "))
		}
	}
	return sb.String()
}

// formatMyVotes список голосов студента в текущей сессии
func formatMyVotes(session *model.VotingSession, items []model.MenuItem, votes voting.VoteSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗳 Your votes in %s\n", session.Title)
	n := 0
	for _, it := range items {
		if !votes.Has(it.ID) {
			continue
		}
		n++
		fmt.Fprintf(&sb, "\n%s · %s: %s", it.DateServed.Format(dayLayout), mealLabel(it.MealType), it.Name)
	}
	if n == 0 {
		sb.WriteString("\nNo votes yet. Use /vote.")
	}
	return sb.String()
}

func messConfirmKeyboard(mess model.MessType) *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().Row(
		keyboard.Button("✅ Switch", CallbackMessConfirm+string(mess)),
		keyboard.Button("❌ Keep", CallbackMessCancel),
	).Build()
}
