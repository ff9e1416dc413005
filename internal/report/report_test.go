package report

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

func testSession() *model.VotingSession {
	return &model.VotingSession{
		ID:        uuid.New(),
		Title:     "Week 42",
		StartDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC),
		Status:    model.SessionStatusFinalized,
	}
}

func menuItem(day int, meal model.MealType, mess model.MessType, name string, votes int) model.MenuItem {
	return model.MenuItem{
		ID:         uuid.New(),
		DateServed: time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC),
		MealType:   meal,
		MessType:   mess,
		Name:       name,
		VoteCount:  votes,
	}
}

func TestBuild_GroupsByDateAndMeal(t *testing.T) {
	items := []model.MenuItem{
		menuItem(21, model.MealDinner, model.MessVeg, "Paneer", 4),
		menuItem(19, model.MealLunch, model.MessVeg, "Dal", 2),
		menuItem(19, model.MealBreakfast, model.MessVeg, "Idli", 5),
		menuItem(19, model.MealBreakfast, model.MessNonVeg, "Omelette", 7),
	}
	now := time.Date(2026, 10, 26, 9, 0, 0, 0, time.UTC)

	m := Build(testSession(), model.MessVeg, items, true, now)

	require.Len(t, m.Days, 2)
	assert.Equal(t, 19, m.Days[0].Date.Day())
	assert.Equal(t, 21, m.Days[1].Date.Day())
	require.Len(t, m.Days[0].Meals, 4)
	assert.Equal(t, model.MealBreakfast, m.Days[0].Meals[0].MealType)
	assert.Equal(t, "Idli", m.Days[0].Meals[0].Items[0].Name)
	assert.Equal(t, "Dal", m.Days[0].Meals[1].Items[0].Name)
	assert.Empty(t, m.Days[0].Meals[3].Items)
	assert.Equal(t, 3, m.ItemCount(), "other mess types are dropped")
	assert.Equal(t, "menu-report-veg-2026-10-26.png", m.Filename())
}

func TestRender_ProducesPNG(t *testing.T) {
	items := []model.MenuItem{
		menuItem(19, model.MealBreakfast, model.MessVeg, "Idli", 5),
		menuItem(19, model.MealBreakfast, model.MessVeg, "A very long dish name that certainly does not fit in one column", 1),
		menuItem(20, model.MealSnacks, model.MessVeg, "Samosa", 3),
	}
	m := Build(testSession(), model.MessVeg, items, true, time.Now())

	data, err := Render(m)

	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
}

func TestRender_EmptyMenu(t *testing.T) {
	m := Build(testSession(), model.MessSpecial, nil, false, time.Now())

	data, err := Render(m)

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
