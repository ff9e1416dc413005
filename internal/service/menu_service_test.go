package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
	"github.com/Freeeeeet/mess_voting_bot/internal/service/servicetest"
)

func TestMenuService_AddItem(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	draft := env.Session(t, model.SessionStatusDraft)
	open := env.Session(t, model.SessionStatusOpenForVoting)
	caterer := env.Caterer(t, model.MessVeg)
	student := env.Student(t, model.MessVeg)
	admin := env.Admin(t)

	valid := service.NewMenuItem{
		SessionID:  draft.ID,
		DateServed: servicetest.Date(20),
		MealType:   model.MealLunch,
		MessType:   model.MessVeg,
		Name:       "Dal makhani",
	}

	item, err := env.MenuSvc.AddItem(ctx, caterer.ID, valid)
	require.NoError(t, err)
	assert.Equal(t, "Dal makhani", item.Name)
	require.NotNil(t, item.CreatedBy)
	assert.Equal(t, caterer.ID, *item.CreatedBy)
	assert.Nil(t, item.IsSelected)

	withMess := func(m model.MessType) service.NewMenuItem { v := valid; v.MessType = m; return v }
	withDay := func(d int) service.NewMenuItem { v := valid; v.DateServed = servicetest.Date(d); return v }
	inOpen := valid
	inOpen.SessionID = open.ID
	badMeal := valid
	badMeal.MealType = "brunch"
	noName := valid
	noName.Name = "  "

	tests := []struct {
		name  string
		actor *model.Profile
		in    service.NewMenuItem
		want  error
	}{
		{"student", student, valid, service.ErrForbidden},
		{"caterer other mess", caterer, withMess(model.MessNonVeg), service.ErrForbidden},
		{"session not draft", caterer, inOpen, service.ErrSessionNotDraft},
		{"before range", caterer, withDay(18), service.ErrValidation},
		{"after range", caterer, withDay(26), service.ErrValidation},
		{"bad meal", caterer, badMeal, service.ErrValidation},
		{"no name", caterer, noName, service.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.MenuSvc.AddItem(ctx, tt.actor.ID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = env.MenuSvc.AddItem(ctx, admin.ID, withMess(model.MessFoodPark))
	assert.NoError(t, err, "admins add items for any mess")
	_, err = env.MenuSvc.AddItem(ctx, caterer.ID, withDay(25))
	assert.NoError(t, err, "range end is inclusive")
}

func TestMenuService_DeleteItem(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	open := env.Session(t, model.SessionStatusOpenForVoting)
	item := env.Item(t, open.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	caterer := env.Caterer(t, model.MessVeg)
	admin := env.Admin(t)

	err := env.MenuSvc.DeleteItem(ctx, caterer.ID, item.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotDraft)

	require.NoError(t, env.MenuSvc.DeleteItem(ctx, admin.ID, item.ID))
	_, err = env.MenuSvc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMenuService_ListOrderedWithCounts(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	s := env.Session(t, model.SessionStatusOpenForVoting)
	dinner := env.Item(t, s.ID, 19, model.MealDinner, model.MessVeg, "Paneer")
	breakfast := env.Item(t, s.ID, 19, model.MealBreakfast, model.MessVeg, "Idli")
	nextDay := env.Item(t, s.ID, 20, model.MealBreakfast, model.MessVeg, "Dosa")
	env.Item(t, s.ID, 19, model.MealLunch, model.MessNonVeg, "Chicken")
	env.AddVotes(t, dinner, 2)

	items, err := env.MenuSvc.ListBySession(ctx, s.ID, model.MessVeg)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, breakfast.ID, items[0].ID)
	assert.Equal(t, dinner.ID, items[1].ID)
	assert.Equal(t, 2, items[1].VoteCount)
	assert.Equal(t, nextDay.ID, items[2].ID)

	all, err := env.MenuSvc.ListBySession(ctx, s.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMenuService_SelectedItemsOnlyWhenFinalized(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	closed := env.Session(t, model.SessionStatusClosed)
	it := env.Item(t, closed.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	env.DB.SetSelected(it.ID, true)

	items, err := env.MenuSvc.SelectedItems(ctx, closed.ID, model.MessVeg)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = env.FinalSvc.Confirm(ctx, closed.ID, nil)
	require.NoError(t, err)

	items, err = env.MenuSvc.SelectedItems(ctx, closed.ID, model.MessVeg)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, it.ID, items[0].ID)
}
