package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
	"github.com/Freeeeeet/mess_voting_bot/internal/service/servicetest"
)

func selectedIDs(items []model.MenuItem) []uuid.UUID {
	var ids []uuid.UUID
	for _, it := range items {
		if it.Selected() {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func TestFinalizationService_PreviewSelectsAllTies(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	s := env.Session(t, model.SessionStatusClosed)
	a := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Rajma")
	c := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Kadhi")
	env.Item(t, s.ID, 19, model.MealDinner, model.MessVeg, "Nobody likes this")
	env.AddVotes(t, a, 3)
	env.AddVotes(t, b, 3)
	env.AddVotes(t, c, 1)

	preview, err := env.FinalSvc.Preview(ctx, s.ID)

	require.NoError(t, err)
	assert.False(t, preview.Decided)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, selectedIDs(preview.Items))
}

func TestFinalizationService_PreviewRequiresClosedSession(t *testing.T) {
	env := servicetest.NewEnv(t)
	open := env.Session(t, model.SessionStatusOpenForVoting)

	_, err := env.FinalSvc.Preview(context.Background(), open.ID)

	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestFinalizationService_ConfirmPersistsOverrides(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	s := env.Session(t, model.SessionStatusClosed)
	a := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Rajma")
	env.AddVotes(t, a, 5)
	env.AddVotes(t, b, 1)

	session, err := env.FinalSvc.Confirm(ctx, s.ID, map[uuid.UUID]bool{a.ID: false, b.ID: true})

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusFinalized, session.Status)
	assert.Equal(t, model.SessionStatusFinalized, env.DB.SessionStatus(s.ID))

	preview, err := env.FinalSvc.Preview(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, preview.Decided)
	assert.Equal(t, []uuid.UUID{b.ID}, selectedIDs(preview.Items), "manual decision is kept over vote counts")
}

func TestFinalizationService_ConfirmRejectsUnknownItems(t *testing.T) {
	env := servicetest.NewEnv(t)
	s := env.Session(t, model.SessionStatusClosed)
	env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Dal")

	_, err := env.FinalSvc.Confirm(context.Background(), s.ID, map[uuid.UUID]bool{uuid.New(): true})

	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, model.SessionStatusClosed, env.DB.SessionStatus(s.ID))
}

func TestFinalizationService_EmptySessionFinalizes(t *testing.T) {
	env := servicetest.NewEnv(t)
	s := env.Session(t, model.SessionStatusClosed)

	session, err := env.FinalSvc.Confirm(context.Background(), s.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusFinalized, session.Status)
}

func TestFinalizationService_EditFinalizedMenu(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	s := env.Session(t, model.SessionStatusClosed)
	a := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Rajma")
	env.AddVotes(t, a, 2)

	_, err := env.FinalSvc.Confirm(ctx, s.ID, nil)
	require.NoError(t, err)
	_, err = env.FinalSvc.Confirm(ctx, s.ID, map[uuid.UUID]bool{b.ID: true})
	require.NoError(t, err)

	items, err := env.MenuSvc.SelectedItems(ctx, s.ID, model.MessVeg)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, selectedIDs(items))
}
