package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
	"github.com/Freeeeeet/mess_voting_bot/internal/service/servicetest"
)

func TestFeedbackService_SubmitAndRespond(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	student := env.Student(t, model.MessVeg)
	caterer := env.Caterer(t, model.MessVeg)
	other := env.Caterer(t, model.MessVeg)

	fb, err := env.FeedbackSvc.Submit(ctx, student.ID, caterer.ID, "  Too salty  ")
	require.NoError(t, err)
	assert.Equal(t, "Too salty", fb.Message)
	assert.False(t, fb.IsAnswered())

	_, err = env.FeedbackSvc.Respond(ctx, other.ID, fb.ID, "not mine")
	assert.ErrorIs(t, err, service.ErrForbidden)

	answered, err := env.FeedbackSvc.Respond(ctx, caterer.ID, fb.ID, "Noted, thanks")
	require.NoError(t, err)
	assert.True(t, answered.IsAnswered())

	inbox, err := env.FeedbackSvc.ListForCaterer(ctx, caterer.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.True(t, inbox[0].IsAnswered())

	mine, err := env.FeedbackSvc.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestFeedbackService_Validation(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	student := env.Student(t, model.MessVeg)
	caterer := env.Caterer(t, model.MessVeg)

	_, err := env.FeedbackSvc.Submit(ctx, student.ID, caterer.ID, "   ")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = env.FeedbackSvc.Submit(ctx, student.ID, caterer.ID, strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = env.FeedbackSvc.Submit(ctx, student.ID, student.ID, "to myself")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = env.FeedbackSvc.Submit(ctx, caterer.ID, caterer.ID, "hello")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestEventService_CreateListDelete(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()

	later, err := env.EventSvc.Create(ctx, service.NewEvent{Title: "Diwali dinner", Date: servicetest.Date(30)})
	require.NoError(t, err)
	sooner, err := env.EventSvc.Create(ctx, service.NewEvent{Title: "Food fest", Date: servicetest.Date(21), ImageURL: "https://example.org/fest.png"})
	require.NoError(t, err)
	require.NotNil(t, sooner.ImageURL)

	_, err = env.EventSvc.Create(ctx, service.NewEvent{Title: "No date"})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = env.EventSvc.Create(ctx, service.NewEvent{Date: time.Now()})
	assert.ErrorIs(t, err, service.ErrValidation)

	events, err := env.EventSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)

	require.NoError(t, env.EventSvc.Delete(ctx, later.ID))
	assert.ErrorIs(t, env.EventSvc.Delete(ctx, later.ID), service.ErrNotFound)
}

func TestSettingsService(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()

	enabled, err := env.SettingsSvc.IsEnabled(ctx, "missing_key")
	require.NoError(t, err)
	assert.False(t, enabled)

	assert.ErrorIs(t, env.SettingsSvc.Set(ctx, "missing_key", true), service.ErrValidation)

	require.NoError(t, env.SettingsSvc.Set(ctx, model.SettingAdminRegistration, false))
	enabled, err = env.SettingsSvc.IsEnabled(ctx, model.SettingAdminRegistration)
	require.NoError(t, err)
	assert.False(t, enabled)

	settings, err := env.SettingsSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
}

func TestStatsService_Snapshot(t *testing.T) {
	env := servicetest.NewEnv(t)
	s := env.Session(t, model.SessionStatusOpenForVoting)
	env.Session(t, model.SessionStatusDraft)
	it := env.Item(t, s.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	env.AddVotes(t, it, 2)

	stats, err := env.StatsSvc.Snapshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionsByStatus[model.SessionStatusOpenForVoting])
	assert.Equal(t, 2, stats.ProfilesByRole[model.RoleStudent])
	assert.Equal(t, 2, stats.Votes)
}
