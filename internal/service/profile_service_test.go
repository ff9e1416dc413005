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

func TestProfileService_ChangeMessTypeWipesVotes(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	lunch := env.Item(t, session.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	dinner := env.Item(t, session.ID, 19, model.MealDinner, model.MessVeg, "Paneer")
	student := env.Student(t, model.MessVeg)

	_, err := env.VoteSvc.Toggle(ctx, student.ID, lunch.ID)
	require.NoError(t, err)
	_, err = env.VoteSvc.Toggle(ctx, student.ID, dinner.ID)
	require.NoError(t, err)

	deleted, err := env.ProfileSvc.ChangeMessType(ctx, student.ID, model.MessNonVeg)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	votes, err := env.VoteSvc.ListByUser(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)

	profile, err := env.ProfileSvc.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessNonVeg, profile.Mess())
}

func TestProfileService_ChangeMessTypeSameValueKeepsVotes(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	lunch := env.Item(t, session.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	student := env.Student(t, model.MessVeg)
	_, err := env.VoteSvc.Toggle(ctx, student.ID, lunch.ID)
	require.NoError(t, err)

	deleted, err := env.ProfileSvc.ChangeMessType(ctx, student.ID, model.MessVeg)

	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Equal(t, 1, env.DB.VoteCount(lunch.ID))
}

func TestProfileService_RegisterStudent(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	caterer := env.Caterer(t, model.MessVeg, model.MessSpecial)
	tg := int64(42)

	p, err := env.ProfileSvc.Register(ctx, service.Registration{
		FullName:          "  Asha  ",
		Role:              model.RoleStudent,
		MessType:          model.MessVeg,
		RegNumber:         "21BCE0001",
		AssignedCatererID: caterer.ID,
		TelegramID:        &tg,
	})

	require.NoError(t, err)
	assert.Equal(t, "Asha", p.FullName)
	assert.Equal(t, model.MessVeg, p.Mess())
	require.NotNil(t, p.AssignedCatererID)
	assert.Equal(t, caterer.ID, *p.AssignedCatererID)

	found, err := env.ProfileSvc.GetByTelegramID(ctx, tg)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = env.ProfileSvc.Register(ctx, service.Registration{
		FullName: "Dup", Role: model.RoleStudent, MessType: model.MessVeg,
		RegNumber: "x", AssignedCatererID: caterer.ID, TelegramID: &tg,
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestProfileService_RegisterValidation(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	vegCaterer := env.Caterer(t, model.MessVeg)

	tests := []struct {
		name string
		in   service.Registration
		want error
	}{
		{"no name", service.Registration{Role: model.RoleAdmin}, service.ErrValidation},
		{"bad role", service.Registration{FullName: "x", Role: "chef"}, service.ErrValidation},
		{"student without reg number", service.Registration{
			FullName: "x", Role: model.RoleStudent, MessType: model.MessVeg, AssignedCatererID: vegCaterer.ID,
		}, service.ErrValidation},
		{"caterer serving other mess", service.Registration{
			FullName: "x", Role: model.RoleStudent, MessType: model.MessNonVeg, RegNumber: "1", AssignedCatererID: vegCaterer.ID,
		}, service.ErrValidation},
		{"caterer without mess types", service.Registration{FullName: "x", Role: model.RoleCaterer}, service.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ProfileSvc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProfileService_RegistrationGatedBySettings(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()

	require.NoError(t, env.SettingsSvc.Set(ctx, model.SettingCatererRegistration, false))

	_, err := env.ProfileSvc.Register(ctx, service.Registration{
		FullName: "Cook", Role: model.RoleCaterer, ServedMessTypes: []model.MessType{model.MessVeg},
	})
	assert.ErrorIs(t, err, service.ErrRegistrationClosed)

	admin, err := env.ProfileSvc.Register(ctx, service.Registration{FullName: "Warden", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestProfileService_ListCaterers(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	env.Caterer(t, model.MessVeg)
	env.Caterer(t, model.MessNonVeg, model.MessSpecial)

	all, err := env.ProfileSvc.ListCaterers(ctx, "")
	require.NoError(t, err)
	special, err := env.ProfileSvc.ListCaterers(ctx, model.MessSpecial)
	require.NoError(t, err)

	assert.Len(t, all, 2)
	assert.Len(t, special, 1)

	_, err = env.ProfileSvc.ListCaterers(ctx, "vegan")
	assert.ErrorIs(t, err, service.ErrValidation)
}
