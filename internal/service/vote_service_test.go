package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
	"github.com/Freeeeeet/mess_voting_bot/internal/service/servicetest"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

func TestVoteService_ToggleReplacesVoteInSlot(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, session.ID, 19, model.MealLunch, model.MessVeg, "Rajma")
	dinner := env.Item(t, session.ID, 19, model.MealDinner, model.MessVeg, "Paneer")
	student := env.Student(t, model.MessVeg)

	_, err := env.VoteSvc.Toggle(ctx, student.ID, a.ID)
	require.NoError(t, err)
	_, err = env.VoteSvc.Toggle(ctx, student.ID, dinner.ID)
	require.NoError(t, err)
	res, err := env.VoteSvc.Toggle(ctx, student.ID, b.ID)
	require.NoError(t, err)

	assert.True(t, res.Voted)
	assert.ElementsMatch(t, []uuid.UUID{b.ID, dinner.ID}, res.Votes)
	assert.Equal(t, 0, env.DB.VoteCount(a.ID))
	assert.Equal(t, 1, env.DB.VoteCount(b.ID))
}

func TestVoteService_ToggleOffAndOnAgain(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 20, model.MealBreakfast, model.MessVeg, "Poha")
	student := env.Student(t, model.MessVeg)

	on, err := env.VoteSvc.Toggle(ctx, student.ID, a.ID)
	require.NoError(t, err)
	off, err := env.VoteSvc.Toggle(ctx, student.ID, a.ID)
	require.NoError(t, err)
	again, err := env.VoteSvc.Toggle(ctx, student.ID, a.ID)
	require.NoError(t, err)

	assert.False(t, off.Voted)
	assert.Empty(t, off.Votes)
	assert.Equal(t, on.Votes, again.Votes)
}

func TestVoteService_CastAndRemoveAreIdempotent(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 20, model.MealSnacks, model.MessVeg, "Samosa")
	student := env.Student(t, model.MessVeg)

	_, err := env.VoteSvc.Cast(ctx, student.ID, a.ID)
	require.NoError(t, err)
	res, err := env.VoteSvc.Cast(ctx, student.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, res.Voted)
	assert.Equal(t, 1, env.DB.VoteCount(a.ID))

	_, err = env.VoteSvc.Remove(ctx, student.ID, a.ID)
	require.NoError(t, err)
	res, err = env.VoteSvc.Remove(ctx, student.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, res.Voted)
	assert.Equal(t, 0, env.DB.VoteCount(a.ID))
}

func TestVoteService_RevertsWhenStoreFails(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 21, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, session.ID, 21, model.MealLunch, model.MessVeg, "Kadhi")
	student := env.Student(t, model.MessVeg)

	_, err := env.VoteSvc.Toggle(ctx, student.ID, a.ID)
	require.NoError(t, err)

	env.DB.ApplyErr = errors.New("db down")
	_, err = env.VoteSvc.Toggle(ctx, student.ID, b.ID)
	require.Error(t, err)

	env.DB.ApplyErr = nil
	votes, err := env.VoteSvc.ListByUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, a.ID, votes[0].MenuItemID)
}

func TestVoteService_StaleBallotLosesSlotRace(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 22, model.MealDinner, model.MessVeg, "Paneer")
	b := env.Item(t, session.ID, 22, model.MealDinner, model.MessVeg, "Chole")
	student := env.Student(t, model.MessVeg)

	// параллельный запрос того же студента успевает проголосовать за a
	env.DB.BeforeApply = func() {
		err := env.Votes.ApplyVoteOps(ctx, student.ID, []voting.StoreOp{{Kind: voting.OpInsert, ItemID: a.ID}})
		require.NoError(t, err)
	}

	_, err := env.VoteSvc.Toggle(ctx, student.ID, b.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrConflict), "got %v", err)
	assert.True(t, errors.Is(err, repository.ErrSlotAlreadyVoted), "got %v", err)

	votes, err := env.VoteSvc.ListByUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, a.ID, votes[0].MenuItemID)
	assert.Equal(t, 0, env.DB.VoteCount(b.ID))
}

func TestVotes_ApplyVoteOpsRejectsSecondVoteInSlot(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 22, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, session.ID, 22, model.MealLunch, model.MessVeg, "Kadhi")
	other := env.Item(t, session.ID, 22, model.MealLunch, model.MessNonVeg, "Chicken")
	student := env.Student(t, model.MessVeg)

	err := env.Votes.ApplyVoteOps(ctx, student.ID, []voting.StoreOp{{Kind: voting.OpInsert, ItemID: a.ID}})
	require.NoError(t, err)
	err = env.Votes.ApplyVoteOps(ctx, student.ID, []voting.StoreOp{{Kind: voting.OpInsert, ItemID: b.ID}})
	require.ErrorIs(t, err, repository.ErrSlotAlreadyVoted)

	// другой тип столовой это другой слот
	err = env.Votes.ApplyVoteOps(ctx, student.ID, []voting.StoreOp{{Kind: voting.OpInsert, ItemID: other.ID}})
	require.NoError(t, err)

	// неудачная пачка не оставляет частичных изменений
	err = env.Votes.ApplyVoteOps(ctx, student.ID, []voting.StoreOp{
		{Kind: voting.OpDelete, ItemID: other.ID},
		{Kind: voting.OpInsert, ItemID: b.ID},
	})
	require.ErrorIs(t, err, repository.ErrSlotAlreadyVoted)
	assert.Equal(t, 1, env.DB.VoteCount(a.ID))
	assert.Equal(t, 0, env.DB.VoteCount(b.ID))
	assert.Equal(t, 1, env.DB.VoteCount(other.ID))
}

func TestVoteService_Validation(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	open := env.Session(t, model.SessionStatusOpenForVoting)
	closed := env.Session(t, model.SessionStatusClosed)
	vegItem := env.Item(t, open.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	nonVegItem := env.Item(t, open.ID, 19, model.MealLunch, model.MessNonVeg, "Chicken")
	closedItem := env.Item(t, closed.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	student := env.Student(t, model.MessVeg)
	caterer := env.Caterer(t, model.MessVeg)

	tests := []struct {
		name    string
		student uuid.UUID
		item    uuid.UUID
		want    error
	}{
		{"missing ids", uuid.Nil, uuid.Nil, service.ErrValidation},
		{"unknown item", student.ID, uuid.New(), service.ErrNotFound},
		{"unknown student", uuid.New(), vegItem.ID, service.ErrNotFound},
		{"not a student", caterer.ID, vegItem.ID, service.ErrForbidden},
		{"other mess", student.ID, nonVegItem.ID, service.ErrForbidden},
		{"session closed", student.ID, closedItem.ID, service.ErrSessionNotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.VoteSvc.Toggle(ctx, tt.student, tt.item)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVoteService_CountsBySession(t *testing.T) {
	env := servicetest.NewEnv(t)
	ctx := context.Background()
	session := env.Session(t, model.SessionStatusOpenForVoting)
	a := env.Item(t, session.ID, 19, model.MealLunch, model.MessVeg, "Dal")
	b := env.Item(t, session.ID, 19, model.MealLunch, model.MessVeg, "Rajma")
	env.AddVotes(t, a, 3)
	env.AddVotes(t, b, 1)

	counts, err := env.VoteSvc.CountsBySession(ctx, session.ID)
	require.NoError(t, err)
	total, err := env.VoteSvc.TotalBySession(ctx, session.ID)
	require.NoError(t, err)

	byItem := map[uuid.UUID]int{}
	for _, c := range counts {
		byItem[c.MenuItemID] = c.Count
	}
	assert.Equal(t, map[uuid.UUID]int{a.ID: 3, b.ID: 1}, byItem)
	assert.Equal(t, 4, total)
}
