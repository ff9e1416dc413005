package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/app"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// Тесты идут против настоящего PostgreSQL и пропускаются без TEST_DB_DSN

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := app.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(ctx))
	require.NoError(t, migrator.Close())
	return pool
}

type fixture struct {
	session *model.VotingSession
	student *model.Profile
	items   []*model.MenuItem
}

// seed создаёт открытую сессию, студента и n пунктов меню в одном слоте
func seed(t *testing.T, pool *pgxpool.Pool, n int) *fixture {
	t.Helper()
	ctx := context.Background()
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	session := &model.VotingSession{
		Title:     "Week " + uuid.NewString()[:8],
		StartDate: day,
		EndDate:   day.AddDate(0, 0, 6),
		Status:    model.SessionStatusOpenForVoting,
	}
	require.NoError(t, repository.NewSessionRepository(pool).Create(ctx, session))
	t.Cleanup(func() {
		_ = repository.NewSessionRepository(pool).Delete(context.Background(), session.ID)
	})

	mess := model.MessVeg
	student := &model.Profile{FullName: "Student", Role: model.RoleStudent, MessType: &mess}
	require.NoError(t, repository.NewProfileRepository(pool).Create(ctx, student))

	items := repository.NewMenuItemRepository(pool)
	f := &fixture{session: session, student: student}
	for i := 0; i < n; i++ {
		it := &model.MenuItem{
			SessionID:  session.ID,
			DateServed: day,
			MealType:   model.MealLunch,
			MessType:   model.MessVeg,
			Name:       "Dish " + uuid.NewString()[:4],
		}
		require.NoError(t, items.Create(ctx, it))
		f.items = append(f.items, it)
	}
	return f
}

func insertOp(id uuid.UUID) []voting.StoreOp {
	return []voting.StoreOp{{Kind: voting.OpInsert, ItemID: id}}
}

func votedItems(t *testing.T, votes *repository.VoteRepository, studentID uuid.UUID) []uuid.UUID {
	t.Helper()
	list, err := votes.ListByUser(context.Background(), studentID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(list))
	for _, v := range list {
		ids = append(ids, v.MenuItemID)
	}
	return ids
}

func TestVoteRepository_SlotCheckAndSet(t *testing.T) {
	pool := testPool(t)
	f := seed(t, pool, 2)
	votes := repository.NewVoteRepository(pool)
	ctx := context.Background()
	a, b := f.items[0].ID, f.items[1].ID

	require.NoError(t, votes.ApplyVoteOps(ctx, f.student.ID, insertOp(a)))
	err := votes.ApplyVoteOps(ctx, f.student.ID, insertOp(b))
	require.ErrorIs(t, err, repository.ErrSlotAlreadyVoted)
	assert.Equal(t, []uuid.UUID{a}, votedItems(t, votes, f.student.ID))

	// замена в одной транзакции
	err = votes.ApplyVoteOps(ctx, f.student.ID, []voting.StoreOp{
		{Kind: voting.OpDelete, ItemID: a},
		{Kind: voting.OpInsert, ItemID: b},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b}, votedItems(t, votes, f.student.ID))

	// удаление откатывается вместе с неудачной вставкой
	err = votes.ApplyVoteOps(ctx, f.student.ID, []voting.StoreOp{
		{Kind: voting.OpDelete, ItemID: uuid.New()},
		{Kind: voting.OpInsert, ItemID: a},
	})
	require.ErrorIs(t, err, repository.ErrSlotAlreadyVoted)
	assert.Equal(t, []uuid.UUID{b}, votedItems(t, votes, f.student.ID))
}

func TestVoteRepository_ConcurrentInsertsKeepOneVotePerSlot(t *testing.T) {
	pool := testPool(t)
	f := seed(t, pool, 5)
	votes := repository.NewVoteRepository(pool)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for _, it := range f.items {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			err := votes.ApplyVoteOps(context.Background(), f.student.ID, insertOp(id))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, repository.ErrSlotAlreadyVoted)
		}(it.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Len(t, votedItems(t, votes, f.student.ID), 1)
}

func TestSessionRepository_Finalize(t *testing.T) {
	pool := testPool(t)
	f := seed(t, pool, 2)
	sessions := repository.NewSessionRepository(pool)
	items := repository.NewMenuItemRepository(pool)
	ctx := context.Background()
	a, b := f.items[0].ID, f.items[1].ID

	selections := map[uuid.UUID]bool{a: true, b: false}

	// устаревший исходный статус откатывает и флаги
	err := sessions.Finalize(ctx, f.session.ID, model.SessionStatusClosed, selections)
	require.ErrorIs(t, err, repository.ErrStaleStatus)
	got, err := items.GetByID(ctx, a)
	require.NoError(t, err)
	assert.Nil(t, got.IsSelected)

	require.NoError(t, sessions.Finalize(ctx, f.session.ID, model.SessionStatusOpenForVoting, selections))

	session, err := sessions.GetByID(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusFinalized, session.Status)

	selected, err := items.ListSelected(ctx, f.session.ID, nil)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, a, selected[0].ID)

	got, err = items.GetByID(ctx, b)
	require.NoError(t, err)
	require.NotNil(t, got.IsSelected)
	assert.False(t, *got.IsSelected)
}
