package voting

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

type fakeStore struct {
	mu    sync.Mutex
	err   error
	calls [][]StoreOp
	rows  map[uuid.UUID]bool
}

func newFakeStore(voted ...uuid.UUID) *fakeStore {
	s := &fakeStore{rows: map[uuid.UUID]bool{}}
	for _, id := range voted {
		s.rows[id] = true
	}
	return s
}

func (s *fakeStore) ApplyVoteOps(_ context.Context, _ uuid.UUID, ops []StoreOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ops)
	if s.err != nil {
		return s.err
	}
	for _, op := range ops {
		if op.Kind == OpInsert {
			s.rows[op.ItemID] = true
		} else {
			delete(s.rows, op.ItemID)
		}
	}
	return nil
}

func TestBallot_TogglePersists(t *testing.T) {
	a := item(day1, model.MealLunch, 0)
	b := item(day1, model.MealLunch, 0)
	store := newFakeStore(a.ID)
	ballot := NewBallot(uuid.New(), []uuid.UUID{a.ID})

	votes, err := ballot.Toggle(context.Background(), store, b, []model.MenuItem{a, b})

	require.NoError(t, err)
	assert.Equal(t, NewVoteSet(b.ID), votes)
	assert.Equal(t, NewVoteSet(b.ID), ballot.Votes())
	assert.Equal(t, map[uuid.UUID]bool{b.ID: true}, store.rows)
}

func TestBallot_ToggleRevertsOnStoreError(t *testing.T) {
	a := item(day1, model.MealLunch, 0)
	b := item(day1, model.MealLunch, 0)
	store := newFakeStore(a.ID)
	store.err = errors.New("connection reset")
	ballot := NewBallot(uuid.New(), []uuid.UUID{a.ID})

	votes, err := ballot.Toggle(context.Background(), store, b, []model.MenuItem{a, b})

	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
	assert.Equal(t, NewVoteSet(a.ID), votes, "previous set is returned")
	assert.Equal(t, NewVoteSet(a.ID), ballot.Votes(), "previous set is restored")
	require.Len(t, store.calls, 1)
	assert.Len(t, store.calls[0], 2, "delete and insert are sent together")
}

func TestBallot_ConcurrentTogglesKeepExclusivity(t *testing.T) {
	items := []model.MenuItem{
		item(day1, model.MealDinner, 0),
		item(day1, model.MealDinner, 0),
		item(day1, model.MealDinner, 0),
	}
	store := newFakeStore()
	ballot := NewBallot(uuid.New(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = ballot.Toggle(context.Background(), store, items[i%len(items)], items)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, len(ballot.Votes()), 1)
	assert.LessOrEqual(t, len(store.rows), 1)
	assert.Equal(t, len(ballot.Votes()), len(store.rows))
}
