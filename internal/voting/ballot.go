package voting

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// Store persists vote operations. ApplyVoteOps must apply all ops or none.
type Store interface {
	ApplyVoteOps(ctx context.Context, studentID uuid.UUID, ops []StoreOp) error
}

// Ballot owns the vote set of one student. Toggles on the same ballot are
// serialized.
type Ballot struct {
	mu        sync.Mutex
	studentID uuid.UUID
	votes     VoteSet
}

func NewBallot(studentID uuid.UUID, current []uuid.UUID) *Ballot {
	return &Ballot{
		studentID: studentID,
		votes:     NewVoteSet(current...),
	}
}

func (b *Ballot) StudentID() uuid.UUID {
	return b.studentID
}

// Votes returns a copy of the current vote set.
func (b *Ballot) Votes() VoteSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.votes.Clone()
}

// Toggle applies the toggle locally, then persists it. If the store rejects the
// operations the previous vote set is restored before the error is returned.
func (b *Ballot) Toggle(ctx context.Context, store Store, target model.MenuItem, slotItems []model.MenuItem) (VoteSet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.votes
	next, ops := CastVote(prev, target, slotItems)
	b.votes = next

	if err := store.ApplyVoteOps(ctx, b.studentID, ops); err != nil {
		b.votes = prev
		return prev.Clone(), fmt.Errorf("toggle vote: %w", err)
	}

	return next.Clone(), nil
}
