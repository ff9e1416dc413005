// Package voting holds the vote exclusivity and menu finalization rules.
// It does not talk to the database itself; persistence goes through Store.
package voting

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// VoteSet is the set of menu item ids a student currently votes for.
type VoteSet map[uuid.UUID]struct{}

// NewVoteSet builds a set from item ids.
func NewVoteSet(ids ...uuid.UUID) VoteSet {
	s := make(VoteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s VoteSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s VoteSet) Clone() VoteSet {
	c := make(VoteSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// IDs returns the ids in a stable order.
func (s VoteSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

type OpKind int

const (
	OpInsert OpKind = iota + 1
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// StoreOp is a single change to the votes store.
type StoreOp struct {
	Kind   OpKind
	ItemID uuid.UUID
}

// CastVote turns a toggle on target into a new vote set and the store operations
// that produce it. current is not modified.
//
// Toggling a voted item removes it. Toggling an unvoted item replaces whatever
// item of the same slot was voted before, so the result never holds more than
// one item of target's slot.
func CastVote(current VoteSet, target model.MenuItem, slotItems []model.MenuItem) (VoteSet, []StoreOp) {
	next := current.Clone()

	if next.Has(target.ID) {
		delete(next, target.ID)
		return next, []StoreOp{{Kind: OpDelete, ItemID: target.ID}}
	}

	ops := make([]StoreOp, 0, 2)
	slot := target.Slot()
	for i := range slotItems {
		item := &slotItems[i]
		if item.ID == target.ID || item.SessionID != target.SessionID || item.Slot() != slot {
			continue
		}
		if next.Has(item.ID) {
			delete(next, item.ID)
			ops = append(ops, StoreOp{Kind: OpDelete, ItemID: item.ID})
		}
	}

	next[target.ID] = struct{}{}
	ops = append(ops, StoreOp{Kind: OpInsert, ItemID: target.ID})
	return next, ops
}
