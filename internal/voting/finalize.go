package voting

import (
	"sort"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// HasDecision reports whether any item is already marked selected. A session
// without such an item is treated as not yet decided.
func HasDecision(items []model.MenuItem) bool {
	for i := range items {
		if items[i].Selected() {
			return true
		}
	}
	return false
}

// ComputeFinalSelection resolves is_selected for every item.
//
// When a decision already exists the stored flags are returned unchanged.
// Otherwise, in every slot, each item holding the maximum vote count is
// selected as long as that maximum is above zero, so ties produce several
// winners. The input slice is not modified.
func ComputeFinalSelection(items []model.MenuItem) []model.MenuItem {
	out := cloneItems(items)
	if HasDecision(items) {
		return out
	}

	slots, groups := groupBySlot(out)
	for _, slot := range slots {
		idx := groups[slot]

		maxVotes := 0
		for _, i := range idx {
			if out[i].VoteCount > maxVotes {
				maxVotes = out[i].VoteCount
			}
		}
		for _, i := range idx {
			out[i].SetSelected(maxVotes > 0 && out[i].VoteCount == maxVotes)
		}
	}

	return out
}

// ReportWinners picks a single winner per slot for reports of sessions that
// have no manual selection. Items are stable-sorted by vote count, so among
// tied items the one that comes first in the input wins. Slots where nobody
// voted yield no winner, so a finalized session whose slots all have zero
// votes produces an empty report.
//
// Unlike ComputeFinalSelection, ties never produce more than one winner.
func ReportWinners(items []model.MenuItem) []model.MenuItem {
	slots, groups := groupBySlot(items)

	winners := make([]model.MenuItem, 0, len(slots))
	for _, slot := range slots {
		idx := append([]int(nil), groups[slot]...)
		sort.SliceStable(idx, func(a, b int) bool {
			return items[idx[a]].VoteCount > items[idx[b]].VoteCount
		})

		top := items[idx[0]]
		if top.VoteCount <= 0 {
			continue
		}
		top.SetSelected(true)
		winners = append(winners, top)
	}

	return winners
}

// Selected returns the items flagged as selected, keeping their order.
func Selected(items []model.MenuItem) []model.MenuItem {
	out := make([]model.MenuItem, 0, len(items))
	for i := range items {
		if items[i].Selected() {
			out = append(out, items[i])
		}
	}
	return out
}

// groupBySlot returns slots in order of first appearance and item indexes per slot.
func groupBySlot(items []model.MenuItem) ([]model.Slot, map[model.Slot][]int) {
	var order []model.Slot
	groups := make(map[model.Slot][]int)
	for i := range items {
		slot := items[i].Slot()
		if _, ok := groups[slot]; !ok {
			order = append(order, slot)
		}
		groups[slot] = append(groups[slot], i)
	}
	return order, groups
}

func cloneItems(items []model.MenuItem) []model.MenuItem {
	out := make([]model.MenuItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].IsSelected != nil {
			v := *out[i].IsSelected
			out[i].IsSelected = &v
		}
	}
	return out
}
