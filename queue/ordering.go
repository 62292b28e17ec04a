package queue

import (
	"sort"

	"barberqueue-backend/models"
)

// NextPosition returns the tail position for a new entry: max(existing)+1.
func NextPosition(items []models.QueueItem) int {
	max := 0
	for _, item := range items {
		if item.Position > max {
			max = item.Position
		}
	}
	return max + 1
}

// sortByPosition orders items by position, falling back to arrival time.
func sortByPosition(items []models.QueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
}

// renumber rewrites positions to 1..N keeping the current order and
// returns the entries whose position changed.
func renumber(items []models.QueueItem) []models.QueueItem {
	var changed []models.QueueItem
	for i := range items {
		if items[i].Position != i+1 {
			items[i].Position = i + 1
			changed = append(changed, items[i])
		}
	}
	return changed
}

// Dense reports whether positions are exactly 1..len(items) in order.
func Dense(items []models.QueueItem) bool {
	for i, item := range items {
		if item.Position != i+1 {
			return false
		}
	}
	return true
}
