package queue

import (
	"barberqueue-backend/models"

	"github.com/google/uuid"
)

// Change is the set of writes produced by one queue mutation.
type Change struct {
	Inserted    []models.QueueItem
	Updated     []models.QueueItem
	Deleted     []uuid.UUID
	Cleared     bool
	Appointment *models.Appointment
}

// Empty reports whether the change writes nothing.
func (c Change) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0 && !c.Cleared && c.Appointment == nil
}

// update records item as updated, replacing an earlier update of the same id.
func (c *Change) update(item models.QueueItem) {
	for i := range c.Updated {
		if c.Updated[i].ID == item.ID {
			c.Updated[i] = item
			return
		}
	}
	c.Updated = append(c.Updated, item)
}

// drop forgets pending updates for id; deleted rows need no update.
func (c *Change) drop(id uuid.UUID) {
	kept := c.Updated[:0]
	for _, item := range c.Updated {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.Updated = kept
}
