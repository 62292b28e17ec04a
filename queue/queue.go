package queue

import (
	"math"
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/utils"

	"github.com/google/uuid"
)

// Queue is the ordered set of live entries (waiting or in_progress).
// It is not safe for concurrent use; callers serialise mutations.
type Queue struct {
	items   []models.QueueItem
	now     func() time.Time
	pending Change
}

// Completion describes a finished service.
type Completion struct {
	Item        models.QueueItem
	Appointment models.Appointment
}

// New builds a queue from persisted entries. Completed entries are dropped and
// positions are normalised to 1..N; the renumbering is carried into the next
// mutation's Change.
func New(items []models.QueueItem, now func() time.Time) *Queue {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	live := make([]models.QueueItem, 0, len(items))
	for _, item := range items {
		if item.Status == models.StatusCompleted {
			continue
		}
		live = append(live, item)
	}
	sortByPosition(live)
	q := &Queue{items: live, now: now}
	for _, item := range renumber(q.items) {
		q.pending.update(item)
	}
	return q
}

// Items returns a copy of the live entries in serve order.
func (q *Queue) Items() []models.QueueItem {
	out := make([]models.QueueItem, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int { return len(q.items) }

// Next returns the entry at position 1.
func (q *Queue) Next() (models.QueueItem, bool) {
	if len(q.items) == 0 {
		return models.QueueItem{}, false
	}
	return q.items[0], true
}

// Get returns the live entry with id or ErrNotFound.
func (q *Queue) Get(id uuid.UUID) (models.QueueItem, error) {
	if i := q.index(id); i >= 0 {
		return q.items[i], nil
	}
	return models.QueueItem{}, ErrNotFound
}

func (q *Queue) index(id uuid.UUID) int {
	for i := range q.items {
		if q.items[i].ID == id {
			return i
		}
	}
	return -1
}

// take returns the accumulated change and resets it.
func (q *Queue) take() Change {
	ch := q.pending
	q.pending = Change{}
	return ch
}

// Add enrolls a client at the tail of the queue. The catalog price is copied
// into the entry and never read again.
func (q *Queue) Add(clientName string, haircut models.HaircutType) (models.QueueItem, Change, error) {
	name := utils.NormalizeName(clientName)
	if name == "" {
		return models.QueueItem{}, Change{}, ValidationError{Message: "client name is required"}
	}
	if haircut.ID == uuid.Nil {
		return models.QueueItem{}, Change{}, ValidationError{Message: "haircut type is required"}
	}
	if !haircut.Active {
		return models.QueueItem{}, Change{}, ValidationError{Message: "haircut type is not available"}
	}
	if haircut.Price.IsNegative() {
		return models.QueueItem{}, Change{}, ValidationError{Message: "haircut price must not be negative"}
	}

	item := models.QueueItem{
		ID:            uuid.New(),
		ClientName:    name,
		HaircutTypeID: haircut.ID,
		HaircutType:   haircut,
		Price:         haircut.Price,
		Status:        models.StatusWaiting,
		Position:      NextPosition(q.items),
		AddedAt:       q.now(),
	}
	q.items = append(q.items, item)

	ch := q.take()
	ch.Inserted = append(ch.Inserted, item)
	return item, ch, nil
}

// Start moves a waiting entry to in_progress. It reports false, leaving the
// queue unchanged, when the entry is missing or not waiting.
func (q *Queue) Start(id uuid.UUID) (models.QueueItem, Change, bool) {
	i := q.index(id)
	if i < 0 || q.items[i].Status != models.StatusWaiting {
		return models.QueueItem{}, Change{}, false
	}
	now := q.now()
	q.items[i].Status = models.StatusInProgress
	q.items[i].StartedAt = &now

	ch := q.take()
	ch.update(q.items[i])
	return q.items[i], ch, true
}

// Finish completes an entry, records its appointment, evicts it and renumbers
// the rest. Waiting entries may be finished directly; their duration is nil.
// It reports false when the entry is missing.
func (q *Queue) Finish(id uuid.UUID) (Completion, Change, bool) {
	i := q.index(id)
	if i < 0 {
		return Completion{}, Change{}, false
	}
	item := q.items[i]
	now := q.now()
	item.Status = models.StatusCompleted
	item.FinishedAt = &now

	appt := models.Appointment{
		ID:              uuid.New(),
		ClientName:      item.ClientName,
		HaircutTypeID:   item.HaircutTypeID,
		HaircutTypeName: item.HaircutType.Name,
		Price:           item.Price,
		StartedAt:       item.StartedAt,
		FinishedAt:      now,
		DurationMinutes: DurationMinutes(item.StartedAt, now),
		CreatedAt:       now,
	}

	ch := q.take()
	ch.Appointment = &appt
	q.removeAt(i, &ch)
	return Completion{Item: item, Appointment: appt}, ch, true
}

// Remove deletes an entry without creating an appointment.
func (q *Queue) Remove(id uuid.UUID) (Change, bool) {
	i := q.index(id)
	if i < 0 {
		return Change{}, false
	}
	ch := q.take()
	q.removeAt(i, &ch)
	return ch, true
}

// Clear removes every live entry; the next Add receives position 1.
func (q *Queue) Clear() Change {
	ch := q.take()
	ch.Updated = nil
	for _, item := range q.items {
		ch.Deleted = append(ch.Deleted, item.ID)
	}
	ch.Cleared = true
	q.items = q.items[:0]
	return ch
}

func (q *Queue) removeAt(i int, ch *Change) {
	id := q.items[i].ID
	q.items = append(q.items[:i], q.items[i+1:]...)
	ch.drop(id)
	ch.Deleted = append(ch.Deleted, id)
	for _, item := range renumber(q.items) {
		ch.update(item)
	}
}

// DurationMinutes is the service time rounded to whole minutes, or nil when
// the service never started.
func DurationMinutes(startedAt *time.Time, finishedAt time.Time) *int {
	if startedAt == nil || startedAt.IsZero() {
		return nil
	}
	minutes := int(math.Round(float64(finishedAt.Sub(*startedAt).Milliseconds()) / 60000))
	return &minutes
}
