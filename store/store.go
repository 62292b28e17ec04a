// Package store persists the live queue, appointment history and
// notification attempts.
package store

import (
	"context"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"
)

// Store is the persistence adapter behind the queue service. Apply must write
// a Change atomically.
type Store interface {
	LiveQueue(ctx context.Context) ([]models.QueueItem, error)
	Apply(ctx context.Context, change queue.Change) error
	Stats(ctx context.Context, r queue.Range) (queue.Stats, error)
	Appointments(ctx context.Context, r queue.Range) ([]models.Appointment, error)
}
