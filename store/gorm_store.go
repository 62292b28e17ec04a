package store

import (
	"context"
	"fmt"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps the queue in the relational database (postgres or sqlite).
// Statistics are computed by querying the appointment history.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LiveQueue(ctx context.Context) ([]models.QueueItem, error) {
	var items []models.QueueItem
	err := s.db.WithContext(ctx).
		Preload("HaircutType").
		Where("status <> ?", models.StatusCompleted).
		Order("position ASC").
		Order("added_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	return items, nil
}

func (s *GormStore) Apply(ctx context.Context, change queue.Change) error {
	if change.Empty() {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if change.Appointment != nil {
			if err := tx.Create(change.Appointment).Error; err != nil {
				return fmt.Errorf("record appointment: %w", err)
			}
		}

		if change.Cleared {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.QueueItem{}).Error; err != nil {
				return fmt.Errorf("clear queue: %w", err)
			}
		} else if len(change.Deleted) > 0 {
			if err := tx.Where("id IN ?", change.Deleted).Delete(&models.QueueItem{}).Error; err != nil {
				return fmt.Errorf("delete queue items: %w", err)
			}
		}

		for i := range change.Inserted {
			if err := tx.Omit(clause.Associations).Create(&change.Inserted[i]).Error; err != nil {
				return fmt.Errorf("insert queue item: %w", err)
			}
		}

		for _, item := range change.Updated {
			err := tx.Model(&models.QueueItem{}).
				Where("id = ?", item.ID).
				Updates(map[string]interface{}{
					"status":      item.Status,
					"position":    item.Position,
					"started_at":  item.StartedAt,
					"finished_at": item.FinishedAt,
				}).Error
			if err != nil {
				return fmt.Errorf("update queue item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

func (s *GormStore) Stats(ctx context.Context, r queue.Range) (queue.Stats, error) {
	if s.db.Dialector.Name() == "sqlite" {
		return s.foldStats(ctx, r)
	}
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	q := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(price), 0) AS total")
	if err := withRange(q, r).Scan(&row).Error; err != nil {
		return queue.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return queue.NewStats(row.Count, row.Total), nil
}

// foldStats sums prices in Go. sqlite keeps decimal columns as REAL, so
// SUM(price) there is a float.
func (s *GormStore) foldStats(ctx context.Context, r queue.Range) (queue.Stats, error) {
	var prices []decimal.Decimal
	q := s.db.WithContext(ctx).Model(&models.Appointment{})
	if err := withRange(q, r).Pluck("price", &prices).Error; err != nil {
		return queue.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	var t queue.Totals
	for _, p := range prices {
		t.Record(p)
	}
	return t.Stats(), nil
}

func (s *GormStore) Appointments(ctx context.Context, r queue.Range) ([]models.Appointment, error) {
	var appts []models.Appointment
	q := s.db.WithContext(ctx).Order("finished_at ASC")
	if err := withRange(q, r).Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func withRange(q *gorm.DB, r queue.Range) *gorm.DB {
	if !r.From.IsZero() {
		q = q.Where("finished_at >= ?", r.From.UTC())
	}
	if !r.To.IsZero() {
		q = q.Where("finished_at < ?", r.To.UTC())
	}
	return q
}
