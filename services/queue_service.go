package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"barberqueue-backend/cache"
	"barberqueue-backend/models"
	"barberqueue-backend/queue"
	"barberqueue-backend/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllTime is the unbounded statistics range.
var AllTime = queue.Range{}

// CatalogReader resolves haircut types for enrollment.
type CatalogReader interface {
	Get(ctx context.Context, id uuid.UUID) (models.HaircutType, error)
	Resolve(ctx context.Context, ref string) (models.HaircutType, error)
}

// Notifier receives every completed appointment. Dispatch must not block.
type Notifier interface {
	Dispatch(appt models.Appointment)
}

type QueueDeps struct {
	Store    store.Store
	Catalog  CatalogReader
	Notifier Notifier
	Cache    cache.Cache
	CacheTTL time.Duration
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// QueueService is the single mutation entry point for the queue.
// Every mutation loads the live queue, applies the transition in memory and
// persists the resulting change under one lock.
type QueueService struct {
	mu       sync.Mutex
	store    store.Store
	catalog  CatalogReader
	notifier Notifier
	cache    cache.Cache
	cacheTTL time.Duration
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time

	// statsGen counts completions; a cache fill computed under an older
	// generation is discarded.
	statsGen uint64
}

func NewQueueService(d QueueDeps) *QueueService {
	s := &QueueService{
		store:    d.Store,
		catalog:  d.Catalog,
		notifier: d.Notifier,
		cache:    d.Cache,
		cacheTTL: d.CacheTTL,
		loc:      d.Location,
		logger:   d.Logger,
		now:      d.Now,
	}
	if s.cache == nil {
		s.cache = cache.NewNoop()
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = time.Minute
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

func (s *QueueService) Location() *time.Location { return s.loc }

func (s *QueueService) load(ctx context.Context) (*queue.Queue, error) {
	items, err := s.store.LiveQueue(ctx)
	if err != nil {
		return nil, err
	}
	return queue.New(items, s.now), nil
}

// List returns the live queue ordered by position.
func (s *QueueService) List(ctx context.Context) ([]models.QueueItem, error) {
	q, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return q.Items(), nil
}

func (s *QueueService) Get(ctx context.Context, id uuid.UUID) (models.QueueItem, error) {
	q, err := s.load(ctx)
	if err != nil {
		return models.QueueItem{}, err
	}
	return q.Get(id)
}

// Add enrolls a client for an active haircut type.
func (s *QueueService) Add(ctx context.Context, clientName string, haircutTypeID uuid.UUID) (models.QueueItem, error) {
	if haircutTypeID == uuid.Nil {
		return models.QueueItem{}, queue.ValidationError{Message: "haircut type is required"}
	}
	ht, err := s.catalog.Get(ctx, haircutTypeID)
	if errors.Is(err, ErrHaircutTypeNotFound) {
		return models.QueueItem{}, queue.ValidationError{Message: "haircut type not found"}
	}
	if err != nil {
		return models.QueueItem{}, err
	}
	return s.enroll(ctx, clientName, ht)
}

// AddByReference enrolls a client naming the haircut type by id or name.
// An unknown reference is ErrHaircutTypeNotFound.
func (s *QueueService) AddByReference(ctx context.Context, clientName, haircutRef string) (models.QueueItem, error) {
	ht, err := s.catalog.Resolve(ctx, haircutRef)
	if err != nil {
		return models.QueueItem{}, err
	}
	return s.enroll(ctx, clientName, ht)
}

func (s *QueueService) enroll(ctx context.Context, clientName string, ht models.HaircutType) (models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.load(ctx)
	if err != nil {
		return models.QueueItem{}, err
	}
	item, change, err := q.Add(clientName, ht)
	if err != nil {
		return models.QueueItem{}, err
	}
	if err := s.store.Apply(ctx, change); err != nil {
		return models.QueueItem{}, fmt.Errorf("failed to add client: %w", err)
	}
	s.logger.Info("client enrolled",
		slog.String("id", item.ID.String()),
		slog.String("client", item.ClientName),
		slog.Int("position", item.Position))
	return item, nil
}

// Start reports false when the entry is missing or not waiting.
func (s *QueueService) Start(ctx context.Context, id uuid.UUID) (models.QueueItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.load(ctx)
	if err != nil {
		return models.QueueItem{}, false, err
	}
	item, change, ok := q.Start(id)
	if !ok {
		return models.QueueItem{}, false, nil
	}
	if err := s.store.Apply(ctx, change); err != nil {
		return models.QueueItem{}, false, fmt.Errorf("failed to start service: %w", err)
	}
	return item, true, nil
}

// Finish completes an entry. The notification is dispatched before the change
// is persisted and is never retried; a persistence failure leaves the stored
// queue untouched.
func (s *QueueService) Finish(ctx context.Context, id uuid.UUID) (*models.Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}
	done, change, ok := q.Finish(id)
	if !ok {
		return nil, false, nil
	}

	if s.notifier != nil {
		s.notifier.Dispatch(done.Appointment)
	}
	if err := s.store.Apply(ctx, change); err != nil {
		s.logger.Warn("completion not persisted after notification dispatch",
			slog.String("id", id.String()),
			slog.String("client", done.Appointment.ClientName),
			slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("failed to finish service: %w", err)
	}
	s.statsGen++
	s.invalidateStats(ctx, done.Appointment.FinishedAt)

	s.logger.Info("service completed",
		slog.String("client", done.Appointment.ClientName),
		slog.String("haircut", done.Appointment.HaircutTypeName),
		slog.String("price", done.Appointment.Price.StringFixed(2)))
	appt := done.Appointment
	return &appt, true, nil
}

// Remove deletes an entry without recording an appointment.
func (s *QueueService) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	change, ok := q.Remove(id)
	if !ok {
		return false, nil
	}
	if err := s.store.Apply(ctx, change); err != nil {
		return false, fmt.Errorf("failed to remove client: %w", err)
	}
	return true, nil
}

// Clear drops every live entry and returns how many were removed.
func (s *QueueService) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	n := q.Len()
	if err := s.store.Apply(ctx, q.Clear()); err != nil {
		return 0, fmt.Errorf("failed to clear queue: %w", err)
	}
	s.logger.Warn("queue cleared", slog.Int("removed", n))
	return n, nil
}

func (s *QueueService) Stats(ctx context.Context, r queue.Range) (queue.Stats, error) {
	return s.store.Stats(ctx, r)
}

func (s *QueueService) Appointments(ctx context.Context, r queue.Range) ([]models.Appointment, error) {
	return s.store.Appointments(ctx, r)
}

// DayRange is the local calendar day containing t.
func (s *QueueService) DayRange(t time.Time) queue.Range {
	return queue.Today(t, s.loc)
}

// TodayStats serves the current day's statistics, cached until the next
// completion or the TTL.
func (s *QueueService) TodayStats(ctx context.Context) (queue.Stats, error) {
	now := s.now()
	key := statsKey(now.In(s.loc))

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("stats cache read failed", slog.String("error", err.Error()))
	} else if ok {
		var cached queue.Stats
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	s.mu.Lock()
	gen := s.statsGen
	s.mu.Unlock()

	stats, err := s.store.Stats(ctx, s.DayRange(now))
	if err != nil {
		return queue.Stats{}, err
	}
	s.fillStats(ctx, key, gen, stats)
	return stats, nil
}

func (s *QueueService) fillStats(ctx context.Context, key string, gen uint64, stats queue.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statsGen != gen {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("stats cache write failed", slog.String("error", err.Error()))
	}
}

func (s *QueueService) invalidateStats(ctx context.Context, at time.Time) {
	if err := s.cache.Delete(ctx, statsKey(at.In(s.loc))); err != nil {
		s.logger.Warn("stats cache invalidation failed", slog.String("error", err.Error()))
	}
}

func statsKey(day time.Time) string {
	return "barberqueue:stats:" + day.Format("2006-01-02")
}

// ValidateLegacyCost checks the optional cost sent by older clients. The
// catalog price is always the one recorded.
func ValidateLegacyCost(cost *decimal.Decimal) error {
	if cost != nil && !cost.IsPositive() {
		return queue.ValidationError{Message: "cost must be greater than zero"}
	}
	return nil
}
