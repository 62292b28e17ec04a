package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotStore is the single-writer local variant: state lives in memory,
// is loaded once at open and saved wholesale to a JSON file. Aggregates are
// running counters. A file lock keeps a second process from writing the same
// snapshot.
type SnapshotStore struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time

	items        []models.QueueItem
	totals       queue.Totals
	appointments []models.Appointment
}

// OpenSnapshot loads path if it exists. An unreadable snapshot is logged and
// replaced by an empty state, matching a fresh install.
func OpenSnapshot(path string, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	s := &SnapshotStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire snapshot lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("snapshot %s is in use by another process", path)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		_ = s.lock.Unlock()
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("failed to load saved queue, starting empty", slog.String("path", path), slog.String("error", err.Error()))
		return s, nil
	}
	s.items = snap.Queue
	s.totals = queue.Totals{Served: snap.TotalServed, Revenue: snap.TotalRevenue}
	s.appointments = snap.Appointments
	return s, nil
}

// snapshotFile is the on-disk layout, rewritten on every mutation.
type snapshotFile struct {
	Queue        []models.QueueItem   `json:"queue"`
	TotalServed  int64                `json:"totalServed"`
	TotalRevenue decimal.Decimal      `json:"totalRevenue"`
	LastSaved    time.Time            `json:"lastSaved"`
	Appointments []models.Appointment `json:"appointments,omitempty"`
}

// Close releases the file lock.
func (s *SnapshotStore) Close() error {
	return s.lock.Unlock()
}

func (s *SnapshotStore) LiveQueue(ctx context.Context) ([]models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QueueItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *SnapshotStore) Apply(ctx context.Context, change queue.Change) error {
	if change.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.QueueItem, 0, len(s.items)+len(change.Inserted))
	if !change.Cleared {
		deleted := make(map[uuid.UUID]bool, len(change.Deleted))
		for _, id := range change.Deleted {
			deleted[id] = true
		}
		for _, item := range s.items {
			if !deleted[item.ID] {
				items = append(items, item)
			}
		}
	}
	for _, upd := range change.Updated {
		for i := range items {
			if items[i].ID == upd.ID {
				items[i] = upd
			}
		}
	}
	items = append(items, change.Inserted...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	totals := s.totals
	appts := s.appointments
	if change.Appointment != nil {
		totals.Record(change.Appointment.Price)
		appts = append(appts, *change.Appointment)
	}

	if err := s.write(items, totals, appts); err != nil {
		return err
	}
	s.items, s.totals, s.appointments = items, totals, appts
	return nil
}

// Stats returns the running counters when r is unbounded, otherwise it folds
// the recorded appointments inside r.
func (s *SnapshotStore) Stats(ctx context.Context, r queue.Range) (queue.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Unbounded() {
		return s.totals.Stats(), nil
	}
	return queue.Summarize(filterAppointments(s.appointments, r)), nil
}

func (s *SnapshotStore) Appointments(ctx context.Context, r queue.Range) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterAppointments(s.appointments, r), nil
}

func (s *SnapshotStore) write(items []models.QueueItem, totals queue.Totals, appts []models.Appointment) error {
	snap := snapshotFile{
		Queue:        items,
		TotalServed:  totals.Served,
		TotalRevenue: totals.Revenue,
		LastSaved:    s.now(),
		Appointments: appts,
	}
	if snap.Queue == nil {
		snap.Queue = []models.QueueItem{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func filterAppointments(appts []models.Appointment, r queue.Range) []models.Appointment {
	out := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if r.Contains(a.FinishedAt) {
			out = append(out, a)
		}
	}
	return out
}
