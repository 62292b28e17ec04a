package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"barberqueue-backend/config"
	"barberqueue-backend/models"
	"barberqueue-backend/notifications"
	"barberqueue-backend/queue"
	"barberqueue-backend/store"
	"barberqueue-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.ConnectSQLite("file::memory:?_time_format=sqlite")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type recordingNotifier struct {
	mu    sync.Mutex
	appts []models.Appointment
}

func (r *recordingNotifier) Dispatch(a models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts = append(r.appts, a)
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deletes++
	return nil
}

type fixture struct {
	db       *gorm.DB
	catalog  *CatalogService
	queue    *QueueService
	notifier *recordingNotifier
	cache    *memoryCache
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	f := &fixture{
		db:       db,
		catalog:  NewCatalogService(db),
		notifier: &recordingNotifier{},
		cache:    &memoryCache{},
		clock:    &now,
	}
	f.queue = NewQueueService(QueueDeps{
		Store:    store.NewGormStore(db),
		Catalog:  f.catalog,
		Notifier: f.notifier,
		Cache:    f.cache,
		Now:      func() time.Time { return *f.clock },
	})
	return f
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) haircut(t *testing.T, name, price string) models.HaircutType {
	t.Helper()
	ht, err := f.catalog.Create(context.Background(), CreateHaircutTypeInput{Name: name, Price: decimal.RequireFromString(price)})
	if err != nil {
		t.Fatalf("create haircut: %v", err)
	}
	return ht
}

func TestQueueServiceServeOneClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")

	alice, err := f.queue.Add(ctx, "  Alice  ", fade.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if alice.Position != 1 || alice.Status != models.StatusWaiting || alice.ClientName != "Alice" {
		t.Fatalf("alice = %+v", alice)
	}

	f.advance(time.Minute)
	started, changed, err := f.queue.Start(ctx, alice.ID)
	if err != nil || !changed || started.Status != models.StatusInProgress {
		t.Fatalf("start = %+v, %v, %v", started, changed, err)
	}

	f.advance(25 * time.Minute)
	appt, changed, err := f.queue.Finish(ctx, alice.ID)
	if err != nil || !changed {
		t.Fatalf("finish: %v, %v", changed, err)
	}
	if appt.DurationMinutes == nil || *appt.DurationMinutes != 25 {
		t.Fatalf("duration = %v", appt.DurationMinutes)
	}

	live, _ := f.queue.List(ctx)
	if len(live) != 0 {
		t.Fatalf("live = %d, want 0", len(live))
	}
	if len(f.notifier.appts) != 1 || f.notifier.appts[0].HaircutTypeName != "Fade" {
		t.Fatalf("notifications = %+v", f.notifier.appts)
	}

	stats, err := f.queue.TodayStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAppointments != 1 || !stats.TotalRevenue.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestQueueServiceRenumbersAfterRemoval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")

	var ids []uuid.UUID
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		item, err := f.queue.Add(ctx, name, fade.ID)
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		ids = append(ids, item.ID)
	}
	if removed, err := f.queue.Remove(ctx, ids[0]); err != nil || !removed {
		t.Fatalf("remove: %v, %v", removed, err)
	}

	live, _ := f.queue.List(ctx)
	if len(live) != 2 || live[0].ClientName != "Bob" || live[0].Position != 1 || live[1].Position != 2 {
		t.Fatalf("live = %+v", live)
	}

	stats, _ := f.queue.Stats(ctx, queue.Range{})
	if stats.TotalAppointments != 0 {
		t.Fatal("removal must not record an appointment")
	}

	n, err := f.queue.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("clear = %d, %v", n, err)
	}
	next, _ := f.queue.Add(ctx, "Dave", fade.ID)
	if next.Position != 1 {
		t.Fatalf("position after clear = %d", next.Position)
	}
}

func TestQueueServiceNoOps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")
	item, _ := f.queue.Add(ctx, "Alice", fade.ID)
	f.queue.Start(ctx, item.ID)

	if _, changed, err := f.queue.Start(ctx, item.ID); err != nil || changed {
		t.Fatalf("second start changed=%v err=%v", changed, err)
	}
	if _, changed, err := f.queue.Finish(ctx, uuid.New()); err != nil || changed {
		t.Fatalf("finish unknown changed=%v err=%v", changed, err)
	}
	if removed, err := f.queue.Remove(ctx, uuid.New()); err != nil || removed {
		t.Fatalf("remove unknown removed=%v err=%v", removed, err)
	}
	if _, err := f.queue.Get(ctx, uuid.New()); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("get unknown err = %v", err)
	}
	if len(f.notifier.appts) != 0 {
		t.Fatal("no notification expected")
	}
}

func TestQueueServiceAddValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")
	retired := f.haircut(t, "Mullet", "40.00")
	if err := f.catalog.Deactivate(ctx, retired.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tests := []struct {
		name   string
		client string
		typeID uuid.UUID
	}{
		{"blank name", "   ", fade.ID},
		{"no type", "Alice", uuid.Nil},
		{"unknown type", "Alice", uuid.New()},
		{"inactive type", "Alice", retired.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.queue.Add(ctx, tt.client, tt.typeID); !errors.Is(err, queue.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
	live, _ := f.queue.List(ctx)
	if len(live) != 0 {
		t.Fatalf("queue should be empty, got %d", len(live))
	}
}

func TestQueueServiceAddByReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Degradê", "35.00")

	item, err := f.queue.AddByReference(ctx, "Bob", "degradê")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if item.HaircutTypeID != fade.ID || !item.Price.Equal(fade.Price) {
		t.Fatalf("item = %+v", item)
	}
	if _, err := f.queue.AddByReference(ctx, "Bob", fade.ID.String()); err != nil {
		t.Fatalf("by id: %v", err)
	}
	if _, err := f.queue.AddByReference(ctx, "Bob", "Moicano"); !errors.Is(err, ErrHaircutTypeNotFound) {
		t.Fatalf("unknown err = %v", err)
	}
}

func TestPriceCapturedAtEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")

	item, _ := f.queue.Add(ctx, "Alice", fade.ID)
	newPrice := decimal.RequireFromString("45.00")
	if _, err := f.catalog.Update(ctx, fade.ID, UpdateHaircutTypeInput{Price: &newPrice}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := f.queue.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Price.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("queued price = %s, want 30", got.Price)
	}
	appt, _, _ := f.queue.Finish(ctx, item.ID)
	if !appt.Price.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("appointment price = %s, want 30", appt.Price)
	}
}

func TestFinishSucceedsWhenNotificationFails(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	catalog := NewCatalogService(db)
	ht, _ := catalog.Create(ctx, CreateHaircutTypeInput{Name: "Fade", Price: decimal.NewFromInt(30)})

	logs := store.NewNotificationLogs(db)
	dispatcher := notifications.NewDispatcher(nil, logs, time.Second,
		notifications.NewWebhookSink("http://127.0.0.1:1/unreachable", 200*time.Millisecond))
	svc := NewQueueService(QueueDeps{Store: store.NewGormStore(db), Catalog: catalog, Notifier: dispatcher})

	item, _ := svc.Add(ctx, "Carol", ht.ID)
	if _, changed, err := svc.Finish(ctx, item.ID); err != nil || !changed {
		t.Fatalf("finish = %v, %v", changed, err)
	}
	dispatcher.Wait()

	stats, _ := svc.Stats(ctx, queue.Range{})
	if stats.TotalAppointments != 1 {
		t.Fatalf("appointment not recorded: %+v", stats)
	}
	recent, _ := logs.Recent(ctx, 10)
	if len(recent) != 1 || recent[0].Status != models.NotificationFailed {
		t.Fatalf("notification log = %+v", recent)
	}
}

func TestTodayStatsCacheInvalidatedOnFinish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")

	if s, _ := f.queue.TodayStats(ctx); s.TotalAppointments != 0 {
		t.Fatalf("initial stats = %+v", s)
	}
	if len(f.cache.data) != 1 {
		t.Fatal("stats should be cached")
	}

	item, _ := f.queue.Add(ctx, "Alice", fade.ID)
	f.queue.Finish(ctx, item.ID)
	if f.cache.deletes != 1 {
		t.Fatalf("cache deletes = %d", f.cache.deletes)
	}
	if s, _ := f.queue.TodayStats(ctx); s.TotalAppointments != 1 {
		t.Fatalf("stats after finish = %+v", s)
	}
}

// pausingStore holds the first Stats call after it has been computed.
type pausingStore struct {
	store.Store
	once    sync.Once
	paused  chan struct{}
	release chan struct{}
}

func (p *pausingStore) Stats(ctx context.Context, r queue.Range) (queue.Stats, error) {
	stats, err := p.Store.Stats(ctx, r)
	p.once.Do(func() {
		close(p.paused)
		<-p.release
	})
	return stats, err
}

func TestTodayStatsIgnoresReadOverlappingFinish(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	catalog := NewCatalogService(db)
	fade, _ := catalog.Create(ctx, CreateHaircutTypeInput{Name: "Fade", Price: decimal.NewFromInt(30)})
	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	st := &pausingStore{Store: store.NewGormStore(db), paused: make(chan struct{}), release: make(chan struct{})}
	mc := &memoryCache{}
	svc := NewQueueService(QueueDeps{Store: st, Catalog: catalog, Cache: mc, Now: func() time.Time { return now }})

	item, err := svc.Add(ctx, "Alice", fade.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	done := make(chan queue.Stats)
	go func() {
		stats, _ := svc.TodayStats(ctx)
		done <- stats
	}()
	<-st.paused
	if _, changed, err := svc.Finish(ctx, item.ID); err != nil || !changed {
		t.Fatalf("finish = %v, %v", changed, err)
	}
	close(st.release)
	if early := <-done; early.TotalAppointments != 0 {
		t.Fatalf("overlapping read = %+v", early)
	}

	stats, err := svc.TodayStats(ctx)
	if err != nil {
		t.Fatalf("today stats: %v", err)
	}
	if stats.TotalAppointments != 1 {
		t.Fatalf("today stats after finish = %+v, want 1 appointment", stats)
	}
}

type failingApplyStore struct {
	store.Store
}

func (f failingApplyStore) Apply(ctx context.Context, change queue.Change) error {
	if change.Appointment != nil {
		return errors.New("disk full")
	}
	return f.Store.Apply(ctx, change)
}

func TestFinishLogsDispatchedCompletionThatFailedToPersist(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	catalog := NewCatalogService(db)
	fade, _ := catalog.Create(ctx, CreateHaircutTypeInput{Name: "Fade", Price: decimal.NewFromInt(30)})
	var buf bytes.Buffer
	notifier := &recordingNotifier{}
	svc := NewQueueService(QueueDeps{
		Store:    failingApplyStore{Store: store.NewGormStore(db)},
		Catalog:  catalog,
		Notifier: notifier,
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
	})

	item, _ := svc.Add(ctx, "Dave", fade.ID)
	if _, changed, err := svc.Finish(ctx, item.ID); err == nil || changed {
		t.Fatalf("finish = %v, %v; want persistence error", changed, err)
	}
	if len(notifier.appts) != 1 {
		t.Fatalf("dispatched = %d, want 1", len(notifier.appts))
	}
	if !strings.Contains(buf.String(), "completion not persisted after notification dispatch") {
		t.Fatalf("missing warning in log:\n%s", buf.String())
	}
	live, _ := svc.List(ctx)
	if len(live) != 1 || live[0].ID != item.ID {
		t.Fatalf("live queue = %+v", live)
	}
}

func TestCatalogServiceValidationAndListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.catalog.Create(ctx, CreateHaircutTypeInput{Name: " "}); !errors.Is(err, queue.ErrValidation) {
		t.Fatalf("blank name err = %v", err)
	}
	if _, err := f.catalog.Create(ctx, CreateHaircutTypeInput{Name: "X", Price: decimal.NewFromInt(-1)}); !errors.Is(err, queue.ErrValidation) {
		t.Fatalf("negative price err = %v", err)
	}

	f.haircut(t, "Social", "30")
	beard := f.haircut(t, "Barba", "20")
	f.catalog.Deactivate(ctx, beard.ID)

	active, _ := f.catalog.List(ctx, false)
	all, _ := f.catalog.List(ctx, true)
	if len(active) != 1 || len(all) != 2 || all[0].Name != "Barba" {
		t.Fatalf("active = %d, all = %+v", len(active), all)
	}
	if err := f.catalog.Deactivate(ctx, uuid.New()); !errors.Is(err, ErrHaircutTypeNotFound) {
		t.Fatalf("deactivate unknown err = %v", err)
	}

	n, err := f.catalog.Seed(ctx)
	if err != nil || n != 0 {
		t.Fatalf("seed on non-empty catalog = %d, %v", n, err)
	}
}

func TestAuthService(t *testing.T) {
	old := utils.BcryptCost
	utils.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { utils.BcryptCost = old })

	ctx := context.Background()
	db := newTestDB(t)
	auth := NewAuthService(db, &utils.TokenManager{Secret: []byte("test-secret"), TTL: time.Hour}, nil)

	admin, err := auth.CreateAdmin(ctx, " Owner@Shop.com ", "Owner", "s3cretpass", "")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if admin.Email != "owner@shop.com" || admin.Role != "admin" || admin.Password == "s3cretpass" {
		t.Fatalf("admin = %+v", admin)
	}
	if _, err := auth.CreateAdmin(ctx, "owner@shop.com", "Other", "anotherpass", ""); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("duplicate err = %v", err)
	}
	if _, err := auth.CreateAdmin(ctx, "not-an-email", "X", "anotherpass", ""); !errors.Is(err, queue.ErrValidation) {
		t.Fatalf("bad email err = %v", err)
	}

	res, err := auth.Login(ctx, "owner@shop.com", "s3cretpass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.Session.Email != "owner@shop.com" || !res.ExpiresAt.After(res.Session.LoginAt) {
		t.Fatalf("login result = %+v", res)
	}

	for _, tc := range [][2]string{{"owner@shop.com", "wrong"}, {"nobody@shop.com", "s3cretpass"}} {
		if _, err := auth.Login(ctx, tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login(%s) err = %v", tc[0], err)
		}
	}
}

func TestAuthLoginUnknownEmailStillComparesHash(t *testing.T) {
	old := utils.BcryptCost
	utils.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { utils.BcryptCost = old })

	ctx := context.Background()
	auth := NewAuthService(newTestDB(t), &utils.TokenManager{Secret: []byte("test-secret"), TTL: time.Hour}, nil)
	var hashes []string
	auth.checkPassword = func(password, hash string) bool {
		hashes = append(hashes, hash)
		return utils.CheckPasswordHash(password, hash)
	}

	if _, err := auth.Login(ctx, "ghost@shop.com", "s3cretpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("login err = %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("bcrypt comparisons = %d, want 1", len(hashes))
	}
	if _, err := bcrypt.Cost([]byte(hashes[0])); err != nil {
		t.Fatalf("compared against invalid hash: %v", err)
	}
}

func TestAuthLoginLogsLastLoginFailure(t *testing.T) {
	old := utils.BcryptCost
	utils.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { utils.BcryptCost = old })

	ctx := context.Background()
	db := newTestDB(t)
	var buf bytes.Buffer
	auth := NewAuthService(db, &utils.TokenManager{Secret: []byte("test-secret"), TTL: time.Hour}, slog.New(slog.NewTextHandler(&buf, nil)))
	if _, err := auth.CreateAdmin(ctx, "owner@shop.com", "Owner", "s3cretpass", ""); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	err := db.Callback().Update().Before("gorm:update").Register("test:fail_admin_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "admins" {
			tx.AddError(errors.New("database is locked"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := auth.Login(ctx, "owner@shop.com", "s3cretpass"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(buf.String(), "last login update failed") {
		t.Fatalf("missing warning in log:\n%s", buf.String())
	}
}

type recordingSender struct{ bodies []string }

func (r *recordingSender) SendText(ctx context.Context, body string) error {
	r.bodies = append(r.bodies, body)
	return nil
}

func TestReportServiceDaily(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fade := f.haircut(t, "Fade", "30.00")
	for _, name := range []string{"Alice", "Bob"} {
		item, _ := f.queue.Add(ctx, name, fade.ID)
		f.queue.Finish(ctx, item.ID)
	}

	sender := &recordingSender{}
	reports := NewReportService(f.queue, sender, "R$", nil)
	reports.now = func() time.Time { return *f.clock }

	report, err := reports.Daily(ctx, *f.clock)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if report.Stats.TotalAppointments != 2 || len(report.Appointments) != 2 {
		t.Fatalf("report = %+v", report)
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}

	if err := reports.SendDailySummary(ctx); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sender.bodies) != 1 || !strings.Contains(sender.bodies[0], "R$ 60.00") {
		t.Fatalf("summary = %v", sender.bodies)
	}

	if err := reports.StartScheduler("not a schedule"); err == nil {
		t.Fatal("invalid schedule should fail")
	}
}
