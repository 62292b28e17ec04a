package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"barberqueue-backend/cache"
	"barberqueue-backend/config"
	"barberqueue-backend/notifications"
	"barberqueue-backend/services"
	"barberqueue-backend/store"
	"barberqueue-backend/utils"

	"gorm.io/gorm"
)

// app holds the wired services for one process.
type app struct {
	settings   config.Settings
	logger     *slog.Logger
	db         *gorm.DB
	catalog    *services.CatalogService
	queue      *services.QueueService
	auth       *services.AuthService
	reports    *services.ReportService
	logs       *store.NotificationLogs
	dispatcher *notifications.Dispatcher
	tokens     *utils.TokenManager
	closers    []func() error
}

// openDB connects and migrates the database.
func openDB(s config.Settings) (*gorm.DB, error) {
	db, err := config.ConnectDB(s)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// newApp wires every component. With outbound false no sink, cache or
// producer is created, which suits one-shot CLI commands.
func newApp(s config.Settings, logger *slog.Logger, outbound bool) (*app, error) {
	db, err := openDB(s)
	if err != nil {
		return nil, err
	}
	a := &app{settings: s, logger: logger, db: db}
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	secret := s.JWTSecret
	if secret == "" {
		secret = utils.GenerateJWTSecret()
		if outbound {
			logger.Warn("JWT_SECRET not set, using a random secret; sessions end on restart")
		}
	}
	a.tokens = &utils.TokenManager{Secret: []byte(secret), TTL: s.JWTExpiry, Issuer: "barberqueue"}

	a.catalog = services.NewCatalogService(db)
	a.auth = services.NewAuthService(db, a.tokens, logger)
	a.logs = store.NewNotificationLogs(db)

	st, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := services.QueueDeps{
		Store:    st,
		Catalog:  a.catalog,
		CacheTTL: s.StatsCacheTTL,
		Location: s.Location(),
		Logger:   logger,
	}

	var sender services.TextSender
	if outbound {
		sinks, twilioSink := a.buildSinks()
		a.dispatcher = notifications.NewDispatcher(logger, a.logs, s.WebhookTimeout, sinks...)
		logger.Info("notification sinks configured", slog.Any("sinks", a.dispatcher.Sinks()))
		deps.Notifier = a.dispatcher
		deps.Cache = a.buildCache()
		if twilioSink != nil {
			sender = twilioSink
		}
	}

	a.queue = services.NewQueueService(deps)
	a.reports = services.NewReportService(a.queue, sender, s.Currency, logger)
	return a, nil
}

func (a *app) openStore() (store.Store, error) {
	switch a.settings.QueueBackend {
	case config.BackendSnapshot:
		snap, err := store.OpenSnapshot(a.settings.SnapshotPath, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, snap.Close)
		a.logger.Info("queue stored in local snapshot", slog.String("path", a.settings.SnapshotPath))
		return snap, nil
	case config.BackendDatabase, "":
		return store.NewGormStore(a.db), nil
	default:
		return nil, fmt.Errorf("unsupported QUEUE_BACKEND %q", a.settings.QueueBackend)
	}
}

func (a *app) buildSinks() ([]notifications.Sink, *notifications.TwilioSink) {
	s := a.settings
	var sinks []notifications.Sink

	if s.WebhookURL != "" {
		sinks = append(sinks, notifications.NewWebhookSink(s.WebhookURL, s.WebhookTimeout))
	}

	var twilioSink *notifications.TwilioSink
	if s.TwilioAccountSID != "" && s.TwilioAuthToken != "" {
		if utils.ValidatePhone(s.TwilioFromNumber) && utils.ValidatePhone(s.TwilioNotifyNumber) {
			twilioSink = notifications.NewTwilioSink(s.TwilioAccountSID, s.TwilioAuthToken,
				s.TwilioFromNumber, s.TwilioNotifyNumber, s.Currency, s.Location())
			sinks = append(sinks, twilioSink)
		} else {
			a.logger.Warn("twilio disabled: TWILIO_FROM_NUMBER and TWILIO_NOTIFY_NUMBER must be E.164 numbers")
		}
	}

	if len(s.KafkaBrokers) > 0 {
		producer, err := notifications.NewKafkaProducer(s.KafkaBrokers)
		if err != nil {
			a.logger.Warn("kafka disabled", slog.String("error", err.Error()))
		} else {
			kafkaSink := notifications.NewKafkaSink(producer, s.KafkaTopic)
			a.closers = append(a.closers, kafkaSink.Close)
			sinks = append(sinks, kafkaSink)
		}
	}

	if len(sinks) == 0 {
		a.logger.Info("no notification sinks configured")
	}
	return sinks, twilioSink
}

func (a *app) buildCache() cache.Cache {
	s := a.settings
	var rc *cache.RedisCache
	switch {
	case s.RedisURL != "":
		c, err := cache.NewRedisFromURL(s.RedisURL)
		if err != nil {
			a.logger.Warn("stats cache disabled", slog.String("error", err.Error()))
			return cache.NewNoop()
		}
		rc = c
	case s.RedisAddr != "":
		rc = cache.NewRedis(s.RedisAddr, "", 0)
	default:
		return cache.NewNoop()
	}

	if err := rc.Ping(context.Background()); err != nil {
		a.logger.Warn("redis unreachable, stats cache disabled", slog.String("error", err.Error()))
		rc.Close()
		return cache.NewNoop()
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

// Close waits for pending notifications and releases resources in reverse
// order of acquisition.
func (a *app) Close() error {
	if a.dispatcher != nil {
		done := make(chan struct{})
		go func() {
			a.dispatcher.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(15 * time.Second):
			a.logger.Warn("pending notifications abandoned at shutdown")
		}
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
