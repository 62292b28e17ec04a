package config

import (
	"fmt"
	"time"

	"barberqueue-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

var DB *gorm.DB

// ConnectDB opens the configured database and stores it in DB.
func ConnectDB(s Settings) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch s.DBDriver {
	case "sqlite":
		dsn := s.DBURL
		if dsn == "" {
			dsn = "file:data/barberqueue.db?_time_format=sqlite"
		}
		db, err = ConnectSQLite(dsn)
	case "postgres", "":
		if s.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required for postgres")
		}
		db, err = gorm.Open(postgres.Open(s.DBURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, dbErr
			}
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetMaxOpenConns(25)
			sqlDB.SetConnMaxLifetime(5 * time.Minute)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return db, nil
}

// ConnectSQLite opens a sqlite database through the pure-Go modernc driver.
// A single connection keeps in-memory databases shared across queries.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.HaircutType{},
		&models.QueueItem{},
		&models.Appointment{},
		&models.NotificationLog{},
	)
}
