package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/apexneuralecosystems/tracking-leads/internal/models"
)

// Connect opens the Postgres connection and configures the pool.
// All timestamps the store generates are UTC.
func Connect(databaseURL string, environment string) (*gorm.DB, error) {
	gormLogger := logger.Default
	if environment == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Unique violations surface as gorm.ErrDuplicatedKey; the repository
		// depends on that to resolve implicit-create races.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate runs auto-migration for all models and creates indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Lead{},
		&models.TrackingEvent{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes beyond what the model tags declare
func createIndexes(db *gorm.DB) error {
	// The open dedup check and the lead lookup both key on tracking_id;
	// the composite index also serves per-lead event timelines.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_events_tracking_type ON events (tracking_id, event_type)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_leads_created ON leads (created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_leads_email_lower ON leads (LOWER(email))")

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
