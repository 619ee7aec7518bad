// Package database owns schema migration and the in-memory databases used by
// tests.
package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// Migrate creates or updates every table. Realtime change capture is done by the
// application writing DBChange rows, so no triggers are installed.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.WithField("models", len(models.All())).Info("schema migrated")
	return nil
}

// PruneOutbox deletes processed change rows older than age.
func PruneOutbox(db *gorm.DB, age time.Duration) (int64, error) {
	res := db.Where("processed = ? AND changed_at < ?", true, time.Now().UTC().Add(-age)).
		Delete(&models.DBChange{})
	return res.RowsAffected, res.Error
}

// OpenMemory opens a migrated, private in-memory SQLite database. name must be
// unique per test so parallel tests do not share state.
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(name, "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}
	return db, nil
}
