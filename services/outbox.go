package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
)

// Realtime channel names, one per table of the relational store.
const (
	SourceTables       = "tables"
	SourceOrders       = "orders"
	SourceReservations = "reservations"
	SourceMenuItems    = "menu_items"
)

// recordChange appends an outbox row. Call it with the transaction that made the
// change so the event exists iff the change committed.
func recordChange(tx *gorm.DB, source string, recordID uint, action string) error {
	return tx.Create(&models.DBChange{
		Source:     source,
		RecordID:   int64(recordID),
		ActionType: action,
		ChangedAt:  time.Now().UTC(),
	}).Error
}

// RecordChange is recordChange for callers outside the package, such as the admin
// CRUD controllers.
func RecordChange(tx *gorm.DB, source string, recordID uint, action string) error {
	return recordChange(tx, source, recordID, action)
}
