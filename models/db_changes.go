package models

import (
	"time"
)

// Change actions.
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// DBChange is an outbox row written in the same transaction as the change it
// describes. The change monitor turns it into a realtime event.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	Source     string    `gorm:"column:table_name;type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}

// All returns every model for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Table{},
		&TableStatusHistory{},
		&Reservation{},
		&MenuCategory{},
		&MenuItem{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Notification{},
		&DBChange{},
	}
}
