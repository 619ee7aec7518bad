package models

import "time"

// Table statuses.
const (
	TableAvailable = "available"
	TableReserved  = "reserved"
	TableOccupied  = "occupied"
	TableCleaning  = "cleaning"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    int       `gorm:"uniqueIndex;not null" json:"table_number"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Reservations []Reservation `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ValidTableStatus reports whether s is one of the table statuses.
func ValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableReserved, TableOccupied, TableCleaning:
		return true
	}
	return false
}

// TableStatusHistory records every status change made by staff or a booking.
type TableStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   uint      `gorm:"not null;index" json:"table_id"`
	Table     Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	ChangedBy *uint     `json:"changed_by,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
