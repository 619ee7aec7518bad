package models

import "time"

// Reservation statuses.
const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Date and clock layouts used by ReservationDate and ReservationTime.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TableID         uint      `gorm:"not null;index:idx_reservation_table_date" json:"table_id"`
	Table           Table     `gorm:"foreignKey:TableID" json:"table"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	ReservationDate string    `gorm:"type:varchar(10);not null;index:idx_reservation_table_date" json:"reservation_date"`
	ReservationTime string    `gorm:"type:varchar(5);not null" json:"reservation_time"`
	DurationMinutes int       `gorm:"not null" json:"duration"`
	Guests          int       `gorm:"not null" json:"guests"`
	Status          string    `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	SpecialRequests string    `gorm:"type:text" json:"special_requests,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
