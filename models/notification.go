package models

import (
	"time"
)

// Notification is an in-app note for kitchen and floor staff.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	UserID    *uint     `json:"user_id,omitempty"`
	Status    string    `gorm:"type:varchar(20)" json:"status,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
