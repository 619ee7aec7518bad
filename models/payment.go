package models

import (
	"time"
)

// Payment attempt statuses.
const (
	PaymentAttemptSuccess = "success"
	PaymentAttemptFailed  = "failed"
)

// Payment records one payment callback for an order, successful or not.
type Payment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	Order      Order     `json:"-" gorm:"foreignKey:OrderID"`
	Reference  string    `json:"reference" gorm:"type:varchar(64);uniqueIndex"`
	Provider   string    `json:"provider" gorm:"type:varchar(30);not null;default:'paypal'"`
	ExternalID string    `json:"external_id" gorm:"type:varchar(100)"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status" gorm:"type:varchar(20);not null"`
	Details    string    `json:"details" gorm:"type:text"` // raw provider payload or failure message
	CreatedAt  time.Time `json:"created_at"`
}
