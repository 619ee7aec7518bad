package models

import (
	"fmt"
	"time"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
)

// Payment statuses of an order.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentExpired = "expired"
)

// Kitchen preparation statuses.
const (
	PreparationPending   = "pending"
	PreparationPreparing = "preparing"
	PreparationReady     = "ready"
	PreparationServed    = "served"
)

type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	TableID           uint        `gorm:"not null;index" json:"table_id"`
	Table             Table       `gorm:"foreignKey:TableID" json:"table"`
	UserID            uint        `gorm:"not null;index" json:"user_id"`
	Status            string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus     string      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PreparationStatus string      `gorm:"type:varchar(20);not null;default:'pending'" json:"preparation_status"`
	TotalAmount       int64       `gorm:"not null;default:0" json:"total_amount"`
	PaymentID         *string     `gorm:"type:varchar(100)" json:"payment_id,omitempty"`
	PaymentDetails    string      `gorm:"type:text" json:"payment_details,omitempty"`
	PaidAt            *time.Time  `json:"paid_at,omitempty"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt         time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null" json:"updated_at"`
}

// Reference is the human readable order number used in emails and payment records.
func (o *Order) Reference() string {
	return fmt.Sprintf("ORD-%06d", o.ID)
}

// ItemsTotal sums the line items. It must equal TotalAmount for a persisted order.
func (o *Order) ItemsTotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}

// ValidPreparationStatus reports whether s is one of the kitchen statuses.
func ValidPreparationStatus(s string) bool {
	switch s {
	case PreparationPending, PreparationPreparing, PreparationReady, PreparationServed:
		return true
	}
	return false
}
