package models

import "time"

// MenuItem prices are integer cents.
type MenuItem struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	CategoryID      uint         `gorm:"not null;index" json:"category_id"`
	Category        MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name            string       `gorm:"type:varchar(255);not null" json:"name"`
	Description     string       `gorm:"type:text" json:"description"`
	Price           int64        `gorm:"not null" json:"price"`
	IsAvailable     bool         `gorm:"not null;default:true" json:"is_available"`
	ImageURL        string       `gorm:"type:varchar(255)" json:"image_url"`
	PreparationTime int          `gorm:"not null;default:0" json:"preparation_time"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}
