package models

import "time"

// Clinic is a tenant. The oldest clinic is the matrix, the fallback owner of
// records created before clinics existed.
type Clinic struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"size:20" json:"color"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:30" json:"phone"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ClinicInput struct {
	Name    string `json:"name" binding:"required,max=120"`
	Color   string `json:"color" binding:"omitempty,max=20"`
	Address string `json:"address" binding:"omitempty,max=255"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
}
