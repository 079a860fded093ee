package models

import "time"

type Procedure struct {
	ID        uint64           `gorm:"primaryKey" json:"id"`
	Category  string           `gorm:"size:60;not null" json:"category"`
	Name      string           `gorm:"size:120;not null" json:"name"`
	Price     float64          `gorm:"type:decimal(12,2);default:0" json:"price"`
	Details   string           `gorm:"type:text" json:"details"`
	PatientID uint64           `gorm:"not null;index" json:"patient_id"`
	ClinicID  *uint64          `gorm:"index" json:"clinic_id"`
	Aesthetic AestheticDetails `gorm:"embedded;embeddedPrefix:aesthetic_" json:"aesthetic"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// AestheticDetails holds the optional fields of aesthetic treatments.
type AestheticDetails struct {
	Region    string `gorm:"size:120" json:"region"`
	Product   string `gorm:"size:120" json:"product"`
	Units     string `gorm:"size:30" json:"units"`
	Technique string `gorm:"size:120" json:"technique"`
}

type ProcedureInput struct {
	Category  string            `json:"category" binding:"required,max=60"`
	Name      string            `json:"name" binding:"required,max=120"`
	Price     *float64          `json:"price" binding:"omitempty,min=0"`
	Details   string            `json:"details"`
	PatientID uint64            `json:"patient_id" binding:"required"`
	Aesthetic *AestheticDetails `json:"aesthetic"`
}
