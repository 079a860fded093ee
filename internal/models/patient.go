package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patient national id (CPF) is unique per clinic, not globally.
type Patient struct {
	ID             uint64                             `gorm:"primaryKey" json:"id"`
	Name           string                             `gorm:"size:120;not null;index" json:"name"`
	BirthDate      string                             `gorm:"size:10" json:"birth_date"` // YYYY-MM-DD
	NationalID     string                             `gorm:"size:20;not null;uniqueIndex:idx_patient_clinic_national_id" json:"national_id"`
	ClinicID       *uint64                            `gorm:"uniqueIndex:idx_patient_clinic_national_id" json:"clinic_id"`
	Phone          string                             `gorm:"size:30" json:"phone"`
	Email          string                             `gorm:"size:120" json:"email"`
	Address        string                             `gorm:"type:text" json:"address"`
	MedicalHistory datatypes.JSONType[MedicalHistory] `json:"medical_history"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

type MedicalHistory struct {
	Allergies   string `json:"allergies"`
	Conditions  string `json:"conditions"`
	Medications string `json:"medications"`
	Surgeries   string `json:"surgeries"`
	Notes       string `json:"notes"`
}

type PatientInput struct {
	Name           string          `json:"name" binding:"required,max=120"`
	BirthDate      string          `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	NationalID     string          `json:"national_id" binding:"required,max=20"`
	Phone          string          `json:"phone" binding:"omitempty,max=30"`
	Email          string          `json:"email" binding:"omitempty,email"`
	Address        string          `json:"address"`
	MedicalHistory *MedicalHistory `json:"medical_history"`
}
