package models

import "time"

const (
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

const (
	PatientAdult = "adult"
	PatientMinor = "minor"
)

type Appointment struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	PatientID         uint64    `gorm:"not null;index" json:"patient_id"`
	ProcedureID       *uint64   `json:"procedure_id"`
	Date              string    `gorm:"size:10;not null;index:idx_appointment_slot" json:"date"` // YYYY-MM-DD
	Time              string    `gorm:"size:5;not null;index:idx_appointment_slot" json:"time"`  // HH:MM
	Notes             string    `gorm:"type:text" json:"notes"`
	ProfessionalID    uint64    `gorm:"not null;index:idx_appointment_slot" json:"professional_id"`
	PatientCategory   string    `gorm:"size:10;default:adult" json:"patient_category"`
	GuardianSignature string    `gorm:"type:text" json:"guardian_signature,omitempty"`
	Status            string    `gorm:"size:20;default:confirmed" json:"status"`
	ClinicID          *uint64   `gorm:"index" json:"clinic_id"`
	Version           uint      `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Patient      *Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Procedure    *Procedure `gorm:"foreignKey:ProcedureID" json:"procedure,omitempty"`
	Professional *User      `gorm:"foreignKey:ProfessionalID" json:"professional,omitempty"`
}

// AppointmentInput never carries a clinic: it is derived from the acting scope.
type AppointmentInput struct {
	PatientID         uint64  `json:"patient_id" binding:"required"`
	ProcedureID       *uint64 `json:"procedure_id"`
	Date              string  `json:"date" binding:"required"`
	Time              string  `json:"time" binding:"required"`
	Notes             string  `json:"notes"`
	ProfessionalID    uint64  `json:"professional_id" binding:"required"`
	PatientCategory   string  `json:"patient_category" binding:"omitempty,oneof=adult minor"`
	GuardianSignature string  `json:"guardian_signature"`
	Status            string  `json:"status" binding:"omitempty,oneof=confirmed cancelled no_show"`
	Version           uint    `json:"version"`
}
