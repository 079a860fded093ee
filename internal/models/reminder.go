package models

import "time"

type Reminder struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	PatientID     uint64    `gorm:"not null;index" json:"patient_id"`
	AppointmentID *uint64   `gorm:"index" json:"appointment_id,omitempty"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	SentAt        time.Time `json:"sent_at"`
	ClinicID      *uint64   `gorm:"index" json:"clinic_id"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

type ReminderInput struct {
	PatientID uint64 `json:"patient_id" binding:"required"`
	Message   string `json:"message" binding:"required,max=1000"`
}
