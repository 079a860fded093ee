package models

import "time"

// ClinicalRecord is a prontuário entry. Patient name and national id are
// snapshots taken when the record is written.
type ClinicalRecord struct {
	ID                    uint64    `gorm:"primaryKey" json:"id"`
	PatientID             uint64    `gorm:"not null;index" json:"patient_id"`
	PatientName           string    `gorm:"size:120" json:"patient_name"`
	PatientNationalID     string    `gorm:"size:20" json:"patient_national_id"`
	Date                  string    `gorm:"size:10;not null" json:"date"`
	ChartType             string    `gorm:"size:40" json:"chart_type"`
	Anamnesis             string    `gorm:"type:text" json:"anamnesis"`
	History               string    `gorm:"type:text" json:"history"`
	Evolution             string    `gorm:"type:text" json:"evolution"`
	Medication            string    `gorm:"type:text" json:"medication"`
	Observations          string    `gorm:"type:text" json:"observations"`
	ProfessionalID        uint64    `gorm:"not null" json:"professional_id"`
	ProfessionalSignature string    `gorm:"type:text;not null" json:"professional_signature"`
	PatientSignature      string    `gorm:"type:text" json:"patient_signature,omitempty"`
	ClinicID              *uint64   `gorm:"index" json:"clinic_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type ClinicalRecordInput struct {
	PatientID             uint64 `json:"patient_id" binding:"required"`
	Date                  string `json:"date" binding:"required,datetime=2006-01-02"`
	ChartType             string `json:"chart_type" binding:"max=40"`
	Anamnesis             string `json:"anamnesis"`
	History               string `json:"history"`
	Evolution             string `json:"evolution"`
	Medication            string `json:"medication"`
	Observations          string `json:"observations"`
	ProfessionalSignature string `json:"professional_signature" binding:"required"`
	PatientSignature      string `json:"patient_signature"`
}
