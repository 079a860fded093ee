package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EntryRevenue = "revenue"
	EntryExpense = "expense"
)

const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"
)

type FinancialEntry struct {
	ID            uint64                                   `gorm:"primaryKey" json:"id"`
	Description   string                                   `gorm:"size:255;not null" json:"description"`
	Amount        float64                                  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date          string                                   `gorm:"size:40" json:"date"`
	Type          string                                   `gorm:"size:10;not null" json:"type"`
	Status        string                                   `gorm:"size:20;not null;default:pending" json:"status"`
	PaymentPlan   datatypes.JSONType[[]PaymentInstallment] `json:"payment_plan"`
	Signature     string                                   `gorm:"type:text" json:"signature,omitempty"`
	SignatureDate *time.Time                               `json:"signature_date,omitempty"`
	PatientID     *uint64                                  `json:"patient_id,omitempty"`
	PatientName   string                                   `gorm:"size:120" json:"patient_name,omitempty"`
	ProcedureID   *uint64                                  `gorm:"index" json:"procedure_id,omitempty"`
	ClinicID      *uint64                                  `gorm:"index" json:"clinic_id"`
	PaymentRef    string                                   `gorm:"size:50;index" json:"payment_ref,omitempty"`
	PaymentURL    string                                   `gorm:"size:255" json:"payment_url,omitempty"`
	Version       uint                                     `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time                                `json:"created_at"`
	UpdatedAt     time.Time                                `json:"updated_at"`
}

// PaymentInstallment is one row of a payment plan.
type PaymentInstallment struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Notes       string  `json:"notes"`
	Responsible string  `json:"responsible"`
}

type FinancialInput struct {
	Description string               `json:"description" binding:"required,max=255"`
	Amount      float64              `json:"amount" binding:"required,gt=0"`
	Date        string               `json:"date" binding:"max=40"`
	Type        string               `json:"type" binding:"required,oneof=revenue expense"`
	Status      string               `json:"status" binding:"omitempty,oneof=pending paid cancelled"`
	PaymentPlan []PaymentInstallment `json:"payment_plan" binding:"omitempty,dive"`
	Signature   string               `json:"signature"`
	PatientID   *uint64              `json:"patient_id"`
	PatientName string               `json:"patient_name" binding:"max=120"`
	ProcedureID *uint64              `json:"procedure_id"`
	Version     uint                 `json:"version"`
}
