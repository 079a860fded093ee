package models

// ClinicSummary aggregates one clinic, or the whole network when ClinicID is nil.
type ClinicSummary struct {
	ClinicID     *uint64            `json:"clinic_id"`
	ClinicName   string             `json:"clinic_name"`
	Patients     int64              `json:"patients"`
	Appointments map[string]int64   `json:"appointments"`
	Revenue      map[string]float64 `json:"revenue"`
	Expense      map[string]float64 `json:"expense"`
	Balance      float64            `json:"balance"`
}

type SummaryReport struct {
	Clinics []ClinicSummary `json:"clinics"`
	Total   ClinicSummary   `json:"total"`
}

// All returns the tables managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&Clinic{},
		&User{},
		&Patient{},
		&Procedure{},
		&Appointment{},
		&FinancialEntry{},
		&ClinicalRecord{},
		&Reminder{},
	}
}
