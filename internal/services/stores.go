// Package services implements the clinic use cases. Every call receives the
// acting policy.Actor resolved by the HTTP layer and applies the access policy
// before touching a store.
package services

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"
)

type ClinicStore interface {
	List(ctx context.Context) ([]models.Clinic, error)
	Get(ctx context.Context, id uint64) (*models.Clinic, error)
	Matrix(ctx context.Context) (*models.Clinic, error)
	Create(ctx context.Context, c *models.Clinic) error
	Save(ctx context.Context, c *models.Clinic) error
	Delete(ctx context.Context, id uint64) error
	CountUsers(ctx context.Context, id uint64) (int64, error)
}

type UserStore interface {
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id uint64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListProfessionals(ctx context.Context, scope policy.Scope, subRole string) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uint64) error
}

type PatientStore interface {
	List(ctx context.Context, scope policy.Scope, search string) ([]models.Patient, error)
	Get(ctx context.Context, scope policy.Scope, id uint64) (*models.Patient, error)
	Create(ctx context.Context, p *models.Patient) error
	Save(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, id uint64) error
}

type ProcedureStore interface {
	List(ctx context.Context, scope policy.Scope, f repository.ProcedureFilter) ([]models.Procedure, error)
	Get(ctx context.Context, scope policy.Scope, id uint64) (*models.Procedure, error)
	Create(ctx context.Context, p *models.Procedure) error
	Save(ctx context.Context, p *models.Procedure) error
	Delete(ctx context.Context, id uint64) error
	Unledgered(ctx context.Context, scope policy.Scope) ([]models.Procedure, error)
}

type AppointmentStore interface {
	List(ctx context.Context, scope policy.Scope, f repository.AppointmentFilter) ([]models.Appointment, error)
	Get(ctx context.Context, scope policy.Scope, id uint64) (*models.Appointment, error)
	SlotTaken(ctx context.Context, professionalID uint64, date, tm string, excludeID uint64) (bool, error)
	Create(ctx context.Context, a *models.Appointment) error
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id uint64) error
}

type FinancialStore interface {
	List(ctx context.Context, scope policy.Scope, f repository.FinancialFilter) ([]models.FinancialEntry, error)
	Get(ctx context.Context, scope policy.Scope, id uint64) (*models.FinancialEntry, error)
	GetByPaymentRef(ctx context.Context, ref string) (*models.FinancialEntry, error)
	Create(ctx context.Context, e *models.FinancialEntry) error
	Update(ctx context.Context, e *models.FinancialEntry) error
	Delete(ctx context.Context, id uint64) error
}

type RecordStore interface {
	List(ctx context.Context, scope policy.Scope, patientID uint64) ([]models.ClinicalRecord, error)
	Get(ctx context.Context, scope policy.Scope, id uint64) (*models.ClinicalRecord, error)
	Create(ctx context.Context, r *models.ClinicalRecord) error
	Save(ctx context.Context, r *models.ClinicalRecord) error
	Delete(ctx context.Context, id uint64) error
}

type ReminderStore interface {
	List(ctx context.Context, scope policy.Scope) ([]models.Reminder, error)
	Create(ctx context.Context, r *models.Reminder) error
	ExistsForAppointment(ctx context.Context, appointmentID uint64) (bool, error)
}

type ReportStore interface {
	PatientCounts(ctx context.Context, scope policy.Scope) ([]repository.CountRow, error)
	AppointmentCounts(ctx context.Context, scope policy.Scope) ([]repository.CountRow, error)
	FinancialSums(ctx context.Context, scope policy.Scope) ([]repository.SumRow, error)
}

// mutationScope is used to load a record before CheckMutation decides whether
// the actor may change it, so a foreign record yields Forbidden, not NotFound.
var mutationScope = policy.All()

// patientInClinic loads a patient a row of clinicID may reference. Patients
// with no clinic are only reachable from the matrix.
func patientInClinic(ctx context.Context, patients PatientStore, actor policy.Actor, clinicID, patientID uint64) (*models.Patient, error) {
	return patients.Get(ctx, policy.ReferenceScope(actor, clinicID, policy.ResourcePatients), patientID)
}

func ptr[T any](v T) *T { return &v }
