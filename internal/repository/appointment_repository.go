package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var appointmentEntity = entity{
	notFound:  "agendamento não encontrado",
	duplicate: "agendamento duplicado",
}

type AppointmentFilter struct {
	ProfessionalID uint64
	PatientID      uint64
	Date           string
	From           string // inclusive, YYYY-MM-DD
	To             string // inclusive, YYYY-MM-DD
	Status         string
}

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) List(ctx context.Context, scope policy.Scope, f AppointmentFilter) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).
		Scopes(ApplyScope(scope, "clinic_id")).
		Preload("Patient").
		Preload("Professional")
	if f.ProfessionalID != 0 {
		q = q.Where("professional_id = ?", f.ProfessionalID)
	}
	if f.PatientID != 0 {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.From != "" {
		q = q.Where("date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("date <= ?", f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.Appointment
	err := q.Order("date ASC, time ASC, id ASC").Find(&list).Error
	return list, appointmentEntity.translate(err)
}

func (r *AppointmentRepository) Get(ctx context.Context, scope policy.Scope, id uint64) (*models.Appointment, error) {
	return findScoped[models.Appointment](ctx, r.db, appointmentEntity, scope, id)
}

// SlotTaken reports whether the professional already holds a confirmed
// appointment at date and time, ignoring excludeID.
func (r *AppointmentRepository) SlotTaken(ctx context.Context, professionalID uint64, date, tm string, excludeID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("professional_id = ? AND date = ? AND time = ? AND status = ? AND id <> ?",
			professionalID, date, tm, models.AppointmentConfirmed, excludeID).
		Count(&n).Error
	return n > 0, appointmentEntity.translate(err)
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	a.Version = 1
	return create(ctx, r.db, appointmentEntity, a)
}

// Update bumps the version; a stale a.Version yields a Conflict.
func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	prev := a.Version
	a.Version = prev + 1
	if err := updateVersioned(ctx, r.db, appointmentEntity, a.ID, prev, a); err != nil {
		a.Version = prev
		return err
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.Appointment](ctx, r.db, appointmentEntity, id)
}
