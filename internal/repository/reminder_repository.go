package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var reminderEntity = entity{
	notFound:  "lembrete não encontrado",
	duplicate: "lembrete já enviado",
}

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) List(ctx context.Context, scope policy.Scope) ([]models.Reminder, error) {
	var list []models.Reminder
	err := r.db.WithContext(ctx).
		Scopes(ApplyScope(scope, "clinic_id")).
		Preload("Patient").
		Order("sent_at DESC").
		Find(&list).Error
	return list, reminderEntity.translate(err)
}

func (r *ReminderRepository) Create(ctx context.Context, rem *models.Reminder) error {
	return create(ctx, r.db, reminderEntity, rem)
}

func (r *ReminderRepository) ExistsForAppointment(ctx context.Context, appointmentID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Reminder{}).Where("appointment_id = ?", appointmentID).Count(&n).Error
	return n > 0, reminderEntity.translate(err)
}
